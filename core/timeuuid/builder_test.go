package timeuuid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRoundTrip(t *testing.T) {
	ms := int64(1700000000123)

	id, err := New().Version(1).TimestampMillis(ms).Build()
	require.NoError(t, err)

	assert.Equal(t, uuid.Version(1), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
	assert.Equal(t, ms, TimestampMillis(id))
}

func TestBuilderFieldOrderDoesNotMatter(t *testing.T) {
	a, err := New().Version(1).TimestampMillis(42).ClockSequence(7).Node(99).Build()
	require.NoError(t, err)
	b, err := New().Node(99).ClockSequence(7).TimestampMillis(42).Version(1).Build()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuilderMasksFields(t *testing.T) {
	id, err := New().Version(1).ClockSequence(0xffff).Node(-1).Build()
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-1000-bfff-ffffffffffff", id.String())
	assert.Equal(t, 0x3fff, id.ClockSequence())
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, id.NodeID())
}

func TestBuilderOmittedFieldsStayZero(t *testing.T) {
	id, err := New().Build()
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-8000-000000000000", id.String())
}

func TestBuilderRejectsUnknownVersion(t *testing.T) {
	for _, v := range []int{0, 5, 15} {
		_, err := New().Version(v).Build()
		assert.Error(t, err, "version %d", v)
	}
}

func TestTimestampLayout(t *testing.T) {
	id, err := New().Version(1).Timestamp(0x0123456789abcdef).Build()
	require.NoError(t, err)

	// time_low | time_mid | version + time_hi
	assert.Equal(t, "89abcdef-4567-1123", id.String()[:18])
	assert.Equal(t, uuid.Time(0x0123456789abcdef), id.Time())
}

func TestFromTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 15, 987654321, time.UTC)

	id := FromTime(now)
	assert.Equal(t, now.Truncate(time.Millisecond).UnixMilli(), TimestampMillis(id))
	assert.True(t, Time(id).Equal(now.Truncate(time.Millisecond)))
}

func TestTimestampMillisIgnoresClockAndNode(t *testing.T) {
	id, err := New().Version(1).TimestampMillis(1700000000123).ClockSequence(0x1234).Node(0xabcdef).Build()
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000123), TimestampMillis(id))
	assert.Equal(t, 0x1234, id.ClockSequence())
}

func TestEqualTimestampsDifferOnlyInLowBits(t *testing.T) {
	ms := int64(1700000000123)

	a, err := New().Version(1).TimestampMillis(ms).ClockSequence(1).Node(0x0a0b0c).Build()
	require.NoError(t, err)
	b, err := New().Version(1).TimestampMillis(ms).ClockSequence(2).Node(0x0d0e0f).Build()
	require.NoError(t, err)

	assert.Equal(t, a[:8], b[:8])
	assert.NotEqual(t, a[8:], b[8:])
	assert.Equal(t, TimestampMillis(a), TimestampMillis(b))
}
