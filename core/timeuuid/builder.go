package timeuuid

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// gregorianOffset is the number of 100ns ticks between 1582-10-15 and 1970-01-01.
const gregorianOffset int64 = 0x01b21dd213814000

const variantRFC4122 uint64 = 0x8000000000000000

// Builder assembles an RFC 4122 identifier from its individual fields.
// Setters may be called in any order; fields never set stay zero.
// A Builder is not safe for concurrent use.
type Builder struct {
	msb uint64
	lsb uint64
	err error
}

// New returns a builder with the variant bits already set.
func New() *Builder {
	return &Builder{lsb: variantRFC4122}
}

// Version sets the 4-bit version field. Only versions 1 to 4 are accepted;
// anything else is reported by Build.
func (b *Builder) Version(v int) *Builder {
	if v < 1 || v > 4 {
		if b.err == nil {
			b.err = fmt.Errorf("unsupported uuid version %d", v)
		}
		return b
	}
	b.msb |= (uint64(v) & 0xf) << 12
	return b
}

// Timestamp sets the 60-bit timestamp, counted in 100ns ticks since 1582-10-15.
func (b *Builder) Timestamp(ticks int64) *Builder {
	ts := uint64(ticks)
	b.msb |= (ts&0xffffffff)<<32 | (ts&0xffff00000000)>>16 | (ts&0x0fff000000000000)>>48
	return b
}

// TimestampMillis sets the timestamp from milliseconds since the Unix epoch.
func (b *Builder) TimestampMillis(ms int64) *Builder {
	return b.Timestamp(ms*10000 + gregorianOffset)
}

// ClockSequence sets the 14-bit clock sequence.
func (b *Builder) ClockSequence(seq int) *Builder {
	b.lsb |= (uint64(seq) & 0x3fff) << 48
	return b
}

// Node sets the 48-bit node identifier.
func (b *Builder) Node(node int64) *Builder {
	b.lsb |= uint64(node) & 0xffffffffffff
	return b
}

// Build returns the assembled identifier.
func (b *Builder) Build() (uuid.UUID, error) {
	if b.err != nil {
		return uuid.Nil, b.err
	}
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], b.msb)
	binary.BigEndian.PutUint64(u[8:], b.lsb)
	return u, nil
}

// FromTime returns a version 1 identifier carrying t at millisecond precision,
// with zero clock sequence and node.
func FromTime(t time.Time) uuid.UUID {
	u, _ := New().Version(1).TimestampMillis(t.UnixMilli()).Build()
	return u
}

// TimestampMillis extracts the embedded timestamp as milliseconds since the Unix epoch.
func TimestampMillis(u uuid.UUID) int64 {
	return (int64(u.Time()) - gregorianOffset) / 10000
}

// Time extracts the embedded timestamp at millisecond precision.
func Time(u uuid.UUID) time.Time {
	return time.UnixMilli(TimestampMillis(u))
}
