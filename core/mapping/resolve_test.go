package mapping

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"entity-sync/core/datatype"
	"entity-sync/core/timeuuid"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"
)

func compileOne(t *testing.T, name string, h HostType, opts ...PropertyOption) *PropertyModel {
	t.Helper()
	m, err := NewRegistry().Compile(NewTable("t").PartitionKey("id", Int32, 0).Column(name, h, opts...).Build())
	require.NoError(t, err)
	p, ok := m.Property(name)
	require.True(t, ok)
	return p
}

func roundTrip(t *testing.T, p *PropertyModel, v any) any {
	t.Helper()
	stored, err := p.Write(v)
	require.NoError(t, err)
	back, err := p.Read(stored)
	require.NoError(t, err)
	return back
}

func TestScalarStorageTypes(t *testing.T) {
	tests := []struct {
		host     HostType
		opts     []PropertyOption
		expected string
	}{
		{String, nil, "text"},
		{String, []PropertyOption{WithStorageType(datatype.Ascii)}, "ascii"},
		{Int8, nil, "tinyint"},
		{Int16, nil, "smallint"},
		{Int32, nil, "int"},
		{Int64, nil, "bigint"},
		{Int64, []PropertyOption{WithStorageType(datatype.Counter)}, "counter"},
		{Float32, nil, "float"},
		{Float64, nil, "double"},
		{Bool, nil, "boolean"},
		{UUID, nil, "uuid"},
		{UUID, []PropertyOption{WithStorageType(datatype.Timeuuid)}, "timeuuid"},
		{Time, nil, "timestamp"},
		{Time, []PropertyOption{WithStorageType(datatype.Date)}, "date"},
		{Duration, nil, "bigint"},
		{Decimal, nil, "decimal"},
		{BigInt, nil, "varint"},
		{IP, nil, "inet"},
		{Bytes, nil, "blob"},
		{String, []PropertyOption{WithCustomType("org.example.Geo")}, "'org.example.Geo'"},
	}

	for _, tt := range tests {
		t.Run(tt.host.String()+"->"+tt.expected, func(t *testing.T) {
			p := compileOne(t, "v", tt.host, tt.opts...)
			assert.Equal(t, tt.expected, p.StorageType().String())
		})
	}
}

func TestPlainScalarsHaveNoConverters(t *testing.T) {
	p := compileOne(t, "v", String)
	assert.Nil(t, p.ReadConverter())
	assert.Nil(t, p.WriteConverter())

	v, err := p.Write("x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestBytesConverters(t *testing.T) {
	p := compileOne(t, "avatar", Bytes)
	require.NotNil(t, p.WriteConverter())

	in := []byte{1, 2, 3}
	stored, err := p.Write(in)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, stored)

	in[0] = 9
	assert.Equal(t, byte(1), stored.([]byte)[0])

	fromBuffer, err := p.Write(bytes.NewBufferString("hi"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), fromBuffer)

	fromReader, err := p.Write(strings.NewReader("yo"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yo"), fromReader)

	_, err = p.Write(42)
	assert.Error(t, err)
}

func TestBlobKeyedMap(t *testing.T) {
	p := compileOne(t, "digests", MapOf(Bytes, Int32))
	assert.Equal(t, "map<blob, int>", p.StorageType().String())

	stored, err := p.Write(map[string]int32{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"k": int32(1)}, stored)

	read, err := p.Read(map[string]int32{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"k": int32(1)}, read)

	generic, err := p.Read(map[any]any{"k": int32(1)})
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"k": int32(1)}, generic)

	_, err = p.Write(map[int]int32{1: 1})
	assert.Error(t, err)
}

func TestBytesOverridesSkipConverters(t *testing.T) {
	blob := compileOne(t, "raw", Bytes, AsBlob())
	assert.Equal(t, "blob", blob.StorageType().String())
	assert.Nil(t, blob.WriteConverter())
	assert.Nil(t, blob.ReadConverter())

	custom := compileOne(t, "raw", Bytes, WithCustomType("org.example.Packed"))
	assert.Equal(t, datatype.Custom, custom.StorageType().Name)
	assert.Nil(t, custom.WriteConverter())
}

func TestTimeAsTimeUUID(t *testing.T) {
	p := compileOne(t, "at", Time, WithStorageType(datatype.Timeuuid))

	now := time.UnixMilli(1700000000123)
	stored, err := p.Write(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), timeuuid.TimestampMillis(stored.(uuid.UUID)))

	back := roundTrip(t, p, now)
	assert.True(t, now.Equal(back.(time.Time)))

	_, err = p.Read([16]byte{})
	assert.Error(t, err, "version 0 identifiers carry no time")
}

func TestDecimalConverters(t *testing.T) {
	p := compileOne(t, "price", Decimal)

	d := decimal.RequireFromString("-1234.5678")
	stored, err := p.Write(d)
	require.NoError(t, err)
	assert.Equal(t, "-1234.5678", stored.(*inf.Dec).String())

	back := roundTrip(t, p, d)
	assert.True(t, d.Equal(back.(decimal.Decimal)))
}

func TestDurationConverters(t *testing.T) {
	p := compileOne(t, "ttl", Duration)
	stored, err := p.Write(90 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(90*time.Second), stored)
	assert.Equal(t, 90*time.Second, roundTrip(t, p, 90*time.Second))
}

func TestNilPassesThroughConverters(t *testing.T) {
	p := compileOne(t, "price", Decimal)
	v, err := p.WriteConverter()(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestUserTypeConverters(t *testing.T) {
	p := compileOne(t, "home", Ref(addressType()))

	rec := Record{"Street": "1 Main St", "City": "Springfield", "Zip": int32(12345)}
	stored, err := p.Write(rec)
	require.NoError(t, err)
	assert.Equal(t, datatype.UDTValue{"street": "1 Main St", "city": "Springfield", "zip": int32(12345)}, stored)

	assert.Equal(t, rec, roundTrip(t, p, rec))

	_, err = p.Write("not a record")
	assert.Error(t, err)
}

func TestNestedConvertersRecurse(t *testing.T) {
	payment := NewUserType("payment").
		Column("amount", Decimal).
		Column("at", Time, WithStorageType(datatype.Timeuuid)).
		Build()
	p := compileOne(t, "payments", ListOf(Ref(payment)))

	at := time.UnixMilli(1600000000000)
	in := []any{Record{"amount": decimal.NewFromInt(10), "at": at}}
	stored, err := p.Write(in)
	require.NoError(t, err)

	elem := stored.([]any)[0].(datatype.UDTValue)
	assert.IsType(t, &inf.Dec{}, elem["amount"])

	back, err := p.Read(stored)
	require.NoError(t, err)
	got := back.([]any)[0].(Record)
	assert.True(t, decimal.NewFromInt(10).Equal(got["amount"].(decimal.Decimal)))
	assert.True(t, at.Equal(got["at"].(time.Time)))
}

func TestTupleConverters(t *testing.T) {
	point := NewTuple("point").
		Column("y", Float64, WithOrdinal(1)).
		Column("x", Float64, WithOrdinal(0)).
		Build()
	p := compileOne(t, "path", ListOf(Ref(point)))
	assert.Equal(t, "list<frozen<tuple<double, double>>>", p.StorageType().String())

	in := []any{Record{"x": 1.5, "y": -2.0}, Record{"x": 0.0, "y": 3.25}}
	stored, err := p.Write(in)
	require.NoError(t, err)
	assert.Equal(t, []any{datatype.TupleValue{1.5, -2.0}, datatype.TupleValue{0.0, 3.25}}, stored)

	assert.Equal(t, in, roundTrip(t, p, in))

	_, err = p.Read([]any{datatype.TupleValue{1.0}})
	assert.Error(t, err)
}

func TestMapConverters(t *testing.T) {
	t.Run("user type values", func(t *testing.T) {
		p := compileOne(t, "addresses", MapOf(String, Ref(addressType())))
		assert.Equal(t, "map<text, frozen<address>>", p.StorageType().String())

		in := map[any]any{"home": Record{"Street": "a", "City": "b", "Zip": int32(1)}}
		stored, err := p.Write(in)
		require.NoError(t, err)
		assert.Equal(t, map[any]any{"home": datatype.UDTValue{"street": "a", "city": "b", "zip": int32(1)}}, stored)
		assert.Equal(t, in, roundTrip(t, p, in))
	})

	t.Run("user type keys", func(t *testing.T) {
		p := compileOne(t, "visits", MapOf(Ref(addressType()), Int32))
		assert.Equal(t, "map<frozen<address>, int>", p.StorageType().String())

		in := []datatype.Entry{{Key: Record{"Street": "a", "City": "b", "Zip": int32(1)}, Value: int32(3)}}
		stored, err := p.Write(in)
		require.NoError(t, err)
		assert.Equal(t, []datatype.Entry{{Key: datatype.UDTValue{"street": "a", "city": "b", "zip": int32(1)}, Value: int32(3)}}, stored)
		assert.Equal(t, in, roundTrip(t, p, in))
	})

	t.Run("scalar map has no converters", func(t *testing.T) {
		p := compileOne(t, "tags", MapOf(String, Int64))
		assert.Nil(t, p.WriteConverter())
	})
}
