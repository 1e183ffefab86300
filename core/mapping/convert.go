package mapping

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"time"

	"entity-sync/core/datatype"
	"entity-sync/core/timeuuid"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"
)

// nilSafe lets nil values through without invoking c.
func nilSafe(c Converter) Converter {
	if c == nil {
		return nil
	}
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return c(v)
	}
}

func writeBytes(v any) (any, error) {
	switch b := v.(type) {
	case []byte:
		return bytes.Clone(b), nil
	case string:
		return []byte(b), nil
	case *bytes.Buffer:
		return bytes.Clone(b.Bytes()), nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		return nil, fmt.Errorf("cannot write %T as blob", v)
	}
}

func readBytes(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("cannot read %T as bytes", v)
	}
	return bytes.Clone(b), nil
}

func writeBlobKey(v any) (any, error) {
	b, err := writeBytes(v)
	if err != nil {
		return nil, err
	}
	return string(b.([]byte)), nil
}

func readBlobKey(v any) (any, error) {
	switch k := v.(type) {
	case string:
		return k, nil
	case []byte:
		return string(k), nil
	default:
		return nil, fmt.Errorf("cannot read %T as a blob key", v)
	}
}

func writeDuration(v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, fmt.Errorf("cannot write %T as duration", v)
	}
	return int64(d), nil
}

func readDuration(v any) (any, error) {
	n, ok := v.(int64)
	if !ok {
		return nil, fmt.Errorf("cannot read %T as duration", v)
	}
	return time.Duration(n), nil
}

func writeDecimal(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("cannot write %T as decimal", v)
	}
	return inf.NewDecBig(d.Coefficient(), inf.Scale(-d.Exponent())), nil
}

func readDecimal(v any) (any, error) {
	d, ok := v.(*inf.Dec)
	if !ok {
		return nil, fmt.Errorf("cannot read %T as decimal", v)
	}
	return decimal.NewFromBigInt(d.UnscaledBig(), -int32(d.Scale())), nil
}

func writeTimeUUID(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("cannot write %T as timeuuid", v)
	}
	return timeuuid.FromTime(t), nil
}

var uuidBytes = reflect.TypeOf([16]byte{})

func readTimeUUID(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array || rv.Len() != 16 || !rv.Type().ConvertibleTo(uuidBytes) {
		return nil, fmt.Errorf("cannot read %T as timeuuid", v)
	}
	u := uuid.UUID(rv.Convert(uuidBytes).Interface().([16]byte))
	if u.Version() != 1 {
		return nil, fmt.Errorf("identifier %s is not time based", u)
	}
	return timeuuid.Time(u), nil
}

func sliceConverter(elem Converter) Converter {
	return func(v any) (any, error) {
		return datatype.TransformSlice(v, datatype.Func(elem))
	}
}

func mapConverter(key, value Converter) Converter {
	return func(v any) (any, error) {
		return datatype.TransformMap(v, datatype.Func(key), datatype.Func(value))
	}
}

func entriesConverter(key, value Converter) Converter {
	return func(v any) (any, error) {
		return datatype.TransformEntries(v, datatype.Func(key), datatype.Func(value))
	}
}

func asRecord(v any) (Record, error) {
	switch r := v.(type) {
	case Record:
		return r, nil
	case map[string]any:
		return Record(r), nil
	default:
		return nil, fmt.Errorf("expected a record, got %T", v)
	}
}

func udtWriter(m *EntityModel) Converter {
	return func(v any) (any, error) {
		rec, err := asRecord(v)
		if err != nil {
			return nil, err
		}
		out := make(datatype.UDTValue, len(m.properties))
		for _, p := range m.properties {
			fv, err := p.Write(rec[p.name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.name, p.name, err)
			}
			out[p.column] = fv
		}
		return out, nil
	}
}

func udtReader(m *EntityModel) Converter {
	return func(v any) (any, error) {
		var fields map[string]any
		switch u := v.(type) {
		case datatype.UDTValue:
			fields = u
		case map[string]any:
			fields = u
		default:
			return nil, fmt.Errorf("cannot read %T as %s", v, m.name)
		}
		out := make(Record, len(m.properties))
		for _, p := range m.properties {
			fv, err := p.Read(fields[p.column])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.name, p.name, err)
			}
			out[p.name] = fv
		}
		return out, nil
	}
}

func tupleWriter(m *EntityModel) Converter {
	return func(v any) (any, error) {
		rec, err := asRecord(v)
		if err != nil {
			return nil, err
		}
		out := make(datatype.TupleValue, len(m.properties))
		for i, p := range m.properties {
			fv, err := p.Write(rec[p.name])
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", m.name, i, err)
			}
			out[i] = fv
		}
		return out, nil
	}
}

func tupleReader(m *EntityModel) Converter {
	return func(v any) (any, error) {
		var elems []any
		switch t := v.(type) {
		case datatype.TupleValue:
			elems = t
		case []any:
			elems = t
		default:
			return nil, fmt.Errorf("cannot read %T as %s", v, m.name)
		}
		if len(elems) != len(m.properties) {
			return nil, fmt.Errorf("%s has %d elements, got %d", m.name, len(m.properties), len(elems))
		}
		out := make(Record, len(m.properties))
		for i, p := range m.properties {
			fv, err := p.Read(elems[i])
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", m.name, i, err)
			}
			out[p.name] = fv
		}
		return out, nil
	}
}
