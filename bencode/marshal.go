package bencode

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Marshal serializes a Go value to bencode. Struct fields must carry a
// `bencode:".."` tag and are emitted with their tag names in sorted order,
// as are map keys, so output is deterministic regardless of field layout.
func Marshal(s interface{}) ([]byte, error) {
	v, err := valueOf(reflect.ValueOf(s))
	if err != nil {
		return nil, err
	}
	return Encode(v), nil
}

// Unmarshal decodes buf into the value pointed to by t. Dictionary keys with
// no matching tag are skipped; a missing key leaves the field at its zero
// value unless its tag carries the `required` option.
func Unmarshal(buf []byte, t interface{}) error {
	v, err := Decode(buf)
	if err != nil {
		return err
	}
	val := reflect.ValueOf(t)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return fmt.Errorf("bencode: expected a non-nil pointer, got %T", t)
	}
	return bindValue(v, val.Elem())
}

func parseTag(tag string) (string, bool) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts == "required"
}

func valueOf(v reflect.Value) (Value, error) {
	switch v.Type().Kind() {
	case reflect.Bool:
		if v.Bool() {
			return Integer(1), nil
		}
		return Integer(0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("bencode: %d overflows the integer encoding", v.Uint())
		}
		return Integer(int64(v.Uint())), nil
	case reflect.String:
		return ByteString(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return ByteString(v.Bytes()), nil
		}
		return listOf(v)
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return ByteString(b), nil
		}
		return listOf(v)
	case reflect.Struct:
		return structOf(v)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("bencode: map keys must be strings, got %s", v.Type().Key())
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		d := NewDict()
		for _, k := range keys {
			ev, err := valueOf(v.MapIndex(reflect.ValueOf(k)))
			if err != nil {
				return nil, err
			}
			d.set(k, ev)
		}
		return d, nil
	case reflect.Pointer:
		return valueOf(reflect.Indirect(v))
	default:
		return nil, fmt.Errorf("bencode: unsupported type %s", v.Type())
	}
}

func listOf(v reflect.Value) (Value, error) {
	l := make(List, 0, v.Len())
	for i := 0; i != v.Len(); i++ {
		ev, err := valueOf(v.Index(i))
		if err != nil {
			return nil, err
		}
		l = append(l, ev)
	}
	return l, nil
}

func structOf(v reflect.Value) (Value, error) {
	ty := v.Type()
	fields := make(map[string]reflect.StructField)
	for i := 0; i != ty.NumField(); i++ {
		f := ty.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("bencode")
		if tag == "" {
			return nil, fmt.Errorf("bencode: expected bencode tag on %s.%s", ty, f.Name)
		}
		name, _ := parseTag(tag)
		fields[name] = f
	}
	names := maps.Keys(fields)
	slices.Sort(names)
	d := NewDict()
	for _, name := range names {
		ev, err := valueOf(v.FieldByName(fields[name].Name))
		if err != nil {
			return nil, err
		}
		d.set(name, ev)
	}
	return d, nil
}

func bindValue(v Value, out reflect.Value) error {
	switch out.Kind() {
	case reflect.Bool:
		n, ok := v.(Integer)
		if !ok || (n != 0 && n != 1) {
			return fmt.Errorf("bencode: expected 0 or 1, got %v", v)
		}
		out.SetBool(n == 1)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(Integer)
		if !ok {
			return fmt.Errorf("bencode: expected an integer for %s", out.Type())
		}
		if out.OverflowInt(int64(n)) {
			return fmt.Errorf("bencode: %d overflows %s", n, out.Type())
		}
		out.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(Integer)
		if !ok {
			return fmt.Errorf("bencode: expected an integer for %s", out.Type())
		}
		if n < 0 || out.OverflowUint(uint64(n)) {
			return fmt.Errorf("bencode: %d overflows %s", n, out.Type())
		}
		out.SetUint(uint64(n))
		return nil
	case reflect.String:
		b, ok := v.(ByteString)
		if !ok {
			return fmt.Errorf("bencode: expected a byte string for %s", out.Type())
		}
		out.SetString(string(b))
		return nil
	case reflect.Slice:
		if out.Type().Elem().Kind() == reflect.Uint8 {
			b, ok := v.(ByteString)
			if !ok {
				return fmt.Errorf("bencode: expected a byte string for %s", out.Type())
			}
			out.SetBytes(append([]byte(nil), b...))
			return nil
		}
		l, ok := v.(List)
		if !ok {
			return fmt.Errorf("bencode: expected a list for %s", out.Type())
		}
		a := reflect.MakeSlice(out.Type(), len(l), len(l))
		for i, ev := range l {
			if err := bindValue(ev, a.Index(i)); err != nil {
				return err
			}
		}
		out.Set(a)
		return nil
	case reflect.Array:
		if out.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("bencode: unsupported array type %s", out.Type())
		}
		b, ok := v.(ByteString)
		if !ok {
			return fmt.Errorf("bencode: expected a byte string for %s", out.Type())
		}
		if len(b) != out.Len() {
			return fmt.Errorf("bencode: expected %d bytes for %s, got %d", out.Len(), out.Type(), len(b))
		}
		reflect.Copy(out, reflect.ValueOf([]byte(b)))
		return nil
	case reflect.Struct:
		return bindStruct(v, out)
	case reflect.Map:
		if out.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("bencode: map keys must be strings, got %s", out.Type().Key())
		}
		d, ok := v.(*Dict)
		if !ok {
			return fmt.Errorf("bencode: expected a dict for %s", out.Type())
		}
		m := reflect.MakeMap(out.Type())
		for i, k := range d.Keys {
			ev := reflect.New(out.Type().Elem()).Elem()
			if err := bindValue(d.Values[i], ev); err != nil {
				return err
			}
			m.SetMapIndex(reflect.ValueOf(k), ev)
		}
		out.Set(m)
		return nil
	case reflect.Pointer:
		ev := reflect.New(out.Type().Elem())
		if err := bindValue(v, ev.Elem()); err != nil {
			return err
		}
		out.Set(ev)
		return nil
	default:
		return fmt.Errorf("bencode: unsupported type %s", out.Type())
	}
}

func bindStruct(v Value, out reflect.Value) error {
	d, ok := v.(*Dict)
	if !ok {
		return fmt.Errorf("bencode: expected a dict for %s", out.Type())
	}
	ty := out.Type()
	for i := 0; i != ty.NumField(); i++ {
		f := ty.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("bencode")
		if tag == "" {
			return fmt.Errorf("bencode: expected bencode tag on %s.%s", ty, f.Name)
		}
		name, required := parseTag(tag)
		ev, ok := d.Get(name)
		if !ok {
			if required {
				return fmt.Errorf("bencode: missing key %s", name)
			}
			continue
		}
		if err := bindValue(ev, out.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
