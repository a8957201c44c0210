package bencode

// Value is a single bencoded value. Concrete types are Integer, ByteString,
// List and *Dict.
type Value interface {
	bencodeValue()
}

// Integer is a signed 64-bit bencode integer.
type Integer int64

// ByteString is an arbitrary byte sequence. When produced by Parse it is a
// view into the input buffer and must not outlive it.
type ByteString []byte

// List is an ordered sequence of values.
type List []Value

// Dict is an ordered mapping from byte-string keys to values. Keys and Values
// are parallel slices; iteration order is insertion order, which for a parsed
// dictionary is wire order. Keys hold the raw key bytes as strings.
type Dict struct {
	Keys   []string
	Values []Value
}

func (Integer) bencodeValue()    {}
func (ByteString) bencodeValue() {}
func (List) bencodeValue()       {}
func (*Dict) bencodeValue()      {}

// DictEntry is a convenience type for building Dict values.
type DictEntry struct {
	Key   string
	Value Value
}

func NewDict(entries ...DictEntry) *Dict {
	d := &Dict{
		Keys:   make([]string, len(entries)),
		Values: make([]Value, len(entries)),
	}
	for i, e := range entries {
		d.Keys[i] = e.Key
		d.Values[i] = e.Value
	}
	return d
}

func (d *Dict) Len() int {
	return len(d.Keys)
}

// Get returns the value bound to key, if any.
func (d *Dict) Get(key string) (Value, bool) {
	for i, k := range d.Keys {
		if k == key {
			return d.Values[i], true
		}
	}
	return nil, false
}

// GetDict returns the value bound to key if it is a dictionary.
func (d *Dict) GetDict(key string) (*Dict, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Dict)
	return sub, ok
}

// GetBytes returns the value bound to key if it is a byte string.
func (d *Dict) GetBytes(key string) (ByteString, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.(ByteString)
	return b, ok
}

// GetInteger returns the value bound to key if it is an integer.
func (d *Dict) GetInteger(key string) (Integer, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(Integer)
	return n, ok
}

// set binds key to v. A duplicate key keeps its original position and takes
// the new value.
func (d *Dict) set(key string, v Value) {
	for i, k := range d.Keys {
		if k == key {
			d.Values[i] = v
			return
		}
	}
	d.Keys = append(d.Keys, key)
	d.Values = append(d.Values, v)
}
