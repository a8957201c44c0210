package bencode

import (
	"bytes"
	"fmt"
	"strconv"
)

// Encode serializes v to its canonical byte form. Integers are minimal
// decimal, dictionaries are written in stored key order, so a tree produced
// by Parse re-encodes to the exact bytes it was parsed from. Encoding is
// total; a nil Value panics.
func Encode(v Value) []byte {
	w := newWriter()
	w.writeValue(v)
	return w.buf.Bytes()
}

// Compare orders two values in shortlex order of their encoded form. Returns
// 0 for equal, -1 when a sorts first and 1 when b sorts first.
func Compare(a, b Value) int {
	abytes := Encode(a)
	bbytes := Encode(b)
	if len(abytes) < len(bbytes) {
		return -1
	} else if len(abytes) > len(bbytes) {
		return 1
	}
	return bytes.Compare(abytes, bbytes)
}

type writer struct {
	buf bytes.Buffer
}

func newWriter() writer {
	return writer{}
}

func (w *writer) writeBytes(b []byte) {
	w.buf.WriteString(strconv.Itoa(len(b)))
	w.buf.WriteByte(bytesLengthSep)
	w.buf.Write(b)
}

func (w *writer) writeInteger(n int64) {
	w.buf.WriteByte(numberStart)
	w.buf.WriteString(strconv.FormatInt(n, 10))
	w.buf.WriteByte(bencodeEnd)
}

func (w *writer) writeValue(v Value) {
	switch t := v.(type) {
	case Integer:
		w.writeInteger(int64(t))
	case ByteString:
		w.writeBytes(t)
	case List:
		w.buf.WriteByte(listStart)
		for _, e := range t {
			w.writeValue(e)
		}
		w.buf.WriteByte(bencodeEnd)
	case *Dict:
		w.buf.WriteByte(dictStart)
		for i, k := range t.Keys {
			w.writeBytes([]byte(k))
			w.writeValue(t.Values[i])
		}
		w.buf.WriteByte(bencodeEnd)
	default:
		panic(fmt.Sprintf("bencode: unrecognized value type %T", v))
	}
}
