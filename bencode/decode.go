package bencode

import (
	"fmt"
	"strconv"
)

// MaxDepth is the default nesting limit applied by Parse and Decode. The wire
// format itself has no limit, so one is imposed here to bound stack growth on
// hostile input.
const MaxDepth = 256

type ErrorKind int

const (
	KindUnexpectedToken ErrorKind = iota
	KindInvalidPrefixNumber
	KindInvalidByteString
	KindDepthExceeded
)

type DecodeError struct {
	Kind ErrorKind
	Pos  int64
	msg  string
}

func newDecodeError(kind ErrorKind, pos int64, msg string, vars ...interface{}) *DecodeError {
	return &DecodeError{kind, pos, fmt.Sprintf(msg, vars...)}
}

func (e *DecodeError) Error() string {
	return e.msg
}

// Parse decodes one value from the front of buf and returns it along with the
// unconsumed remainder. Byte strings in the returned tree are views into buf.
func Parse(buf []byte) (Value, []byte, error) {
	return ParseDepth(buf, MaxDepth)
}

// ParseDepth is Parse with an explicit nesting limit.
func ParseDepth(buf []byte, maxDepth int) (Value, []byte, error) {
	r := newReader(buf, maxDepth)
	v, err := r.readValue(0)
	if err != nil {
		return nil, nil, err
	}
	return v, r.buf[r.pos:], nil
}

// Decode is Parse but requires buf to hold exactly one value.
func Decode(buf []byte) (Value, error) {
	r := newReader(buf, MaxDepth)
	v, err := r.readValue(0)
	if err != nil {
		return nil, err
	}
	if !r.isAtEnd() {
		return nil, newDecodeError(KindUnexpectedToken, r.pos, "expected to be at end of buffer, %d bytes left", int64(len(r.buf))-r.pos)
	}
	return v, nil
}

type reader struct {
	buf      []byte
	pos      int64
	maxDepth int
}

func newReader(buf []byte, maxDepth int) reader {
	return reader{
		buf:      buf,
		pos:      0,
		maxDepth: maxDepth,
	}
}

func (r *reader) expectByte(b byte) error {
	if int64(len(r.buf)) == r.pos {
		return newDecodeError(KindUnexpectedToken, r.pos, "expected 0x%x at pos %d, but no more bytes left", b, r.pos)
	}
	c := r.buf[r.pos]
	if c != b {
		return newDecodeError(KindUnexpectedToken, r.pos, "expected 0x%x got 0x%x at pos %d", b, c, r.pos)
	}
	r.pos++
	return nil
}

func (r *reader) peek() (byte, bool) {
	if r.isAtEnd() {
		return 0, false
	}
	return r.buf[r.pos], true
}

func (r *reader) isAtEnd() bool {
	return r.pos >= int64(len(r.buf))
}

// readValue dispatches on the leading byte: 'd' selects a dict, 'l' a list, a
// digit or '-' a byte string and 'i' an integer. That priority matches the
// wire grammar exactly, including '-' reaching the byte-string production so a
// negative length fails there rather than as a stray token.
func (r *reader) readValue(depth int) (Value, error) {
	if depth >= r.maxDepth {
		return nil, newDecodeError(KindDepthExceeded, r.pos, "nesting exceeds %d levels at pos %d", r.maxDepth, r.pos)
	}
	c, ok := r.peek()
	if !ok {
		return nil, newDecodeError(KindUnexpectedToken, r.pos, "expected a value at pos %d, but no more bytes left", r.pos)
	}
	switch {
	case c == dictStart:
		return r.readDict(depth)
	case c == listStart:
		return r.readList(depth)
	case c >= 0x30 && c <= 0x39 || c == 0x2d:
		return r.readBytes()
	case c == numberStart:
		return r.readInteger()
	default:
		return nil, newDecodeError(KindUnexpectedToken, r.pos, "unexpected byte 0x%x at pos %d", c, r.pos)
	}
}

// readNumber consumes an optional minus sign and a decimal digit run.
func (r *reader) readNumber() (int64, error) {
	end := r.pos
	if end < int64(len(r.buf)) && r.buf[end] == 0x2d {
		end++
	}
	digits := int64(0)
	for end < int64(len(r.buf)) && r.buf[end] >= 0x30 && r.buf[end] <= 0x39 {
		end++
		digits++
	}
	if digits == 0 {
		return 0, newDecodeError(KindInvalidPrefixNumber, r.pos, "expected digits at pos %d", r.pos)
	}
	val, err := strconv.ParseInt(string(r.buf[r.pos:end]), 10, 64)
	if err != nil {
		return 0, newDecodeError(KindInvalidPrefixNumber, r.pos, "invalid number %q at pos %d", r.buf[r.pos:end], r.pos)
	}
	r.pos = end
	return val, nil
}

func (r *reader) readInteger() (Value, error) {
	if err := r.expectByte(numberStart); err != nil {
		return nil, err
	}
	val, err := r.readNumber()
	if err != nil {
		return nil, err
	}
	if err := r.expectByte(bencodeEnd); err != nil {
		return nil, err
	}
	return Integer(val), nil
}

func (r *reader) readBytes() (ByteString, error) {
	l, err := r.readNumber()
	if err != nil {
		return nil, err
	}
	if l < 0 {
		return nil, newDecodeError(KindInvalidByteString, r.pos, "negative length %d at pos %d", l, r.pos)
	}
	if err := r.expectByte(bytesLengthSep); err != nil {
		return nil, err
	}
	if int64(len(r.buf))-r.pos < l {
		return nil, newDecodeError(KindInvalidByteString, r.pos, "expected %d bytes at pos %d, %d left", l, r.pos, int64(len(r.buf))-r.pos)
	}
	b := r.buf[r.pos : r.pos+l]
	r.pos += l
	return ByteString(b), nil
}

func (r *reader) readList(depth int) (Value, error) {
	if err := r.expectByte(listStart); err != nil {
		return nil, err
	}
	l := List{}
	for {
		c, ok := r.peek()
		if !ok {
			return nil, newDecodeError(KindUnexpectedToken, r.pos, "unterminated list at pos %d", r.pos)
		}
		if c == bencodeEnd {
			r.pos++
			return l, nil
		}
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		l = append(l, v)
	}
}

func (r *reader) readDict(depth int) (Value, error) {
	if err := r.expectByte(dictStart); err != nil {
		return nil, err
	}
	d := NewDict()
	for {
		c, ok := r.peek()
		if !ok {
			return nil, newDecodeError(KindUnexpectedToken, r.pos, "unterminated dict at pos %d", r.pos)
		}
		if c == bencodeEnd {
			r.pos++
			return d, nil
		}
		if (c < 0x30 || c > 0x39) && c != 0x2d {
			return nil, newDecodeError(KindUnexpectedToken, r.pos, "expected byte-string key at pos %d, got 0x%x", r.pos, c)
		}
		key, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		d.set(string(key), v)
	}
}
