package bencode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInteger(t *testing.T) {
	require := require.New(t)

	v, rest, err := Parse([]byte("i42e"))
	require.Nil(err)
	require.Equal(Integer(42), v)
	require.Empty(rest)
}

func TestParseNegativeInteger(t *testing.T) {
	require := require.New(t)

	v, _, err := Parse([]byte("i-13e"))
	require.Nil(err)
	require.Equal(Integer(-13), v)
}

func TestParseByteString(t *testing.T) {
	require := require.New(t)

	v, rest, err := Parse([]byte("4:spam"))
	require.Nil(err)
	require.Equal(ByteString("spam"), v)
	require.Empty(rest)
}

func TestParseEmptyByteString(t *testing.T) {
	require := require.New(t)

	v, _, err := Parse([]byte("0:"))
	require.Nil(err)
	require.Equal(ByteString(""), v)
}

func TestParseList(t *testing.T) {
	require := require.New(t)

	v, rest, err := Parse([]byte("l4:spami42ee"))
	require.Nil(err)
	require.Equal(List{ByteString("spam"), Integer(42)}, v)
	require.Empty(rest)
}

func TestParseEmptyList(t *testing.T) {
	require := require.New(t)

	v, _, err := Parse([]byte("le"))
	require.Nil(err)
	require.Equal(List{}, v)
}

func TestParseDict(t *testing.T) {
	require := require.New(t)

	v, rest, err := Parse([]byte("d3:bar4:spam3:fooi42ee"))
	require.Nil(err)
	require.Empty(rest)
	d, ok := v.(*Dict)
	require.True(ok)
	require.Equal([]string{"bar", "foo"}, d.Keys)
	require.Equal([]Value{ByteString("spam"), Integer(42)}, d.Values)
}

func TestParseEmptyDict(t *testing.T) {
	require := require.New(t)

	v, _, err := Parse([]byte("de"))
	require.Nil(err)
	require.Equal(NewDict(), v)
}

func TestParseTrailingBytes(t *testing.T) {
	require := require.New(t)

	v, rest, err := Parse([]byte("i42e4:spam"))
	require.Nil(err)
	require.Equal(Integer(42), v)
	require.Equal([]byte("4:spam"), rest)

	_, err = Decode([]byte("i42e4:spam"))
	require.NotNil(err)
}

func TestParseNegativeLengthByteString(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("-1:spam"))
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindInvalidByteString, derr.Kind)
}

func TestParseTruncatedByteString(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("10:spam"))
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindInvalidByteString, derr.Kind)
}

func TestParseIntegerOverflow(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("i9223372036854775808e"))
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindInvalidPrefixNumber, derr.Kind)
}

func TestParseIntegerGarbage(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("iabce"))
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindInvalidPrefixNumber, derr.Kind)
}

func TestParseDuplicateKeys(t *testing.T) {
	require := require.New(t)

	v, _, err := Parse([]byte("d3:fooi1e3:bari2e3:fooi3ee"))
	require.Nil(err)
	d := v.(*Dict)
	require.Equal([]string{"foo", "bar"}, d.Keys)
	require.Equal([]Value{Integer(3), Integer(2)}, d.Values)
}

func TestParseNonStringDictKey(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("di1ei2ee"))
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindUnexpectedToken, derr.Kind)
}

func TestParseUnterminatedList(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte("l4:spam"))
	require.NotNil(err)
}

func TestParseEmptyInput(t *testing.T) {
	require := require.New(t)

	_, _, err := Parse([]byte(""))
	require.NotNil(err)
}

func TestParseDepthLimit(t *testing.T) {
	require := require.New(t)

	buf := []byte(strings.Repeat("l", 300) + strings.Repeat("e", 300))
	_, _, err := Parse(buf)
	require.NotNil(err)
	derr := &DecodeError{}
	require.ErrorAs(err, &derr)
	require.Equal(KindDepthExceeded, derr.Kind)

	_, _, err = ParseDepth([]byte("lllleeee"), 4)
	require.Nil(err)
	_, _, err = ParseDepth([]byte("llllleeeee"), 4)
	require.NotNil(err)
}

func TestParseZeroCopy(t *testing.T) {
	require := require.New(t)

	buf := []byte("4:spam")
	v, _, err := Parse(buf)
	require.Nil(err)
	buf[2] = 0x75
	require.Equal(ByteString("upam"), v)
}
