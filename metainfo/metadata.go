// This package extracts torrent metadata documents. A document is a bencoded
// dictionary carrying an announce location and an info dictionary; the sha1
// of the info dictionary's canonical bytes identifies the described content.
package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/meow-io/go-swarm/bencode"
)

// HashSize is the size of a sha1 digest, which is also the stride of the
// pieces field.
const HashSize = 20

// ErrInvalidInput covers every structural failure during extraction. The
// underlying cause is wrapped into the message but callers branch on this
// sentinel alone.
var ErrInvalidInput = errors.New("metainfo: invalid input")

type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Metadata is the extracted form of a metadata document. Pieces borrows from
// the buffer the document was extracted from.
type Metadata struct {
	Announce    string
	Name        string
	Length      int64
	PieceLength int64
	Pieces      Pieces
	InfoHash    Hash
}

// Pieces is a fixed-stride view over the concatenated per-piece hashes.
type Pieces struct {
	data []byte
}

func NewPieces(data []byte) Pieces {
	return Pieces{data: data}
}

func (p Pieces) Count() int {
	return len(p.data) / HashSize
}

func (p Pieces) At(i int) Hash {
	var h Hash
	copy(h[:], p.data[i*HashSize:(i+1)*HashSize])
	return h
}

// Each calls f for every piece hash in order until f returns false.
func (p Pieces) Each(f func(Hash) bool) {
	for i := 0; i != p.Count(); i++ {
		if !f(p.At(i)) {
			return
		}
	}
}

func (p Pieces) Bytes() []byte {
	return p.data
}

// Extract parses buf as a metadata document, validates its shape and derives
// the info hash by re-encoding the info subtree. Trailing bytes after the
// document are ignored.
func Extract(buf []byte) (*Metadata, error) {
	return ExtractDepth(buf, bencode.MaxDepth)
}

// ExtractDepth is Extract with an explicit parser nesting limit.
func ExtractDepth(buf []byte, maxDepth int) (*Metadata, error) {
	v, _, err := bencode.ParseDepth(buf, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	root, ok := v.(*bencode.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: expected a dict at the top level", ErrInvalidInput)
	}
	announce, ok := root.GetBytes("announce")
	if !ok || !utf8.Valid(announce) {
		return nil, fmt.Errorf("%w: missing or malformed announce", ErrInvalidInput)
	}
	info, ok := root.GetDict("info")
	if !ok {
		return nil, fmt.Errorf("%w: missing info dict", ErrInvalidInput)
	}
	name, ok := info.GetBytes("name")
	if !ok || !utf8.Valid(name) {
		return nil, fmt.Errorf("%w: missing or malformed name", ErrInvalidInput)
	}
	length, ok := info.GetInteger("length")
	if !ok {
		return nil, fmt.Errorf("%w: missing length", ErrInvalidInput)
	}
	pieceLength, ok := info.GetInteger("piece length")
	if !ok {
		return nil, fmt.Errorf("%w: missing piece length", ErrInvalidInput)
	}
	pieces, ok := info.GetBytes("pieces")
	if !ok || len(pieces)%HashSize != 0 {
		return nil, fmt.Errorf("%w: missing or misaligned pieces", ErrInvalidInput)
	}
	return &Metadata{
		Announce:    string(announce),
		Name:        string(name),
		Length:      int64(length),
		PieceLength: int64(pieceLength),
		Pieces:      NewPieces(pieces),
		InfoHash:    Hash(sha1.Sum(bencode.Encode(info))),
	}, nil
}
