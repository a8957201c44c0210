// This package defines the peer identity presented to trackers. Peer IDs are 20 byte values in
// the Azureus style, a fixed client prefix followed by random bytes.
package ids

import (
	"bytes"
	crypto_rand "crypto/rand"
	"fmt"
	"io"
)

const peerIDPrefix = "-SW0001-"

type PeerID [20]byte

func PeerIDFromBytes(b []byte) PeerID {
	return [20]byte(b)
}

func NewPeerID() PeerID {
	var id PeerID
	copy(id[:], peerIDPrefix)
	_, err := io.ReadFull(crypto_rand.Reader, id[len(peerIDPrefix):])
	if err != nil {
		panic("short read from random source")
	}
	return id
}

func (id PeerID) String() string {
	return fmt.Sprintf("%s%x", id[:len(peerIDPrefix)], id[len(peerIDPrefix):])
}

func Compare(a, b PeerID) int {
	return bytes.Compare(a[:], b[:])
}
