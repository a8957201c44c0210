// This package defines a bencode codec built around an explicit value tree. Parsing produces a
// tagged Value which preserves dictionary key order exactly as it appeared on the wire, so
// re-encoding a parsed subtree reproduces its original bytes. A struct mapping layer driven by
// `bencode:".."` tags sits on top of the tree for documents with a fixed shape.
package bencode

const (
	numberStart    = 0x69
	dictStart      = 0x64
	listStart      = 0x6c
	bencodeEnd     = 0x65
	bytesLengthSep = 0x3a
)
