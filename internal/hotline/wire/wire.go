// Package wire implements the primitive big-endian integer encodings and the
// AccessPrivileges bitfield transform used across the Hotline protocol.
package wire

import "encoding/binary"

// PutUint16 writes v as two big-endian bytes to b[0:2].
func PutUint16(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

// Uint16 reads two big-endian bytes from b[0:2].
func Uint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// PutUint32 writes v as four big-endian bytes to b[0:4].
func PutUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// Uint32 reads four big-endian bytes from b[0:4].
func Uint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
