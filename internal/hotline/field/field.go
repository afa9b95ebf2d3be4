// Package field implements the Hotline transaction field codec: an
// (id, size, bytes) triple with no padding, repeated to fill a
// transaction's data payload.
package field

import (
	"errors"
	"fmt"

	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// Recognized field ids (§6 of the protocol design).
const (
	ErrorString      uint16 = 100
	Data             uint16 = 101
	UserName         uint16 = 102
	UserId           uint16 = 103
	UserIconId       uint16 = 104
	UserLogin        uint16 = 105
	UserPassword     uint16 = 106
	ChatOptions      uint16 = 109
	UserAccess       uint16 = 110
	UserFlags        uint16 = 112
	Options          uint16 = 113
	ChatId           uint16 = 114
	Version          uint16 = 160
	BannerId         uint16 = 161
	ServerName       uint16 = 162
	UserNameWithInfo uint16 = 300
)

// HeaderSize is the size in bytes of one field's id+size header.
const HeaderSize = 4

// ErrSizeOverrun is returned when a field's declared size claims more bytes
// than remain in the buffer being parsed.
var ErrSizeOverrun = errors.New("field: size overrun")

// Field is one (id, bytes) pair from a transaction's data payload.
type Field struct {
	ID    uint16
	Bytes []byte
}

// New constructs a Field, copying data so later mutation of the caller's
// slice cannot corrupt the field.
func New(id uint16, data []byte) Field {
	b := make([]byte, len(data))
	copy(b, data)
	return Field{ID: id, Bytes: b}
}

// Size returns the encoded size of the field, including its header.
func (f Field) Size() int {
	return HeaderSize + len(f.Bytes)
}

// Encode appends the wire representation of f to buf and returns the result.
func (f Field) Encode(buf []byte) []byte {
	header := make([]byte, HeaderSize)
	wire.PutUint16(header[0:2], f.ID)
	wire.PutUint16(header[2:4], uint16(len(f.Bytes)))
	buf = append(buf, header...)
	buf = append(buf, f.Bytes...)
	return buf
}

// Uint16 interprets Bytes as a big-endian u16.
func (f Field) Uint16() uint16 {
	if len(f.Bytes) < 2 {
		return 0
	}
	return wire.Uint16(f.Bytes)
}

// Uint32 interprets Bytes as a big-endian u32.
func (f Field) Uint32() uint32 {
	if len(f.Bytes) < 4 {
		return 0
	}
	return wire.Uint32(f.Bytes)
}

// String interprets Bytes as raw UTF-8-compatible text.
func (f Field) String() string {
	return string(f.Bytes)
}

// DecodeAll parses every field in data, returning them in wire order.
// It rejects any field whose declared size claims more bytes than remain.
func DecodeAll(data []byte, count int) ([]Field, error) {
	fields := make([]Field, 0, count)
	off := 0

	for i := 0; i < count; i++ {
		if off+HeaderSize > len(data) {
			return nil, fmt.Errorf("field %d header: %w", i, ErrSizeOverrun)
		}

		id := wire.Uint16(data[off : off+2])
		size := int(wire.Uint16(data[off+2 : off+4]))
		off += HeaderSize

		if off+size > len(data) {
			return nil, fmt.Errorf("field %d body (id=%d, size=%d): %w", i, id, size, ErrSizeOverrun)
		}

		fields = append(fields, New(id, data[off:off+size]))
		off += size
	}

	return fields, nil
}

// EncodeAll concatenates the wire representation of every field in order.
func EncodeAll(fields []Field) []byte {
	buf := make([]byte, 0, encodedSize(fields))
	for _, f := range fields {
		buf = f.Encode(buf)
	}
	return buf
}

func encodedSize(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += f.Size()
	}
	return n
}

// Find returns the first field with the given id, if present.
func Find(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Scramble applies the Hotline login/password obfuscation: XOR every byte
// with 0xFF. The transform is involutive, so the same function both
// scrambles and unscrambles.
func Scramble(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ 0xFF
	}
	return out
}
