// Package handshake implements the 12-byte client preamble and 8-byte
// server reply that precede any transaction exchange on a connection.
package handshake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PreambleSize is the size in bytes of the client's handshake preamble.
const PreambleSize = 12

// ReplySize is the size in bytes of the server's handshake reply.
const ReplySize = 8

// Magic is the four-byte ASCII preamble identifying a Hotline connection.
var Magic = [4]byte{'T', 'R', 'T', 'P'}

// ErrBadMagic is returned when the client preamble does not begin with Magic.
var ErrBadMagic = errors.New("handshake: bad magic, not a Hotline connection")

// errBadMagicCode is the non-zero error code written to the client when the
// magic does not match, before the connection is closed.
const errBadMagicCode uint32 = 1

// Preamble is the parsed client handshake.
type Preamble struct {
	SubProtocol [4]byte
	Version     uint16
	SubVersion  uint16
}

// Read consumes the 12-byte client preamble from r and validates its magic.
// On a bad magic it writes the failure reply to w and returns ErrBadMagic;
// callers must close the connection afterward without attempting further
// reads. On success it does not write anything; call WriteReply next.
func Read(r io.Reader, w io.Writer) (Preamble, error) {
	buf := make([]byte, PreambleSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Preamble{}, fmt.Errorf("handshake: read preamble: %w", err)
	}

	var magic [4]byte
	copy(magic[:], buf[0:4])
	if magic != Magic {
		_ = writeReply(w, errBadMagicCode)
		return Preamble{}, ErrBadMagic
	}

	p := Preamble{
		Version:    binary.BigEndian.Uint16(buf[8:10]),
		SubVersion: binary.BigEndian.Uint16(buf[10:12]),
	}
	copy(p.SubProtocol[:], buf[4:8])

	return p, nil
}

// WriteReply writes the successful 8-byte server reply: magic followed by a
// zero error code.
func WriteReply(w io.Writer) error {
	return writeReply(w, 0)
}

func writeReply(w io.Writer, errorCode uint32) error {
	buf := make([]byte, ReplySize)
	copy(buf[0:4], Magic[:])
	binary.BigEndian.PutUint32(buf[4:8], errorCode)

	_, err := w.Write(buf)
	return err
}
