// Package transaction implements the 20-byte Hotline transaction header,
// its field table, and single-connection reassembly of multi-part
// transactions by id.
package transaction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// HeaderSize is the fixed size in bytes of a transaction header.
const HeaderSize = 20

// Known transaction kinds. Reserved-but-unimplemented kinds (109, the full
// 200, 202-213, 370-410) have no constant here; callers see them only as
// their raw numeric Kind.
const (
	KindSendChat          uint16 = 105
	KindChatMessage       uint16 = 106
	KindLogin             uint16 = 107
	KindSendInstantMsg    uint16 = 108
	KindServerMessage     uint16 = 104
	KindDisconnectMsg     uint16 = 111
	KindAgreed            uint16 = 121
	KindGetFileNameList   uint16 = 200
	KindGetUserNameList   uint16 = 300
	KindNotifyChangeUser  uint16 = 301
	KindNotifyDeleteUser  uint16 = 302
	KindGetClientInfoText uint16 = 303
)

// Wire error codes carried in the header's ErrorCode.
const (
	ErrOk               uint32 = 0
	ErrUnknownError      uint32 = 1
	ErrPermissionDenied  uint32 = 2
	ErrNotFound          uint32 = 3
	ErrAlreadyExists     uint32 = 4
	ErrLoginFailed       uint32 = 5
)

// Errors returned by codec-layer framing failures. Per the error handling
// design, these are never reported over the wire: they indicate the
// channel itself cannot be trusted and the session must be torn down.
var (
	ErrZeroID       = errors.New("transaction: id is zero")
	ErrSizeMismatch = errors.New("transaction: data_size exceeds total_size")
)

// Header is the fixed 20-byte preamble of every transaction.
type Header struct {
	Flags     byte
	IsReply   bool
	Kind      uint16
	ID        uint32
	ErrorCode uint32
	TotalSize uint32
	DataSize  uint32
}

// Transaction is a decoded header paired with its field table.
type Transaction struct {
	Header Header
	Fields []field.Field
}

// NewRequest builds a single-part request transaction, where DataSize
// always equals TotalSize.
func NewRequest(kind uint16, id uint32, fields []field.Field) Transaction {
	return buildSinglePart(kind, id, 0, false, fields)
}

// NewReply builds a single-part reply transaction echoing id, carrying the
// given wire error code.
func NewReply(kind uint16, id uint32, errorCode uint32, fields []field.Field) Transaction {
	return buildSinglePart(kind, id, errorCode, true, fields)
}

func buildSinglePart(kind uint16, id uint32, errorCode uint32, isReply bool, fields []field.Field) Transaction {
	size := uint32(fieldTableSize(fields))
	return Transaction{
		Header: Header{
			IsReply:   isReply,
			Kind:      kind,
			ID:        id,
			ErrorCode: errorCode,
			TotalSize: size,
			DataSize:  size,
		},
		Fields: fields,
	}
}

func fieldTableSize(fields []field.Field) int {
	if len(fields) == 0 {
		return 0
	}
	n := 2 // field_count
	for _, f := range fields {
		n += f.Size()
	}
	return n
}

// Encode serializes t to its wire form: header, then (when DataSize > 0) a
// field count and the field table.
func (t Transaction) Encode() []byte {
	buf := make([]byte, HeaderSize, HeaderSize+int(t.Header.DataSize))

	buf[0] = t.Header.Flags
	if t.Header.IsReply {
		buf[1] = 1
	}
	wire.PutUint16(buf[2:4], t.Header.Kind)
	wire.PutUint32(buf[4:8], t.Header.ID)
	wire.PutUint32(buf[8:12], t.Header.ErrorCode)
	wire.PutUint32(buf[12:16], t.Header.TotalSize)
	wire.PutUint32(buf[16:20], t.Header.DataSize)

	if t.Header.DataSize == 0 {
		return buf
	}

	count := make([]byte, 2)
	wire.PutUint16(count, uint16(len(t.Fields)))
	buf = append(buf, count...)
	buf = append(buf, field.EncodeAll(t.Fields)...)

	return buf
}

// DecodeHeader parses the fixed 20-byte header from r.
func DecodeHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("transaction: read header: %w", err)
	}
	return decodeHeaderBytes(buf)
}

func decodeHeaderBytes(buf []byte) (Header, error) {
	h := Header{
		Flags:     buf[0],
		IsReply:   buf[1] != 0,
		Kind:      wire.Uint16(buf[2:4]),
		ID:        wire.Uint32(buf[4:8]),
		ErrorCode: wire.Uint32(buf[8:12]),
		TotalSize: wire.Uint32(buf[12:16]),
		DataSize:  wire.Uint32(buf[16:20]),
	}

	if h.ID == 0 {
		return Header{}, ErrZeroID
	}
	if h.DataSize > h.TotalSize {
		return Header{}, ErrSizeMismatch
	}

	return h, nil
}

// Decode reads one complete transaction (header, then its declared
// data_size payload bytes) from r. It parses the field table out of that
// payload; a payload of zero bytes decodes to no fields.
//
// Decode does not reassemble multi-part transactions (total_size >
// data_size); callers needing reassembly use a Reassembler.
func Decode(r io.Reader) (Transaction, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return Transaction{}, err
	}

	payload := make([]byte, h.DataSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Transaction{}, fmt.Errorf("transaction: read payload: %w", err)
	}

	fields, err := decodePayload(payload)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{Header: h, Fields: fields}, nil
}

func decodePayload(payload []byte) ([]field.Field, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	if len(payload) < 2 {
		return nil, fmt.Errorf("transaction: field_count: %w", io.ErrUnexpectedEOF)
	}

	count := int(binary.BigEndian.Uint16(payload[0:2]))
	fields, err := field.DecodeAll(payload[2:], count)
	if err != nil {
		return nil, fmt.Errorf("transaction: %w", err)
	}

	return fields, nil
}

// Reassembler accumulates the parts of a multi-part transaction, keyed by
// transaction id, until total_size bytes of payload have been collected.
// The MVP emits only single-part transactions, but inbound reassembly is an
// interface contract regardless of what this server itself ever writes.
type Reassembler struct {
	parts map[uint32]*partial
}

type partial struct {
	header  Header
	payload []byte
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{parts: make(map[uint32]*partial)}
}

// Feed consumes one header and its data_size payload bytes (already read by
// the caller) and reports whether the transaction identified by header.ID is
// now complete. When complete, it returns the assembled Transaction and
// removes the in-progress state for that id.
func (r *Reassembler) Feed(h Header, payload []byte) (Transaction, bool, error) {
	if uint32(len(payload)) != h.DataSize {
		return Transaction{}, false, fmt.Errorf("transaction: payload length %d does not match data_size %d", len(payload), h.DataSize)
	}

	p, ok := r.parts[h.ID]
	if !ok {
		p = &partial{header: h, payload: make([]byte, 0, h.TotalSize)}
		r.parts[h.ID] = p
	}
	p.payload = append(p.payload, payload...)

	if uint32(len(p.payload)) < p.header.TotalSize {
		return Transaction{}, false, nil
	}

	delete(r.parts, h.ID)

	fields, err := decodePayload(p.payload)
	if err != nil {
		return Transaction{}, false, err
	}

	final := h
	final.DataSize = uint32(len(p.payload))

	return Transaction{Header: final, Fields: fields}, true, nil
}
