package transaction

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rhxd/rhxd/internal/hotline/field"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := []field.Field{
		field.New(field.Version, []byte{0x00, 0xC5}),
		field.New(field.BannerId, []byte{0x00, 0x00, 0x00, 0x00}),
		field.New(field.ServerName, []byte("rhxd Test Server")),
	}
	want := NewReply(KindLogin, 42, ErrOk, fields)

	buf := want.Encode()

	got, err := Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Header != want.Header {
		t.Errorf("header = %+v, want %+v", got.Header, want.Header)
	}
	if len(got.Fields) != len(want.Fields) {
		t.Fatalf("got %d fields, want %d", len(got.Fields), len(want.Fields))
	}
	for i := range want.Fields {
		if got.Fields[i].ID != want.Fields[i].ID || !bytes.Equal(got.Fields[i].Bytes, want.Fields[i].Bytes) {
			t.Errorf("field %d = %+v, want %+v", i, got.Fields[i], want.Fields[i])
		}
	}
}

func TestEncodeDecodeEmptyPayload(t *testing.T) {
	want := NewReply(KindAgreed, 7, ErrOk, nil)

	buf := want.Encode()
	if len(buf) != HeaderSize {
		t.Fatalf("Encode() length = %d, want %d (no field table for empty payload)", len(buf), HeaderSize)
	}

	got, err := Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Fields) != 0 {
		t.Errorf("got %d fields, want 0", len(got.Fields))
	}
}

func TestDecodeHeaderRejectsZeroID(t *testing.T) {
	buf := NewReply(KindLogin, 1, ErrOk, nil).Encode()
	buf[4], buf[5], buf[6], buf[7] = 0, 0, 0, 0 // zero the id field

	_, err := Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrZeroID) {
		t.Fatalf("Decode() err = %v, want ErrZeroID", err)
	}
}

func TestDecodeHeaderRejectsSizeMismatch(t *testing.T) {
	buf := NewReply(KindLogin, 1, ErrOk, nil).Encode()
	// total_size (offset 12..16) forced below data_size (offset 16..20).
	buf[12], buf[13], buf[14], buf[15] = 0, 0, 0, 0
	buf[16], buf[17], buf[18], buf[19] = 0, 0, 0, 1

	_, err := Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("Decode() err = %v, want ErrSizeMismatch", err)
	}
}

func TestReassemblerSinglePart(t *testing.T) {
	fields := []field.Field{field.New(field.Data, []byte("hi"))}
	payload := encodePayload(fields)

	header := Header{
		Kind:      KindChatMessage,
		ID:        5,
		IsReply:   true,
		TotalSize: uint32(len(payload)),
		DataSize:  uint32(len(payload)),
	}

	r := NewReassembler()
	got, done, err := r.Feed(header, payload)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !done {
		t.Fatal("Feed() reported incomplete for a single-part transaction")
	}
	if len(got.Fields) != 1 || got.Fields[0].String() != "hi" {
		t.Errorf("fields = %+v, want one Data field %q", got.Fields, "hi")
	}
}

func TestReassemblerMultiPart(t *testing.T) {
	fields := []field.Field{field.New(field.Data, []byte("hello world"))}
	payload := encodePayload(fields)

	header := Header{
		Kind:      KindSendChat,
		ID:        99,
		TotalSize: uint32(len(payload)),
	}

	r := NewReassembler()

	part1 := payload[:4]
	part2 := payload[4:]

	h1 := header
	h1.DataSize = uint32(len(part1))
	if _, done, err := r.Feed(h1, part1); err != nil {
		t.Fatalf("Feed(part1): %v", err)
	} else if done {
		t.Fatal("Feed(part1) reported done, want incomplete")
	}

	h2 := header
	h2.DataSize = uint32(len(part2))
	got, done, err := r.Feed(h2, part2)
	if err != nil {
		t.Fatalf("Feed(part2): %v", err)
	}
	if !done {
		t.Fatal("Feed(part2) reported incomplete, want done")
	}
	if len(got.Fields) != 1 || got.Fields[0].String() != "hello world" {
		t.Errorf("reassembled fields = %+v, want one Data field %q", got.Fields, "hello world")
	}
}

func encodePayload(fields []field.Field) []byte {
	buf := make([]byte, 2)
	buf[1] = byte(len(fields))
	return append(buf, field.EncodeAll(fields)...)
}
