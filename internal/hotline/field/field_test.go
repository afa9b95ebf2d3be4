package field

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := []Field{
		New(UserLogin, Scramble([]byte("guest"))),
		New(UserId, []byte{0x00, 0x2A}),
		New(ServerName, []byte("rhxd Test Server")),
	}

	buf := EncodeAll(fields)

	decoded, err := DecodeAll(buf, len(fields))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}

	if len(decoded) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(decoded), len(fields))
	}
	for i := range fields {
		if decoded[i].ID != fields[i].ID {
			t.Errorf("field %d: id = %d, want %d", i, decoded[i].ID, fields[i].ID)
		}
		if !bytes.Equal(decoded[i].Bytes, fields[i].Bytes) {
			t.Errorf("field %d: bytes = % X, want % X", i, decoded[i].Bytes, fields[i].Bytes)
		}
	}
}

func TestDecodeAllRejectsSizeOverrun(t *testing.T) {
	// A single field header declaring size 100 with only 2 bytes following.
	data := []byte{0x00, 0x65, 0x00, 0x64, 0xAA, 0xBB}

	_, err := DecodeAll(data, 1)
	if !errors.Is(err, ErrSizeOverrun) {
		t.Fatalf("DecodeAll() err = %v, want ErrSizeOverrun", err)
	}
}

func TestDecodeAllRejectsShortHeader(t *testing.T) {
	data := []byte{0x00, 0x65}

	_, err := DecodeAll(data, 1)
	if !errors.Is(err, ErrSizeOverrun) {
		t.Fatalf("DecodeAll() err = %v, want ErrSizeOverrun", err)
	}
}

func TestFind(t *testing.T) {
	fields := []Field{
		New(UserId, []byte{0x00, 0x01}),
		New(Data, []byte("hi")),
	}

	f, ok := Find(fields, Data)
	if !ok {
		t.Fatal("Find(Data) not found")
	}
	if f.String() != "hi" {
		t.Errorf("Find(Data).String() = %q, want %q", f.String(), "hi")
	}

	if _, ok := Find(fields, ChatId); ok {
		t.Error("Find(ChatId) found, want not found")
	}
}

func TestScrambleIsInvolutive(t *testing.T) {
	original := []byte("s3cr3t")

	scrambled := Scramble(original)
	if bytes.Equal(scrambled, original) {
		t.Fatal("Scramble did not change input")
	}

	back := Scramble(scrambled)
	if !bytes.Equal(back, original) {
		t.Errorf("Scramble(Scramble(x)) = %q, want %q", back, original)
	}
}

func TestUint16Uint32(t *testing.T) {
	f16 := New(Version, []byte{0x00, 0xC5})
	if got := f16.Uint16(); got != 197 {
		t.Errorf("Uint16() = %d, want 197", got)
	}

	f32 := New(BannerId, []byte{0x00, 0x00, 0x00, 0x00})
	if got := f32.Uint32(); got != 0 {
		t.Errorf("Uint32() = %d, want 0", got)
	}
}
