package wire

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16(buf, 0x1234)

	if buf[0] != 0x12 || buf[1] != 0x34 {
		t.Errorf("PutUint16: got % X, want 12 34", buf)
	}
	if got := Uint16(buf); got != 0x1234 {
		t.Errorf("Uint16() = %#x, want %#x", got, 0x1234)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32(buf, 0x01020304)

	want := []byte{0x01, 0x02, 0x03, 0x04}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("PutUint32: got % X, want % X", buf, want)
			break
		}
	}
	if got := Uint32(buf); got != 0x01020304 {
		t.Errorf("Uint32() = %#x, want %#x", got, 0x01020304)
	}
}
