package wire

import (
	"bytes"
	"testing"
)

func TestAccessPrivileges_RoundTrip(t *testing.T) {
	values := []AccessPrivileges{
		0,
		0x07,
		0x0F,
		AccessUploadFile | AccessDownloadFile | AccessDeleteFile,
		0xFFFFFFFFFFFFFFFF,
		0x8000000000000000,
		0x0102030405060708,
	}

	for _, want := range values {
		got := AccessFromWire(want.ToWire())
		if got != want {
			t.Errorf("round trip: got %#x, want %#x", uint64(got), uint64(want))
		}
	}
}

// TestAccessPrivileges_FixedVector pins the documented little-endian-host
// wire layout: bits 0,1,2 set reverses to 0xE0 in the first byte.
func TestAccessPrivileges_FixedVector(t *testing.T) {
	if !nativeLittleEndian {
		t.Skip("fixed vector is defined for little-endian hosts")
	}

	a := AccessPrivileges(0x0000000000000007)
	want := [8]byte{0xE0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	got := a.ToWire()
	if !bytes.Equal(got[:], want[:]) {
		t.Errorf("ToWire() = % X, want % X", got, want)
	}

	back := AccessFromWire(got)
	if back != a {
		t.Errorf("AccessFromWire(ToWire(x)) = %#x, want %#x", uint64(back), uint64(a))
	}
}

func TestAccessPrivileges_Has(t *testing.T) {
	a := AccessUploadFile | AccessDownloadFile

	if !a.Has(AccessUploadFile) {
		t.Error("Has(AccessUploadFile) = false, want true")
	}
	if a.Has(AccessDeleteFile) {
		t.Error("Has(AccessDeleteFile) = true, want false")
	}
	if !a.Has(AccessUploadFile | AccessDownloadFile) {
		t.Error("Has(both) = false, want true")
	}
	if a.Has(AccessUploadFile | AccessDeleteFile) {
		t.Error("Has(upload|delete) = true, want false")
	}
}
