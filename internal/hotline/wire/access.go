package wire

import (
	"encoding/binary"
	"math/bits"
)

// AccessPrivileges is a 64-bit bitfield of permission flags granted to a
// session: upload/download/delete, chat, news, and moderation capabilities.
type AccessPrivileges uint64

// Access bit positions, low bit first.
const (
	AccessDeleteFile AccessPrivileges = 1 << iota
	AccessUploadFile
	AccessDownloadFile
	AccessUploadAnywhere
	AccessCreateFolder
	AccessDeleteFolder
	AccessRenameFolder
	AccessMoveFolder

	AccessReadChat
	AccessSendChat
	AccessOpenChat

	AccessCreateUser
	AccessDeleteUser
	AccessModifyUser

	AccessNewsReadArticle
	AccessNewsPostArticle
	AccessNewsDeleteArticle
	AccessNewsCreateCategory
	AccessNewsDeleteCategory

	AccessDisconnectUser
	AccessCannotBeDiscon

	AccessComment
	AccessGetClientInfo
)

// Has reports whether all bits set in want are also set in a.
func (a AccessPrivileges) Has(want AccessPrivileges) bool {
	return a&want == want
}

// nativeLittleEndian reports whether the host's native integer byte order is
// little-endian, determined once at package init.
var nativeLittleEndian = func() bool {
	b := binary.NativeEndian.AppendUint16(nil, 1)
	return b[0] == 1
}()

// ToWire encodes a as 8 bytes in host byte order. On a little-endian host
// each byte additionally has its bits reversed, matching the historical C
// bitfield layout of the reference Hotline server.
func (a AccessPrivileges) ToWire() [8]byte {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(a))

	if nativeLittleEndian {
		reverseBits(&buf)
	}

	return buf
}

// AccessFromWire decodes the 8-byte wire representation produced by ToWire.
func AccessFromWire(b [8]byte) AccessPrivileges {
	if nativeLittleEndian {
		reverseBits(&b)
	}

	return AccessPrivileges(binary.NativeEndian.Uint64(b[:]))
}

func reverseBits(buf *[8]byte) {
	for i, b := range buf {
		buf[i] = bits.Reverse8(b)
	}
}
