package firmware

import (
	"encoding/binary"

	"github.com/tamzrod/modfw/internal/identity"
)

// EndFlashHeaderOK and EndFlashHeaderFail are the two verify_header values
// written to byte 0 of the trailer block.
const (
	EndFlashHeaderOK   uint8 = 0xAA
	EndFlashHeaderFail uint8 = 0xFF
)

// EndFlashBlock returns the 16-byte trailer written to TrailerAddr at the
// end of a page pipeline run: byte 0 is the verify header, bytes 6-7 carry
// the target version little-endian, bytes 12-15 carry the little-endian
// boot-entry address. Every other byte is zero.
func EndFlashBlock(version identity.Version, failed bool) [16]byte {
	var block [16]byte

	if failed {
		block[0] = EndFlashHeaderFail
	} else {
		block[0] = EndFlashHeaderOK
	}

	binary.LittleEndian.PutUint16(block[6:8], version.Encode())
	binary.LittleEndian.PutUint32(block[12:16], uint32(BootEntry))

	return block
}
