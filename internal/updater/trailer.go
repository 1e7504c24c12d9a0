package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
	"github.com/tamzrod/modfw/internal/crc"
	"github.com/tamzrod/modfw/internal/firmware"
)

// maxTrailerEraseRetries bounds the trailer's own erase step: the first
// attempt plus this many retries.
const maxTrailerEraseRetries = 5

// maxTrailerSequenceRetries bounds how many times the *entire*
// erase->write->crc sequence for the trailer page is repeated when crc
// verification fails: the first attempt plus this many retries.
const maxTrailerSequenceRetries = 10

// writeTrailer is Phase 5: write the end-flash block that tells the
// module whether the update it just received is trustworthy. It always
// runs, even after an earlier fatal error, so the device always boots
// with a definitive verify_header rather than a half-written one.
// failed reflects whether any earlier phase already recorded a fatal
// error; the trailer's header byte is 0xFF exactly when failed is true.
// Exhausting the trailer's own retries returns a *TrailerError without
// rewriting the block.
func (u *Updater) writeTrailer(failed bool) error {
	block := firmware.EndFlashBlock(u.version, failed)

	for attempt := 0; attempt <= maxTrailerSequenceRetries; attempt++ {
		if !u.eraseTrailer() {
			return &TrailerError{Stage: "erase"}
		}

		checksum, err := u.writeTrailerBytes(block)
		if err != nil {
			u.log.Debug().Err(err).Msg("trailer: write")
			continue
		}

		if u.crcAndAwait(firmware.TrailerAddr, checksum) {
			u.log.Info().Bool("failed", failed).Msg("trailer: verified")
			return nil
		}
		u.log.Warn().Int("attempt", attempt+1).Msg("trailer: crc failed, repeating full sequence")
	}

	return &TrailerError{Stage: "crc"}
}

// eraseTrailer erases the trailer page, retrying up to
// maxTrailerEraseRetries times.
func (u *Updater) eraseTrailer() bool {
	for attempt := 0; attempt <= maxTrailerEraseRetries; attempt++ {
		if u.eraseAndAwait(firmware.TrailerAddr) {
			return true
		}
		u.log.Warn().Int("attempt", attempt+1).Msg("trailer: erase failed, retrying")
	}
	return false
}

// writeTrailerBytes sends the 16-byte trailer as two 8-byte 0x0B chunks
// and returns the accumulated CRC.
func (u *Updater) writeTrailerBytes(block [16]byte) (uint32, error) {
	checksum, err := crc.Page(block[:])
	if err != nil {
		return 0, err
	}

	for seq := uint16(0); seq < 2; seq++ {
		chunk := block[seq*8 : seq*8+8]
		pkt, err := bootproto.FirmwareData(u.moduleID, seq, chunk)
		if err != nil {
			return 0, err
		}
		if err := u.send(pkt); err != nil {
			u.log.Debug().Err(err).Msg("trailer: send chunk")
		}
		time.Sleep(u.timings.InterChunkDelay)
	}

	return checksum, nil
}
