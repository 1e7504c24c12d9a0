package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
	"github.com/tamzrod/modfw/internal/crc"
	"github.com/tamzrod/modfw/internal/firmware"
)

// maxPageRetries bounds both the erase and the crc step of one page: the
// first attempt plus this many retries.
const maxPageRetries = 2

// erasePageNum is the fixed value the erase sub-command's "crc" wire field
// carries: that field is reused to hold a page count rather than a
// checksum for erase requests, and this encoding must be preserved as-is.
const erasePageNum = 2

// pageLoop is Phase 4: erase, write, and crc-verify every non-zero page
// of the image in order.
func (u *Updater) pageLoop() error {
	pages := u.image.Pages()

	for _, page := range pages {
		progress := 0
		if u.image.BinEnd > 0 {
			progress = 100 * page.PageBegin / u.image.BinEnd
		}
		u.State.setProgress(progress)

		if page.IsZero() {
			u.log.Debug().Int("page", page.PageBegin).Msg("page loop: skipping all-zero page")
			time.Sleep(u.timings.ZeroPageDelay)
			continue
		}

		if err := u.processPage(page); err != nil {
			return err
		}
		time.Sleep(u.timings.PageSuccessDelay)
	}

	return nil
}

// processPage runs one page through erase -> write -> crc, retrying the
// erase step up to maxPageRetries times and the crc step up to
// maxPageRetries times before failing fatally.
func (u *Updater) processPage(page firmware.PageJob) error {
	addr := page.FlashAddress()

	eraseFailures := 0
	for {
		if u.eraseAndAwait(addr) {
			break
		}
		eraseFailures++
		if eraseFailures > maxPageRetries {
			return &EraseFailedError{Kind: u.kind.String(), ModuleID: u.moduleID}
		}
		u.log.Warn().Int("page", page.PageBegin).Int("attempt", eraseFailures).Msg("page loop: erase failed, retrying")
	}

	crcFailures := 0
	for {
		checksum, err := u.writePage(page)
		if err != nil {
			return err
		}
		if u.crcAndAwait(addr, checksum) {
			break
		}
		crcFailures++
		if crcFailures > maxPageRetries {
			return &CRCFailedError{}
		}
		u.log.Warn().Int("page", page.PageBegin).Int("attempt", crcFailures).Msg("page loop: crc failed, retrying")
	}

	return nil
}

// writePage streams a page's bytes as 8-byte 0x0B chunks and returns the
// CRC accumulated across them.
func (u *Updater) writePage(page firmware.PageJob) (uint32, error) {
	checksum, err := crc.Page(page.Data)
	if err != nil {
		return 0, err
	}

	for off := 0; off < len(page.Data); off += 8 {
		chunk := page.Data[off : off+8]
		seq := uint16(off / 8)

		pkt, err := bootproto.FirmwareData(u.moduleID, seq, chunk)
		if err != nil {
			return 0, err
		}
		if err := u.send(pkt); err != nil {
			u.log.Debug().Err(err).Msg("write page: send chunk")
		}
		time.Sleep(u.timings.InterChunkDelay)
	}

	return checksum, nil
}

// eraseAndAwait sends the erase command for addr and reports whether the
// bootloader confirmed it.
func (u *Updater) eraseAndAwait(addr uint32) bool {
	req, err := bootproto.FirmwareCommand(u.moduleID, bootproto.SubCommandErase, erasePageNum, addr)
	if err != nil {
		u.log.Error().Err(err).Msg("erase: build request")
		return false
	}
	if err := u.send(req); err != nil {
		u.log.Debug().Err(err).Msg("erase: send")
	}

	return u.awaitFirmwareReply(bootproto.StreamEraseComplete, bootproto.StreamEraseError)
}

// crcAndAwait sends the crc command for addr and reports whether the
// bootloader confirmed the page's checksum.
func (u *Updater) crcAndAwait(addr uint32, checksum uint32) bool {
	req, err := bootproto.FirmwareCommand(u.moduleID, bootproto.SubCommandCRC, checksum, addr)
	if err != nil {
		u.log.Error().Err(err).Msg("crc: build request")
		return false
	}
	if err := u.send(req); err != nil {
		u.log.Debug().Err(err).Msg("crc: send")
	}

	return u.awaitFirmwareReply(bootproto.StreamCRCComplete, bootproto.StreamCRCError)
}

// awaitFirmwareReply waits up to FirmwareResponseTimeout for a
// CmdFirmwareCommandReply frame whose stream_state is success or failure,
// discarding any other traffic and any other CmdFirmwareCommandReply
// stream_state (StreamNoError, StreamReady, StreamWriteFail,
// StreamVerifyFail) the bootloader sends while it is still working: those
// are progress, not an answer, and must not consume the caller's retry
// budget. It reports true only once success arrives before the deadline.
func (u *Updater) awaitFirmwareReply(success, failure bootproto.StreamState) bool {
	deadline := time.Now().Add(u.timings.FirmwareResponseTimeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		frame, err := u.readFrame(remaining)
		if err != nil {
			u.log.Debug().Err(err).Msg("await firmware reply: read")
			return false
		}
		if frame == nil {
			return false
		}
		if frame.Cmd != bootproto.CmdFirmwareCommandReply {
			continue
		}

		reply, err := bootproto.ParseFirmwareCommandReply(*frame)
		if err != nil {
			continue
		}

		switch reply.StreamState {
		case success:
			return true
		case failure:
			return false
		default:
			continue
		}
	}
}
