package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
)

// maxConsecutiveEmptyReads is Phase 3's second timeout trigger: five
// consecutive empty reads abort the wait even if the overall deadline
// hasn't elapsed yet.
const maxConsecutiveEmptyReads = 5

// warningWait is Phase 3: wait for the bootloader's warning_type==2
// "ready to accept firmware data" signal, acking any other warning it
// sends along the way.
func (u *Updater) warningWait() error {
	deadline := time.Now().Add(u.timings.WarningTimeout)
	emptyReads := 0

	for time.Now().Before(deadline) {
		frame, err := u.readFrame(u.timings.WarningPollTimeout)
		if err != nil {
			u.log.Debug().Err(err).Msg("warning wait: read")
			emptyReads++
			if emptyReads >= maxConsecutiveEmptyReads {
				return &WarningTimeoutError{}
			}
			continue
		}
		if frame == nil {
			emptyReads++
			if emptyReads >= maxConsecutiveEmptyReads {
				return &WarningTimeoutError{}
			}
			continue
		}
		emptyReads = 0

		if frame.Cmd != bootproto.CmdWarning {
			continue
		}
		w, err := bootproto.ParseWarning(*frame)
		if err != nil {
			continue
		}
		if _, relevant := isRelevantKind(w.UUID); !relevant {
			continue
		}

		if !u.State.UUIDKnown() {
			kind, _ := isRelevantKind(w.UUID)
			u.adopt(w.UUID, kind)
		}

		if w.WarningType != bootproto.WarningReady {
			ready, err := bootproto.SetModuleState(u.moduleID, bootproto.StateUpdateFirmwareReady)
			if err != nil {
				u.log.Error().Err(err).Msg("warning wait: build ready ack")
				continue
			}
			if err := u.send(ready); err != nil {
				u.log.Debug().Err(err).Msg("warning wait: send ready ack")
			}
			continue
		}

		u.log.Info().Msg("warning wait: bootloader ready")
		return nil
	}

	return &WarningTimeoutError{}
}
