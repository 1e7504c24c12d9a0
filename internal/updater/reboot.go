package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
	"github.com/tamzrod/modfw/internal/wire"
)

// reboot is Phase 6: broadcast a reboot command so every module on the
// bus resets, whether or not it was the one just updated. It never fails
// the run; Run's deferred transport close happens after this regardless
// of outcome.
func (u *Updater) reboot() {
	req, err := bootproto.SetModuleState(wire.BroadcastID, bootproto.StateReboot)
	if err != nil {
		u.log.Error().Err(err).Msg("reboot: build request")
		return
	}
	if err := u.send(req); err != nil {
		u.log.Debug().Err(err).Msg("reboot: send")
	}

	time.Sleep(u.timings.PostRebootDelay)
	u.State.setProgress(100)
	u.log.Info().Msg("reboot: broadcast sent")
}
