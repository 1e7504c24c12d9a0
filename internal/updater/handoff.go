package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
)

// enterBootloader is Phase 2: hand the running application off into its
// bootloader, then cycle the transport so the reconnect matches the
// module's own reset. This exact close/sleep/reopen sequence is a
// contract the transport must survive.
func (u *Updater) enterBootloader() {
	req, err := bootproto.SetNetworkModuleState(u.moduleID, bootproto.StateUpdateFirmware)
	if err != nil {
		u.log.Error().Err(err).Msg("enter bootloader: build request")
		return
	}
	if err := u.send(req); err != nil {
		u.log.Debug().Err(err).Msg("enter bootloader: send")
	}

	time.Sleep(u.timings.PostHandoffDelay)

	if err := u.tr.Close(); err != nil {
		u.log.Debug().Err(err).Msg("enter bootloader: close")
	}
	time.Sleep(u.timings.ReopenSettleDelay)

	if err := u.tr.Reopen(); err != nil {
		u.log.Error().Err(err).Msg("enter bootloader: reopen")
	}
	time.Sleep(u.timings.PostReopenDelay)

	u.log.Info().Msg("enter bootloader: handoff complete")
}
