package updater

import (
	"time"

	"github.com/tamzrod/modfw/internal/bootproto"
	"github.com/tamzrod/modfw/internal/identity"
)

// identify is Phase 1: probe for the module's identity. It never returns
// a fatal error; on timeout it leaves u.moduleID at the broadcast id and
// u.kind at its Network default.
func (u *Updater) identify() {
	deadline := time.Now().Add(u.timings.IdentifyTimeout)

	for time.Now().Before(deadline) {
		req, err := bootproto.RequestUUID()
		if err != nil {
			u.log.Error().Err(err).Msg("identify: build request")
			return
		}
		if err := u.send(req); err != nil {
			u.log.Debug().Err(err).Msg("identify: send request")
		}

		frame, err := u.readFrame(u.timings.IdentifyInterval)
		if err != nil {
			u.log.Debug().Err(err).Msg("identify: read")
			continue
		}
		if frame == nil {
			continue
		}

		var uuid uint64
		var haveUUID bool

		switch frame.Cmd {
		case bootproto.CmdUUIDReply:
			reply, err := bootproto.ParseUUIDReply(*frame)
			if err == nil {
				uuid, haveUUID = reply.UUID, true
			}
		case bootproto.CmdWarning:
			w, err := bootproto.ParseWarning(*frame)
			if err == nil {
				uuid, haveUUID = w.UUID, true
			}
		}

		if !haveUUID {
			continue
		}

		kind, relevant := isRelevantKind(uuid)
		if !relevant {
			continue
		}

		u.adopt(uuid, kind)
		u.log.Info().
			Uint64("uuid", uuid).
			Str("kind", kind.String()).
			Msg("identify: module identified")
		return
	}

	u.log.Warn().Msg("identify: timed out, proceeding with broadcast id")
}

// adopt records a newly-learned uuid and its derived module id / kind on
// both the internal fields and the published State.
func (u *Updater) adopt(uuid uint64, kind identity.Kind) {
	u.uuid = uuid
	u.kind = kind
	u.moduleID = identity.ModuleID(uuid)
	u.State.setUUID(uuid, kind == identity.Network)
}
