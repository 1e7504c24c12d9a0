package updater

import (
	"sync"
	"sync/atomic"

	"github.com/tamzrod/modfw/internal/identity"
)

// ErrorCode is an update run's tri-state result.
type ErrorCode int32

const (
	ErrorNone ErrorCode = 0
	ErrorOK   ErrorCode = 1
	ErrorFail ErrorCode = -1
)

// State is a worker's published record: written only by the worker that
// owns it, read-only from the supervisor, and safe for that concurrent
// read because every field is either atomic or guarded by a private
// mutex. There is no shared "self" object here, only atomics a reader can
// poll without ever seeing a torn value.
type State struct {
	uuidKnown atomic.Bool
	uuid      atomic.Uint64
	moduleID  atomic.Uint32
	isNetwork atomic.Bool

	progress  atomic.Int32
	errorCode atomic.Int32

	msgMu   sync.Mutex
	message string

	hasUpdateError atomic.Bool
}

func (s *State) setUUID(uuid uint64, isNetwork bool) {
	s.uuid.Store(uuid)
	s.moduleID.Store(uint32(identity.ModuleID(uuid)))
	s.isNetwork.Store(isNetwork)
	s.uuidKnown.Store(true)
}

func (s *State) setModuleID(id uint16) {
	s.moduleID.Store(uint32(id))
}

func (s *State) setProgress(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	s.progress.Store(int32(p))
}

func (s *State) setFatal(err error) {
	s.hasUpdateError.Store(true)
	s.errorCode.Store(int32(ErrorFail))
	s.msgMu.Lock()
	s.message = err.Error()
	s.msgMu.Unlock()
}

func (s *State) setSuccess() {
	s.errorCode.Store(int32(ErrorOK))
}

// UUIDKnown reports whether the worker has identified its module yet.
func (s *State) UUIDKnown() bool { return s.uuidKnown.Load() }

// UUID returns the module's identity, or 0 if not yet known.
func (s *State) UUID() uint64 { return s.uuid.Load() }

// ModuleID returns the 12-bit module id currently addressed (broadcast
// 0xFFF until identity is known).
func (s *State) ModuleID() uint16 { return uint16(s.moduleID.Load()) }

// IsNetwork reports whether the identified module is a network module (as
// opposed to a camera module).
func (s *State) IsNetwork() bool { return s.isNetwork.Load() }

// Progress returns the last published progress percentage, 0..100.
func (s *State) Progress() int { return int(s.progress.Load()) }

// ErrorCode returns the tri-state result: 0 while running, +1 on success,
// -1 on fatal failure.
func (s *State) ErrorCode() ErrorCode { return ErrorCode(s.errorCode.Load()) }

// HasUpdateError reports whether any fatal condition has been recorded.
func (s *State) HasUpdateError() bool { return s.hasUpdateError.Load() }

// Message returns the human-readable failure message, empty on success.
func (s *State) Message() string {
	s.msgMu.Lock()
	defer s.msgMu.Unlock()
	return s.message
}
