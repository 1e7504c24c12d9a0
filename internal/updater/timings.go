package updater

import "time"

// Timings collects every sleep and deadline the page pipeline observes.
// Production code always gets DefaultTimings(); tests substitute a
// compressed profile via WithTimings so the state machine's *logic* runs
// under test in milliseconds instead of the ~15s a single real
// handoff+trailer cycle takes.
type Timings struct {
	IdentifyInterval time.Duration // how often 0x28 is resent during Phase 1
	IdentifyTimeout  time.Duration // Phase 1 overall timeout

	PostHandoffDelay  time.Duration // sleep after sending 0xA4, before closing
	ReopenSettleDelay time.Duration // sleep after Close, before Reopen
	PostReopenDelay   time.Duration // sleep after Reopen, before Phase 3

	WarningPollTimeout time.Duration // per-read timeout while waiting for 0x0A
	WarningTimeout     time.Duration // Phase 3 overall timeout

	FirmwareResponseTimeout time.Duration // per erase/crc response, Phase 4 and 5
	InterChunkDelay         time.Duration // pacing between 0x0B chunks
	ZeroPageDelay           time.Duration // sleep when a page is skipped
	PageSuccessDelay        time.Duration // sleep after a page completes

	PostRebootDelay time.Duration // sleep after the reboot broadcast
}

// DefaultTimings reproduces the delays a real update run observes.
func DefaultTimings() Timings {
	return Timings{
		IdentifyInterval: 200 * time.Millisecond,
		IdentifyTimeout:  3 * time.Second,

		PostHandoffDelay:  200 * time.Millisecond,
		ReopenSettleDelay: 5 * time.Second,
		PostReopenDelay:   2 * time.Second,

		WarningPollTimeout: 100 * time.Millisecond,
		WarningTimeout:     10 * time.Second,

		FirmwareResponseTimeout: 5 * time.Second,
		InterChunkDelay:         time.Millisecond,
		ZeroPageDelay:           20 * time.Millisecond,
		PageSuccessDelay:        10 * time.Millisecond,

		PostRebootDelay: time.Second,
	}
}
