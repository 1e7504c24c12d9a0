package updater

import "fmt"

// WarningTimeoutError is fatal: Phase 3 saw no warning_type==2 frame within
// its overall timeout or hit five consecutive empty reads.
type WarningTimeoutError struct{}

func (e *WarningTimeoutError) Error() string { return "Warning timeout" }

// EraseFailedError is fatal: a page's erase step was NAKed more than the
// retry budget allows.
type EraseFailedError struct {
	Kind     string
	ModuleID uint16
}

func (e *EraseFailedError) Error() string {
	return fmt.Sprintf("%s (%d) erase flash failed.", e.Kind, e.ModuleID)
}

// CRCFailedError is fatal: a page's crc step was NAKed more than the retry
// budget allows.
type CRCFailedError struct{}

func (e *CRCFailedError) Error() string { return "Check crc failed." }

// TrailerError is fatal: the end-flash trailer page could not be erased or
// verified within its retry budget. Stage is either "erase" or "crc".
type TrailerError struct {
	Stage string
}

func (e *TrailerError) Error() string {
	if e.Stage == "erase" {
		return "End erase error"
	}
	return "End crc error"
}
