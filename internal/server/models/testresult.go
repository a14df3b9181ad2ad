package models

import "time"

// TestResult is one timestamped outcome of a named test (e.g. KYC "basic").
// A Result greater than zero is a pass.
type TestResult struct {
	ID        int64
	Pubkey    string
	Name      string
	Result    int64
	Timestamp time.Time
}

// Passed reports whether the result counts as a pass.
func (r TestResult) Passed() bool {
	return r.Result > 0
}
