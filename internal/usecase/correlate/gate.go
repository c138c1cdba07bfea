package correlate

import "math"

// Exit codes produced by the gate; they are the process exit status under
// normal operation.
const (
	ExitPass = 0
	ExitFail = 1
)

// Gate compares the overall percentage against the configured minimum and
// returns the process exit code. The comparison is inclusive at one decimal
// place of tolerance: a minimum of exactly the achieved percentage passes.
// A zero minimum (the default, no threshold configured) always passes.
func Gate(totalPercent, failUnder float64) int {
	if round1(totalPercent) >= round1(failUnder)-1e-9 {
		return ExitPass
	}
	return ExitFail
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
