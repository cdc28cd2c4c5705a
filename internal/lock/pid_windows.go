//go:build windows

package lock

// pidAlive always reports true on Windows: there is no cheap, reliable
// signal-0 equivalent, and claiming a holder is dead when it is not would
// invite breaking live locks. The age-based rule still applies.
func pidAlive(pid int) bool {
	return true
}
