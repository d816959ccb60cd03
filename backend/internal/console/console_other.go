//go:build !windows

// Package console detects whether the process runs from a terminal and
// installs a Ctrl+C handler that survives SDL's LockOSThread.
package console

// IsRunningFromConsole is always true outside Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler is a no-op outside Windows, where os.Interrupt is
// delivered reliably.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	return func() {}
}
