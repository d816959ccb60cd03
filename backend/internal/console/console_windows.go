//go:build windows

// Package console detects whether the process runs from a terminal and
// installs a Ctrl+C handler that survives SDL's LockOSThread.
package console

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// IsRunningFromConsole reports whether the process was started from a
// terminal. A double-clicked executable runs in GUI mode: an auto-created
// console window is released and false is returned. A GUI build started from
// a terminal gets its own console with the std streams redirected to it.
func IsRunningFromConsole() bool {
	fromExplorer := launchedFromExplorer()

	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}

	if fromExplorer {
		return false
	}

	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams rebinds os.Stdout, os.Stderr and os.Stdin to a console
// allocated after startup.
func redirectStdStreams() {
	stdout, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || stdout == 0 {
		return
	}
	stderr, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || stderr == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}
}

func launchedFromExplorer() bool {
	return strings.EqualFold(parentImageName(), "explorer.exe")
}

// parentImageName returns the executable name of the parent process, or ""
// when it cannot be determined.
func parentImageName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	entries := make(map[uint32]windows.ProcessEntry32)
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		entries[entry.ProcessID] = entry
	}

	self, ok := entries[uint32(os.Getpid())]
	if !ok {
		return ""
	}
	parent, ok := entries[self.ParentProcessID]
	if !ok {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(parent.ExeFile[:]))
}

var handler struct {
	once     sync.Once
	mu       sync.Mutex
	shutdown chan struct{}
	callback uintptr
}

// SetupConsoleHandler closes shutdown on Ctrl+C or Ctrl+Break. Go's
// os.Interrupt delivery is unreliable once SDL owns a locked thread, so the
// handler is registered with the console directly. The returned function
// re-registers it; call it after SDL initialization, which installs its own.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	handler.mu.Lock()
	handler.shutdown = shutdown
	if handler.callback == 0 {
		handler.callback = windows.NewCallback(func(ctrlType uint32) uintptr {
			if ctrlType != ctrlCEvent && ctrlType != ctrlBreakEvent {
				return 0
			}
			handler.once.Do(func() {
				handler.mu.Lock()
				ch := handler.shutdown
				handler.mu.Unlock()
				close(ch)
			})
			return 1
		})
	}
	handler.mu.Unlock()

	register := func() {
		procSetConsoleCtrlHandler.Call(handler.callback, 1)
	}
	register()
	return register
}
