//go:build unix

package savefile

import (
	"sync"

	"golang.org/x/sys/unix"
)

// umaskMu serializes umask changes; the umask is process-wide.
var umaskMu sync.Mutex

// setUmask installs mask and returns a function restoring the previous one.
func setUmask(mask int) (restore func()) {
	umaskMu.Lock()
	old := unix.Umask(mask)
	return func() {
		unix.Umask(old)
		umaskMu.Unlock()
	}
}
