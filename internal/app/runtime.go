package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "TRIPBOOK_TEST_MODE"

// testMode holds 0 until read, then 1 (off) or 2 (on).
var testMode atomic.Int32

// InTestMode reports whether binaries should skip side effects such as
// binding the listener or opening the configured store.
func InTestMode() bool {
	if testMode.Load() == 0 {
		RefreshTestMode()
	}
	return testMode.Load() == 2
}

// RefreshTestMode re-reads TRIPBOOK_TEST_MODE after environment changes.
func RefreshTestMode() {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	if on {
		testMode.Store(2)
		return
	}
	testMode.Store(1)
}
