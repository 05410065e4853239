//go:build windows

package lock

import (
	"context"
	"os"
)

// BUG(ollie314): Windows file locking is not implemented. The cache is
// only validated on the POSIX agents Genie ships; anyone running the
// agent cache on Windows gets intra-process mutual exclusion only.
func lockExclusive(_ context.Context, _ *os.File) error { return nil }

func unlockExclusive(_ *os.File) error { return nil }
