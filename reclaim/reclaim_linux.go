package reclaim

import (
	"errors"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

const dropCachesPath = "/proc/sys/vm/drop_caches"

// releasePlatformMemory flushes filesystem buffers and drops the page cache.
// Dropping caches needs root; without it the step is skipped.
func releasePlatformMemory(logger hclog.Logger) error {
	unix.Sync()

	err := os.WriteFile(dropCachesPath, []byte("3"), 0644)
	if errors.Is(err, fs.ErrPermission) {
		logger.Debug("not permitted to drop page cache, skipping")
		return nil
	}
	return err
}
