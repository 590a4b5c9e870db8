package reclaim

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"
)

var procEmptyWorkingSet = windows.NewLazySystemDLL("psapi.dll").NewProc("EmptyWorkingSet")

// releasePlatformMemory trims the working set of this process.
func releasePlatformMemory(logger hclog.Logger) error {
	if err := procEmptyWorkingSet.Find(); err != nil {
		return err
	}
	r, _, err := procEmptyWorkingSet.Call(uintptr(windows.CurrentProcess()))
	if r == 0 {
		return fmt.Errorf("EmptyWorkingSet: %w", err)
	}
	logger.Debug("working set trimmed")
	return nil
}
