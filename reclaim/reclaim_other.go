//go:build !linux && !windows

package reclaim

import "github.com/hashicorp/go-hclog"

func releasePlatformMemory(hclog.Logger) error {
	return nil
}
