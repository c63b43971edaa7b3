package workspace

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"scoreflow/internal/services"
)

// MinFreeBytes is the free-space floor on the scratch filesystem below which
// the daemon refuses to start.
const MinFreeBytes = 64 << 20

// Preflight verifies the scratch root exists, is writable, and has headroom.
func Preflight(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return services.Wrap(services.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("create scratch root %s", root), err)
	}

	probe, err := os.CreateTemp(root, ".preflight-*")
	if err != nil {
		return services.Wrap(services.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("scratch root %s not writable", root), err)
	}
	probeName := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probeName)

	var stat unix.Statfs_t
	if err := unix.Statfs(root, &stat); err != nil {
		return services.Wrap(services.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("statfs %s", root), err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < MinFreeBytes {
		return services.Wrap(services.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("scratch filesystem has %d bytes free, need at least %d", free, uint64(MinFreeBytes)), nil)
	}
	return nil
}
