// Package drives enumerates mounted volumes that can be browsed as roots.
//
// lsblk is the primary source. Hosts without it fall back to the partition
// table reported by gopsutil. Enumeration is advisory: failures are logged
// and produce an empty list.
package drives

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// lsblkArgs requests the columns the listing needs in JSON form
var lsblkArgs = []string{"-J", "-o", "NAME,LABEL,SIZE,TYPE,MOUNTPOINT,FSTYPE"}

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands on the host
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// LsblkDevice is one node of lsblk's device tree
type LsblkDevice struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Size        string        `json:"size"`
	Type        string        `json:"type"`
	Mountpoint  string        `json:"mountpoint"`
	Mountpoints []string      `json:"mountpoints"`
	Fstype      string        `json:"fstype"`
	Children    []LsblkDevice `json:"children"`
}

// LsblkOutput is the document printed by lsblk -J
type LsblkOutput struct {
	BlockDevices []LsblkDevice `json:"blockdevices"`
}

// mountpoint returns the first active mount of the device
func (d LsblkDevice) mountpoint() string {
	if d.Mountpoint != "" {
		return d.Mountpoint
	}
	for _, m := range d.Mountpoints {
		if m != "" {
			return m
		}
	}
	return ""
}

// ParseLsblk flattens lsblk JSON into mounted volumes, children at any depth included
func ParseLsblk(data []byte) ([]types.DriveInfo, error) {
	var out LsblkOutput
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	drives := make([]types.DriveInfo, 0, 8)
	stack := make([]LsblkDevice, 0, len(out.BlockDevices))
	for i := len(out.BlockDevices) - 1; i >= 0; i-- {
		stack = append(stack, out.BlockDevices[i])
	}

	for len(stack) > 0 {
		dev := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if mount := dev.mountpoint(); mount != "" {
			drives = append(drives, driveFrom(dev.Name, dev.Label, mount, dev.Size, dev.Fstype))
		}
		for i := len(dev.Children) - 1; i >= 0; i-- {
			stack = append(stack, dev.Children[i])
		}
	}
	return drives, nil
}

func driveFrom(name, label, mount, size, fstype string) types.DriveInfo {
	display := label
	if display == "" {
		display = name
	}
	return types.DriveInfo{
		Name:           display,
		MountPath:      mount,
		SizeLabel:      size,
		FilesystemType: fstype,
		IsRemovable:    isRemovableMount(mount),
	}
}

// isRemovableMount reports whether a mount point lives under a removable media root
func isRemovableMount(mount string) bool {
	return strings.Contains(mount, "/media") || strings.Contains(mount, "/run/media")
}
