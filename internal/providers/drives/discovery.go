package drives

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

const (
	// DefaultTimeout bounds a single enumeration
	DefaultTimeout = 5 * time.Second

	// lsblk is skipped for breakerCooldown after breakerThreshold consecutive failures
	breakerThreshold = 3
	breakerCooldown  = time.Minute
)

// PartitionSource lists mounted partitions when lsblk is unavailable
type PartitionSource interface {
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, mount string) (*disk.UsageStat, error)
}

type gopsutilSource struct{}

func (gopsutilSource) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (gopsutilSource) Usage(ctx context.Context, mount string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, mount)
}

// Discovery enumerates mounted volumes
type Discovery struct {
	run        Runner
	partitions PartitionSource
	timeout    time.Duration
	breaker    *resilience.Breaker
	logger     *zap.Logger
}

// Option configures a Discovery
type Option func(*Discovery)

// WithRunner replaces the command runner
func WithRunner(r Runner) Option {
	return func(d *Discovery) { d.run = r }
}

// WithPartitionSource replaces the fallback partition source
func WithPartitionSource(s PartitionSource) Option {
	return func(d *Discovery) { d.partitions = s }
}

// WithBreaker replaces the breaker guarding lsblk
func WithBreaker(b *resilience.Breaker) Option {
	return func(d *Discovery) { d.breaker = b }
}

// WithTimeout bounds each enumeration
func WithTimeout(timeout time.Duration) Option {
	return func(d *Discovery) { d.timeout = timeout }
}

// New creates a discovery using lsblk with the gopsutil fallback
func New(logger *zap.Logger, opts ...Option) *Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Discovery{
		run:        ExecRunner,
		partitions: gopsutilSource{},
		timeout:    DefaultTimeout,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.breaker == nil {
		d.breaker = resilience.New("lsblk", resilience.Settings{
			Threshold: breakerThreshold,
			Cooldown:  breakerCooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Info("Drive enumeration breaker changed state",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		})
	}
	return d
}

// ListVolumes returns mounted volumes. It never fails; problems are logged
// and yield an empty list.
func (d *Discovery) ListVolumes(ctx context.Context) []types.DriveInfo {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var (
		out     []byte
		missing bool
	)
	err := d.breaker.Do(func() error {
		var runErr error
		out, runErr = d.run(ctx, "lsblk", lsblkArgs...)
		if errors.Is(runErr, exec.ErrNotFound) {
			missing = true
			return nil
		}
		return runErr
	})

	switch {
	case errors.Is(err, resilience.ErrOpen):
		d.logger.Debug("Skipping lsblk while its breaker is open")
		return []types.DriveInfo{}
	case err != nil:
		d.logger.Warn("Failed to enumerate block devices", zap.Error(err))
		return []types.DriveInfo{}
	case missing:
		d.logger.Debug("lsblk unavailable, using partition table")
		return d.fromPartitions(ctx)
	}

	drives, err := ParseLsblk(out)
	if err != nil {
		d.logger.Warn("Failed to parse block devices", zap.Error(err))
		return []types.DriveInfo{}
	}
	return drives
}

func (d *Discovery) fromPartitions(ctx context.Context) []types.DriveInfo {
	parts, err := d.partitions.Partitions(ctx)
	if err != nil {
		d.logger.Warn("Failed to enumerate partitions", zap.Error(err))
		return []types.DriveInfo{}
	}

	drives := make([]types.DriveInfo, 0, len(parts))
	for _, p := range parts {
		if p.Mountpoint == "" {
			continue
		}
		size := ""
		if usage, err := d.partitions.Usage(ctx, p.Mountpoint); err == nil && usage != nil {
			size = humanize.IBytes(usage.Total)
		} else if err != nil {
			d.logger.Debug("Failed to read usage", zap.String("mount", p.Mountpoint), zap.Error(err))
		}
		drives = append(drives, driveFrom(filepath.Base(p.Device), "", p.Mountpoint, size, p.Fstype))
	}
	return drives
}
