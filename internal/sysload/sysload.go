// Package sysload reads the host figures shown on the admin dashboard's
// server performance panel.
package sysload

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Level is a coarse rating of the current load.
type Level string

const (
	// LevelUnknown means the figures could not be read.
	LevelUnknown Level = "unknown"
	// LevelGood means the host is comfortably loaded.
	LevelGood Level = "good"
	// LevelWarning means the host is busy.
	LevelWarning Level = "warning"
	// LevelCritical means the host is overloaded.
	LevelCritical Level = "critical"
)

// Snapshot is a point in time view of the host.
type Snapshot struct {
	Hostname      string
	Uptime        time.Duration
	CPUCount      int
	CPUPercent    float64
	MemTotal      uint64
	MemUsed       uint64
	MemPercent    float64
	Load1         float64
	Load5         float64
	Load15        float64
	Goroutines    int
	Level         Level
	CollectedAt   time.Time
	PartialErrors []string
}

// Reader collects snapshots.
type Reader interface {
	Read(ctx context.Context) (Snapshot, error)
}

// Host reads figures from the local machine.
type Host struct {
	// CPUInterval is the sampling window for CPU usage; zero compares with the previous call.
	CPUInterval time.Duration
}

// NewHost returns a Host reader.
func NewHost() *Host {
	return &Host{}
}

// Read implements Reader. Individual figures that cannot be read are listed
// in PartialErrors; an error is returned only when nothing could be read.
func (h *Host) Read(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		CPUCount:    runtime.NumCPU(),
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: time.Now(),
	}

	var errs []error

	if info, err := host.InfoWithContext(ctx); err == nil {
		snap.Hostname = info.Hostname
		snap.Uptime = time.Duration(info.Uptime) * time.Second //nolint:gosec
	} else {
		errs = append(errs, err)
	}

	if pct, err := cpu.PercentWithContext(ctx, h.CPUInterval, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	} else if err != nil {
		errs = append(errs, err)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemTotal = vm.Total
		snap.MemUsed = vm.Used
		snap.MemPercent = vm.UsedPercent
	} else {
		errs = append(errs, err)
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		snap.Load1, snap.Load5, snap.Load15 = avg.Load1, avg.Load5, avg.Load15
	} else {
		errs = append(errs, err)
	}

	for _, err := range errs {
		snap.PartialErrors = append(snap.PartialErrors, err.Error())
	}

	if len(errs) == 4 { //nolint:mnd
		snap.Level = LevelUnknown
		return snap, errors.Join(errs...)
	}

	snap.Level = Rate(snap)

	return snap, nil
}

// Rate derives the load level from CPU, memory and the 1 minute load per core.
func Rate(s Snapshot) Level {
	perCore := 0.0
	if s.CPUCount > 0 {
		perCore = s.Load1 / float64(s.CPUCount)
	}

	switch {
	case s.CPUPercent >= 90 || s.MemPercent >= 90 || perCore >= 2: //nolint:mnd
		return LevelCritical
	case s.CPUPercent >= 70 || s.MemPercent >= 75 || perCore >= 1: //nolint:mnd
		return LevelWarning
	default:
		return LevelGood
	}
}
