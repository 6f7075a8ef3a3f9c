package sysload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want Level
	}{
		{"idle", Snapshot{CPUCount: 4, CPUPercent: 5, MemPercent: 30, Load1: 0.2}, LevelGood},
		{"busy cpu", Snapshot{CPUCount: 4, CPUPercent: 75, MemPercent: 30}, LevelWarning},
		{"memory pressure", Snapshot{CPUCount: 4, CPUPercent: 5, MemPercent: 95}, LevelCritical},
		{"load per core", Snapshot{CPUCount: 2, Load1: 4.5}, LevelCritical},
		{"load equals cores", Snapshot{CPUCount: 2, Load1: 2}, LevelWarning},
		{"no cpu count", Snapshot{Load1: 10}, LevelGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.snap))
		})
	}
}

func TestHostRead(t *testing.T) {
	snap, err := NewHost().Read(context.Background())
	if err != nil {
		t.Skipf("host figures unavailable: %v", err)
	}

	assert.Positive(t, snap.CPUCount)
	assert.NotEqual(t, LevelUnknown, snap.Level)
	assert.False(t, snap.CollectedAt.IsZero())
}
