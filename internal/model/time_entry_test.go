package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedSeconds(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		end  time.Time
		name string
		want int64
	}{
		{name: "whole seconds", end: start.Add(1500 * time.Second), want: 1500},
		{name: "floors fractional seconds", end: start.Add(1500*time.Second + 999*time.Millisecond), want: 1500},
		{name: "same instant", end: start, want: 0},
		{name: "end before start clamps to zero", end: start.Add(-time.Minute), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedSeconds(start, tt.end))
		})
	}
}

func TestPriorityWeight(t *testing.T) {
	assert.Greater(t, PriorityHigh.Weight(), PriorityMedium.Weight())
	assert.Greater(t, PriorityMedium.Weight(), PriorityLow.Weight())
	assert.False(t, Priority("URGENT").Valid())
	assert.True(t, ProjectArchived.Valid())
	assert.False(t, ProjectStatus("PAUSED").Valid())
}
