package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gunaso-platform/grievance/internal/model"
)

func caseDueIn(d time.Duration, now time.Time) *model.Case {
	return &model.Case{
		ID:                 "CPL-2026-0001",
		Title:              "No water for three days",
		Priority:           model.PriorityNormal,
		ReportCount:        1,
		ExpectedResponseBy: now.Add(d),
	}
}

func TestEvaluateBucketBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		dueIn      time.Duration
		wantHours  float64
		wantStatus string
	}{
		{"exactly due", 0, 0, StatusOverdue},
		{"past due", -3 * time.Hour, 0, StatusOverdue},
		{"one hour left", time.Hour, 1.0, StatusCritical},
		{"half hour left", 30 * time.Minute, 0.5, StatusCritical},
		{"four hours left", 4 * time.Hour, 4.0, StatusWarning},
		{"two hours left", 2 * time.Hour, 2.0, StatusWarning},
		{"just over four hours", 4*time.Hour + 36*time.Second, 4.0, StatusOK},
		{"plenty of time", 30 * time.Hour, 30.0, StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, status := Evaluate(caseDueIn(tt.dueIn, now), now)
			assert.Equal(t, tt.wantStatus, status)
			assert.InDelta(t, tt.wantHours, remaining, 0.001)
		})
	}
}

func TestDetailCarriesCaseFields(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	c := caseDueIn(2*time.Hour, now)
	c.ReportCount = 7
	c.AssignedTo = "npc-water-3"

	d := Detail(c, now)
	assert.Equal(t, c.ID, d.ID)
	assert.Equal(t, 7, d.ReportCount)
	assert.Equal(t, "npc-water-3", d.AssignedTo)
	assert.Equal(t, StatusWarning, d.Status)
	assert.InDelta(t, 2.0, d.RemainingHours, 0.001)
}

func TestEvaluateRoundsToOneDecimal(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	remaining, _ := Evaluate(caseDueIn(95*time.Minute, now), now)
	assert.InDelta(t, 1.6, remaining, 0.001)
}
