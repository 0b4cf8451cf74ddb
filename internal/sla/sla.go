// Package sla computes a case's standing against its response deadline.
// The deadline itself is fixed at case creation; this package only
// measures and buckets, leaving mutation to the intake pipeline.
package sla

import (
	"math"
	"time"

	"github.com/gunaso-platform/grievance/internal/model"
)

// Bucket names for deadline standing.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusOverdue  = "overdue"
)

// Bucket boundaries, measured on the exact remaining duration.
const (
	criticalWindow = 1 * time.Hour
	warningWindow  = 4 * time.Hour
)

// Evaluate returns the remaining hours (rounded to one decimal, clamped
// to 0 once overdue) and the status bucket for a case at the given time.
// Buckets are decided on the exact remaining duration so a case 4.01
// hours out is still "ok" even though it displays as 4.0.
func Evaluate(c *model.Case, now time.Time) (float64, string) {
	remaining := c.ExpectedResponseBy.Sub(now)

	switch {
	case remaining <= 0:
		return 0, StatusOverdue
	case remaining <= criticalWindow:
		return roundTenth(remaining.Hours()), StatusCritical
	case remaining <= warningWindow:
		return roundTenth(remaining.Hours()), StatusWarning
	default:
		return roundTenth(remaining.Hours()), StatusOK
	}
}

// Detail builds the per-case report row for a deadline sweep.
func Detail(c *model.Case, now time.Time) model.SLADetail {
	remaining, status := Evaluate(c, now)
	return model.SLADetail{
		ID:                 c.ID,
		Title:              c.Title,
		Priority:           c.Priority,
		ExpectedResponseBy: c.ExpectedResponseBy,
		RemainingHours:     remaining,
		Status:             status,
		ReportCount:        c.ReportCount,
		AssignedTo:         c.AssignedTo,
	}
}

func roundTenth(hours float64) float64 {
	return math.Round(hours*10) / 10
}
