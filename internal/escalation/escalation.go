// Package escalation recomputes case priority from report-count
// thresholds and from SLA breaches. Priority movement is strictly
// monotonic: the engine raises, it never demotes.
package escalation

import (
	"fmt"
	"time"

	"github.com/gunaso-platform/grievance/internal/model"
)

// threshold lifts a case to a priority tier once enough citizens have
// reported the same issue.
type threshold struct {
	Reports  int
	Priority model.Priority
}

// thresholds must stay sorted ascending by report count; the highest
// threshold met decides the target tier.
var thresholds = []threshold{
	{Reports: 5, Priority: model.PriorityMedium},
	{Reports: 15, Priority: model.PriorityHigh},
	{Reports: 50, Priority: model.PriorityCritical},
}

// Auto re-evaluates a case's priority against the report-count
// thresholds. When the target tier outranks the current priority the
// case is escalated and a timeline entry appended. Safe to call after
// every join or upvote: when nothing changes, nothing is written.
func Auto(c *model.Case, now time.Time) bool {
	count := c.ReportCount
	if count < 1 {
		count = 1
	}

	target := c.Priority
	for _, t := range thresholds {
		if count >= t.Reports {
			target = t.Priority
		}
	}

	// A classifier-driven HIGH beats a 5-report MEDIUM; never demote.
	next := c.Priority.Max(target)
	if next == c.Priority {
		return false
	}

	old := c.Priority
	c.Priority = next
	c.AppendStep(now, fmt.Sprintf("Auto-escalated %s → %s (%d reports)", old, next, count))
	return true
}

// BreachBump escalates a case one tier up the ladder after an SLA
// breach and records the breach on the timeline. The caller is expected
// to have checked and set the SLAEscalated latch.
func BreachBump(c *model.Case, now time.Time) {
	c.Priority = c.Priority.NextTier()
	c.AppendTypedStep(now,
		fmt.Sprintf("SLA BREACHED: auto-escalated to %s", c.Priority),
		model.EntryEscalation, "")
}

// Manual applies an administrator's escalation: the case moves to at
// least HIGH, keeps anything higher, and records who it went to.
func Manual(c *model.Case, reason, escalateTo string, now time.Time) {
	if escalateTo == "" {
		escalateTo = "Higher Authority"
	}
	if reason == "" {
		reason = "SLA exceeded"
	}

	c.Priority = c.Priority.Max(model.PriorityHigh)
	c.Escalated = true
	c.EscalatedTo = escalateTo
	c.AppendTypedStep(now,
		fmt.Sprintf("Escalated to %s: %s", escalateTo, reason),
		model.EntryEscalation, "")
}
