// Package model provides data models for grievance case management.
package model

import (
	"time"
)

// Priority represents case priority levels. Priority only ever moves
// upward once a case exists; no operation demotes it.
type Priority string

const (
	PriorityNormal   Priority = "NORMAL"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank returns the ordering of a priority, lowest first. Unknown values
// rank below NORMAL so malformed data never outranks real priorities.
func (p Priority) Rank() int {
	switch p {
	case PriorityNormal:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Max returns the higher of two priorities.
func (p Priority) Max(other Priority) Priority {
	if other.Rank() > p.Rank() {
		return other
	}
	return p
}

// NextTier returns the priority one tier up the escalation ladder.
// CRITICAL stays CRITICAL.
func (p Priority) NextTier() Priority {
	switch p {
	case PriorityNormal:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityCritical
	}
}

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Status represents case status values. Resolved is terminal for
// clustering and escalation purposes.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// StepStatus represents the progress state of a timeline step.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepActive  StepStatus = "active"
	StepPending StepStatus = "pending"
)

// EntryType discriminates special timeline entries from plain case steps.
type EntryType string

const (
	EntryStep         EntryType = ""
	EntryNotification EntryType = "notification"
	EntryEscalation   EntryType = "escalation"
)

// Location identifies where a grievance happened. All fields are
// optional; district, municipality and ward double as clustering keys.
type Location struct {
	Province         string `json:"province,omitempty" db:"province"`
	District         string `json:"district,omitempty" db:"district"`
	Municipality     string `json:"municipality,omitempty" db:"municipality"`
	Ward             string `json:"ward,omitempty" db:"ward"`
	SpecificLocation string `json:"specific_location,omitempty" db:"specific_location"`
}

// Classification is the classifier's verdict for a case. Computed once
// at creation and immutable thereafter.
type Classification struct {
	Category        string   `json:"category"`
	CategoryKey     string   `json:"category_key"`
	GovernmentLevel string   `json:"government_level"`
	Department      string   `json:"department"`
	Confidence      int      `json:"confidence"`
	Priority        Priority `json:"priority"`
	IsUrgent        bool     `json:"is_urgent"`
	SLAHours        int      `json:"sla_hours"`
}

// LinkedReport is a citizen report merged into an existing case.
type LinkedReport struct {
	ReportID    string    `json:"report_id"`
	ReporterID  string    `json:"reporter_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    Location  `json:"location"`
	ReportedAt  time.Time `json:"reported_at"`
}

// TimelineEntry is one fact in a case's append-only audit trail.
// Date is nil for steps that have not started yet.
type TimelineEntry struct {
	Step   string     `json:"step"`
	Date   *time.Time `json:"date"`
	Status StepStatus `json:"status"`
	Type   EntryType  `json:"type,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// Feedback is a citizen's rating of how a case was handled.
type Feedback struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

// Case represents one real-world grievance, possibly aggregating many
// citizen reports.
type Case struct {
	ID          string         `json:"id"`
	ReporterID  string         `json:"reporter_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    Location       `json:"location"`

	Classification Classification `json:"classification"`

	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	AssignedTo string   `json:"assigned_to,omitempty"`

	// Clustering
	ReportCount       int            `json:"report_count"`
	LinkedReports     []LinkedReport `json:"linked_reports"`
	AdditionalDetails []string       `json:"additional_details,omitempty"`

	// Public signal
	Upvotes   int      `json:"upvotes"`
	UpvotedBy []string `json:"-"`

	// Notification accounting
	NotificationsSent int `json:"notifications_sent"`

	// SLA
	ExpectedResponseBy time.Time `json:"expected_response_by"`
	SLAEscalated       bool      `json:"sla_escalated"`

	// Manual escalation
	Escalated   bool   `json:"escalated,omitempty"`
	EscalatedTo string `json:"escalated_to,omitempty"`

	// Resolution
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Resolution string     `json:"resolution,omitempty"`
	Feedback   *Feedback  `json:"feedback,omitempty"`

	CreatedAt      time.Time       `json:"created_at"`
	LastReportedAt time.Time       `json:"last_reported_at"`
	Timeline       []TimelineEntry `json:"timeline"`
}

// AppendStep appends a completed timeline step dated at ts.
func (c *Case) AppendStep(ts time.Time, step string) {
	c.Timeline = append(c.Timeline, TimelineEntry{Step: step, Date: &ts, Status: StepDone})
}

// AppendTypedStep appends a completed timeline entry with a type
// discriminator and optional detail.
func (c *Case) AppendTypedStep(ts time.Time, step string, entryType EntryType, detail string) {
	c.Timeline = append(c.Timeline, TimelineEntry{
		Step:   step,
		Date:   &ts,
		Status: StepDone,
		Type:   entryType,
		Detail: detail,
	})
}

// IsResolved reports whether the case has reached its terminal state.
func (c *Case) IsResolved() bool {
	return c.Status == StatusResolved
}

// AgeHours returns the case age in fractional hours at the given time.
func (c *Case) AgeHours(now time.Time) float64 {
	return now.Sub(c.CreatedAt).Hours()
}
