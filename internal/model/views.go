package model

import "time"

// SubmitRequest is an inbound citizen submission.
type SubmitRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Province         string `json:"province,omitempty"`
	District         string `json:"district,omitempty"`
	Municipality     string `json:"municipality,omitempty"`
	Ward             string `json:"ward,omitempty"`
	SpecificLocation string `json:"specific_location,omitempty"`
	ReporterID       string `json:"reporter_id,omitempty"`
}

// Location assembles the request's location fields.
func (r *SubmitRequest) ToLocation() Location {
	return Location{
		Province:         r.Province,
		District:         r.District,
		Municipality:     r.Municipality,
		Ward:             r.Ward,
		SpecificLocation: r.SpecificLocation,
	}
}

// SubmitResult is the outcome of a submission: either a new case or a
// join onto an existing one.
type SubmitResult struct {
	Created     bool   `json:"created"`
	Clustered   bool   `json:"clustered"`
	ReportID    string `json:"report_id,omitempty"`
	ReportCount int    `json:"report_count"`
	Message     string `json:"message,omitempty"`
	Case        *Case  `json:"case"`
}

// StatusUpdateRequest changes a case's status.
type StatusUpdateRequest struct {
	Status     Status `json:"status"`
	Note       string `json:"note,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// AssignRequest assigns a case to a handler.
type AssignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// EscalateRequest is a manual escalation by an administrator.
type EscalateRequest struct {
	Reason     string `json:"reason,omitempty"`
	EscalateTo string `json:"escalate_to,omitempty"`
}

// UpvoteRequest toggles a public upvote.
type UpvoteRequest struct {
	VoterToken string `json:"voter_token,omitempty"`
}

// UpvoteResult reports the toggle outcome.
type UpvoteResult struct {
	Upvoted bool `json:"upvoted"`
	Upvotes int  `json:"upvotes"`
}

// NotifyRequest sends a manual notification to all merged reporters.
type NotifyRequest struct {
	Message string `json:"message,omitempty"`
}

// FeedbackRequest records a citizen's rating of the resolution.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// SimilarRequest searches for cases resembling a draft submission.
type SimilarRequest struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Ward         string `json:"ward,omitempty"`
	Category     string `json:"category,omitempty"`
}

// CaseFilter defines filters for the administrative case listing.
type CaseFilter struct {
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	CategoryKey string   `json:"category_key,omitempty"`
	ReporterID  string   `json:"reporter_id,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// PublicCase is the redacted projection served on the public feed.
// Voter tokens never leave the store and descriptions are capped.
type PublicCase struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	CategoryKey     string   `json:"category_key"`
	GovernmentLevel string   `json:"government_level"`
	Department      string   `json:"department"`
	Location        Location `json:"location"`
	Priority        Priority `json:"priority"`
	Status          Status   `json:"status"`
	ReportCount     int      `json:"report_count"`
	Upvotes         int      `json:"upvotes"`
	CreatedAt       time.Time `json:"created_at"`
	LastReportedAt  time.Time `json:"last_reported_at"`
}

// SLADetail is one case's standing against its SLA deadline.
type SLADetail struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Priority           Priority  `json:"priority"`
	ExpectedResponseBy time.Time `json:"expected_response_by"`
	RemainingHours     float64   `json:"remaining_hours"`
	Status             string    `json:"status"`
	ReportCount        int       `json:"report_count"`
	AssignedTo         string    `json:"assigned_to,omitempty"`
	AutoEscalated      bool      `json:"auto_escalated,omitempty"`
}

// SLASummary aggregates a deadline sweep.
type SLASummary struct {
	Total   int `json:"total"`
	Overdue int `json:"overdue"`
	Warning int `json:"warning"`
	OK      int `json:"ok"`
}

// SLAReport is the full output of a deadline sweep.
type SLAReport struct {
	Summary SLASummary  `json:"summary"`
	Details []SLADetail `json:"details"`
}

// CitizenCaseRef is the compact case view inside a citizen history.
type CitizenCaseRef struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Priority  Priority  `json:"priority"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// CitizenHistory aggregates one reporter's cases.
type CitizenHistory struct {
	ReporterID         string           `json:"reporter_id"`
	Total              int              `json:"total"`
	Resolved           int              `json:"resolved"`
	Pending            int              `json:"pending"`
	InProgress         int              `json:"in_progress"`
	AvgResolutionHours float64          `json:"avg_resolution_hours"`
	Cases              []CitizenCaseRef `json:"cases"`
}

// LeaderboardEntry is one department's standing on the public leaderboard.
type LeaderboardEntry struct {
	Rank               int      `json:"rank"`
	Department         string   `json:"department"`
	Level              string   `json:"level"`
	TotalComplaints    int      `json:"total_complaints"`
	Resolved           int      `json:"resolved"`
	ResolutionRate     int      `json:"resolution_rate"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours"`
	AvgRating          *float64 `json:"avg_rating"`
	CitizensServed     int      `json:"citizens_served"`
}

// LocationSummary aggregates unresolved cases per district and ward.
type LocationSummary struct {
	Location         string `json:"location"`
	District         string `json:"district"`
	Ward             string `json:"ward"`
	Count            int    `json:"count"`
	HighPriority     int    `json:"high_priority"`
	CitizensAffected int    `json:"citizens_affected"`
}
