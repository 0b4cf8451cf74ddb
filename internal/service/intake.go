// Package service provides the intake pipeline for grievance cases:
// classification, duplicate clustering, escalation, SLA sweeps and the
// public read side.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gunaso-platform/grievance/pkg/errors"
	"github.com/gunaso-platform/grievance/pkg/logger"

	"github.com/gunaso-platform/grievance/internal/cache"
	"github.com/gunaso-platform/grievance/internal/classifier"
	"github.com/gunaso-platform/grievance/internal/cluster"
	"github.com/gunaso-platform/grievance/internal/escalation"
	"github.com/gunaso-platform/grievance/internal/feed"
	"github.com/gunaso-platform/grievance/internal/model"
	"github.com/gunaso-platform/grievance/internal/notify"
	"github.com/gunaso-platform/grievance/internal/repository"
	"github.com/gunaso-platform/grievance/internal/sla"
)

// IntakeService owns the case store and serializes every mutation.
// The mutex is the single-writer discipline around the clustering
// check-then-act: no submission sees a partially updated case.
type IntakeService struct {
	mu sync.RWMutex

	repo          repository.CaseRepository
	classifier    *classifier.Engine
	notifications *notify.Log
	feedCache     *cache.FeedCache
	logger        *logger.Logger

	casePrefix string
	nextID     int

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// NewIntakeService creates the intake service. feedCache may be nil.
// The ID sequence resumes after the highest suffix already issued:
// joined reports draw RPT numbers from the same sequence as cases, so
// counting cases alone would undercount and collide after a restart.
func NewIntakeService(
	repo repository.CaseRepository,
	engine *classifier.Engine,
	notifications *notify.Log,
	feedCache *cache.FeedCache,
	log *logger.Logger,
	casePrefix string,
) (*IntakeService, error) {
	if log == nil {
		log = logger.New(nil)
	}

	cases, err := repo.All(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to seed case sequence: %w", err)
	}

	next := 1
	for _, c := range cases {
		if n := idSuffix(c.ID); n >= next {
			next = n + 1
		}
		for _, r := range c.LinkedReports {
			if n := idSuffix(r.ReportID); n >= next {
				next = n + 1
			}
		}
	}

	return &IntakeService{
		repo:          repo,
		classifier:    engine,
		notifications: notifications,
		feedCache:     feedCache,
		logger:        log,
		casePrefix:    casePrefix,
		nextID:        next,
		now:           time.Now,
	}, nil
}

// idSuffix extracts the numeric sequence suffix of a case or report ID.
func idSuffix(id string) int {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// nextSeq hands out the next value of the shared case/report sequence.
// Caller must hold the write lock.
func (s *IntakeService) nextSeq() int {
	n := s.nextID
	s.nextID++
	return n
}

// invalidateFeed drops cached feed pages after a mutation. Best effort;
// a failed invalidation only delays freshness by one TTL.
func (s *IntakeService) invalidateFeed(ctx context.Context) {
	if s.feedCache == nil {
		return
	}
	if err := s.feedCache.Invalidate(ctx); err != nil {
		s.logger.Warn("feed cache invalidation failed", "error", err)
	}
}

// Classify runs the classifier without creating a case.
func (s *IntakeService) Classify(title, description string) (model.Classification, error) {
	if title == "" && description == "" {
		return model.Classification{}, apperrors.Validation("provide a title or description")
	}
	return s.classifier.Classify(title, description), nil
}

// Submit routes a citizen report: it either joins an open matching case
// inside the clustering window or registers a new one.
func (s *IntakeService) Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	if req.Title == "" || req.Description == "" {
		return nil, apperrors.Validation("title and description are required")
	}

	reporterID := req.ReporterID
	if reporterID == "" {
		reporterID = "anonymous"
	}

	classification := s.classifier.Classify(req.Title, req.Description)
	location := req.ToLocation()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	if existing := cluster.FindMatch(cases, classification, location, now); existing != nil {
		return s.joinCase(ctx, existing, req, reporterID, location, now)
	}

	return s.createCase(ctx, req, reporterID, classification, location, now)
}

// joinCase merges a report into an existing case. Caller holds the
// write lock.
func (s *IntakeService) joinCase(
	ctx context.Context,
	existing *model.Case,
	req *model.SubmitRequest,
	reporterID string,
	location model.Location,
	now time.Time,
) (*model.SubmitResult, error) {
	reportID := fmt.Sprintf("RPT-%04d", s.nextSeq())

	existing.ReportCount++
	existing.LinkedReports = append(existing.LinkedReports, model.LinkedReport{
		ReportID:    reportID,
		ReporterID:  reporterID,
		Title:       req.Title,
		Description: req.Description,
		Location:    location,
		ReportedAt:  now,
	})

	// A longer description than the case's own is worth keeping.
	if len(req.Description) > len(existing.Description) {
		existing.AdditionalDetails = append(existing.AdditionalDetails, req.Description)
	}

	existing.Timeline = append(existing.Timeline, model.TimelineEntry{
		Step:   fmt.Sprintf("New citizen report added (#%d)", existing.ReportCount),
		Date:   &now,
		Status: model.StepDone,
		Detail: req.Title,
	})

	escalation.Auto(existing, now)
	existing.LastReportedAt = now

	s.notifications.Record(ctx, existing,
		"Your report has been added to existing case "+existing.ID, now)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	s.logger.WithCase(existing.ID).Info("report clustered",
		"report_id", reportID,
		"report_count", existing.ReportCount,
		"priority", existing.Priority,
	)

	return &model.SubmitResult{
		Clustered:   true,
		ReportID:    reportID,
		ReportCount: existing.ReportCount,
		Message: fmt.Sprintf("%d citizens have reported this issue. Your report has been added to %s",
			existing.ReportCount, existing.ID),
		Case: existing,
	}, nil
}

// createCase registers a brand-new case. Caller holds the write lock.
func (s *IntakeService) createCase(
	ctx context.Context,
	req *model.SubmitRequest,
	reporterID string,
	classification model.Classification,
	location model.Location,
	now time.Time,
) (*model.SubmitResult, error) {
	caseID := fmt.Sprintf("%s-%d-%04d", s.casePrefix, now.Year(), s.nextSeq())

	c := &model.Case{
		ID:                 caseID,
		ReporterID:         reporterID,
		Title:              req.Title,
		Description:        req.Description,
		Location:           location,
		Classification:     classification,
		Status:             model.StatusRegistered,
		Priority:           classification.Priority,
		ReportCount:        1,
		LinkedReports:      []model.LinkedReport{},
		ExpectedResponseBy: now.Add(time.Duration(classification.SLAHours) * time.Hour),
		CreatedAt:          now,
		LastReportedAt:     now,
		Timeline: []model.TimelineEntry{
			{Step: "Complaint Registered", Date: &now, Status: model.StepDone},
			{
				Step:   "AI Classification Complete",
				Date:   &now,
				Status: model.StepDone,
				Detail: fmt.Sprintf("%s (%d%% confidence)", classification.Category, classification.Confidence),
			},
			{Step: "Assigned to " + classification.Department, Date: &now, Status: model.StepDone},
			{Step: "Awaiting Department Review", Status: model.StepActive},
			{Step: "Investigation & Resolution", Status: model.StepPending},
		},
	}

	s.notifications.Record(ctx, c, "Complaint registered: "+caseID, now)

	if err := s.repo.Append(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	s.logger.WithCase(caseID).Info("case registered",
		"category", classification.CategoryKey,
		"priority", classification.Priority,
		"sla_hours", classification.SLAHours,
	)

	return &model.SubmitResult{
		Created:     true,
		ReportCount: 1,
		Case:        c,
	}, nil
}

// Get returns one case by ID.
func (s *IntakeService) Get(ctx context.Context, id string) (*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Get(ctx, id)
}

// List returns cases matching the filter, newest first.
func (s *IntakeService) List(ctx context.Context, filter *model.CaseFilter) ([]*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Case, 0, len(cases))
	for _, c := range cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && c.Priority != filter.Priority {
			continue
		}
		if filter.CategoryKey != "" && c.Classification.CategoryKey != filter.CategoryKey {
			continue
		}
		if filter.ReporterID != "" && c.ReporterID != filter.ReporterID {
			continue
		}
		results = append(results, c)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

// SetStatus moves a case through its lifecycle and notifies the merged
// reporters on the transitions citizens care about.
func (s *IntakeService) SetStatus(ctx context.Context, id string, req *model.StatusUpdateRequest) (*model.Case, error) {
	if !req.Status.Valid() {
		return nil, apperrors.Validation("invalid status: " + string(req.Status)).
			WithDetail("status", string(req.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := c.Status
	c.Status = req.Status

	if req.Note != "" {
		c.AppendStep(now, req.Note)
	}

	switch {
	case req.Status == model.StatusResolved:
		c.ResolvedAt = &now
		c.Resolution = req.Resolution
		if c.Resolution == "" {
			c.Resolution = "Issue resolved"
		}
		c.AppendStep(now, "Complaint Resolved")
		if c.ReportCount > 1 {
			c.AppendStep(now, fmt.Sprintf("Resolution affects %d citizen reports", c.ReportCount))
		}
		s.notifications.Record(ctx, c, "Your complaint has been resolved", now)
	case req.Status == model.StatusInProgress && oldStatus != model.StatusInProgress:
		s.notifications.Record(ctx, c, "Your complaint is now being investigated", now)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	s.logger.WithCase(c.ID).Info("case status changed",
		"from", oldStatus,
		"to", c.Status,
	)
	return c, nil
}

// Assign hands a case to a handler and moves it to in-progress.
func (s *IntakeService) Assign(ctx context.Context, id string, req *model.AssignRequest) (*model.Case, error) {
	if req.AssignedTo == "" {
		return nil, apperrors.Validation("assigned_to is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c.AssignedTo = req.AssignedTo
	c.Status = model.StatusInProgress
	c.AppendStep(now, "Assigned to "+req.AssignedTo)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	return c, nil
}

// Escalate applies a manual escalation to at least HIGH.
func (s *IntakeService) Escalate(ctx context.Context, id string, req *model.EscalateRequest) (*model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	escalation.Manual(c, req.Reason, req.EscalateTo, now)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	s.logger.WithCase(c.ID).Info("case escalated",
		"escalated_to", c.EscalatedTo,
		"priority", c.Priority,
	)
	return c, nil
}

// Upvote toggles a public upvote and re-runs threshold escalation when
// the vote lands.
func (s *IntakeService) Upvote(ctx context.Context, id string, req *model.UpvoteRequest) (*model.UpvoteResult, error) {
	voter := req.VoterToken
	if voter == "" {
		voter = "anon-" + uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for i, v := range c.UpvotedBy {
		if v == voter {
			c.UpvotedBy = append(c.UpvotedBy[:i], c.UpvotedBy[i+1:]...)
			if c.Upvotes > 0 {
				c.Upvotes--
			}
			if err := s.repo.Update(ctx, c); err != nil {
				return nil, err
			}
			s.invalidateFeed(ctx)
			return &model.UpvoteResult{Upvoted: false, Upvotes: c.Upvotes}, nil
		}
	}

	c.Upvotes++
	c.UpvotedBy = append(c.UpvotedBy, voter)
	escalation.Auto(c, s.now())

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	return &model.UpvoteResult{Upvoted: true, Upvotes: c.Upvotes}, nil
}

// Notify pushes an arbitrary message to every reporter merged into a
// case.
func (s *IntakeService) Notify(ctx context.Context, id string, req *model.NotifyRequest) (*model.Case, error) {
	message := req.Message
	if message == "" {
		message = "Status update for your complaint"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifications.Record(ctx, c, message, s.now())

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Feedback records a citizen's rating of how the case was handled.
func (s *IntakeService) Feedback(ctx context.Context, id string, req *model.FeedbackRequest) (*model.Case, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5").
			WithDetail("rating", req.Rating)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Feedback = &model.Feedback{
		Rating:  req.Rating,
		Comment: req.Comment,
		Date:    s.now(),
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SLACheck sweeps every open case against its deadline. Newly overdue
// cases are latched, bumped one priority tier, and their reporters
// notified; repeat sweeps over the same breach change nothing.
func (s *IntakeService) SLACheck(ctx context.Context) (*model.SLAReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &model.SLAReport{Details: []model.SLADetail{}}

	for _, c := range cases {
		if c.IsResolved() {
			continue
		}

		detail := sla.Detail(c, now)

		if detail.Status == sla.StatusOverdue && !c.SLAEscalated {
			c.SLAEscalated = true
			escalation.BreachBump(c, now)
			s.notifications.Record(ctx, c, "SLA deadline exceeded - complaint escalated", now)
			if err := s.repo.Update(ctx, c); err != nil {
				return nil, err
			}

			detail.Priority = c.Priority
			detail.AutoEscalated = true

			s.logger.WithCase(c.ID).Warn("sla breached",
				"priority", c.Priority,
				"deadline", c.ExpectedResponseBy,
			)
		}

		report.Details = append(report.Details, detail)

		report.Summary.Total++
		switch detail.Status {
		case sla.StatusOverdue:
			report.Summary.Overdue++
		case sla.StatusWarning:
			report.Summary.Warning++
		case sla.StatusOK:
			report.Summary.OK++
		}
	}

	sort.SliceStable(report.Details, func(i, j int) bool {
		return report.Details[i].RemainingHours < report.Details[j].RemainingHours
	})

	if report.Summary.Overdue > 0 {
		s.invalidateFeed(ctx)
	}

	return report, nil
}

// PublicFeed returns the ranked, redacted public projection, served
// from the cache when one is configured.
func (s *IntakeService) PublicFeed(ctx context.Context, mode feed.Mode, categoryKey string, priority model.Priority, limit int) ([]model.PublicCase, error) {
	if s.feedCache != nil {
		page, err := s.feedCache.Get(ctx, string(mode), categoryKey, string(priority), limit)
		if err != nil {
			s.logger.Warn("feed cache read failed", "error", err)
		} else if page != nil {
			return page, nil
		}
	}

	s.mu.RLock()
	cases, err := s.repo.All(ctx)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	page := feed.Rank(cases, mode, categoryKey, priority, limit, s.now())
	s.mu.RUnlock()

	if s.feedCache != nil {
		if err := s.feedCache.Set(ctx, string(mode), categoryKey, string(priority), limit, page); err != nil {
			s.logger.Warn("feed cache write failed", "error", err)
		}
	}
	return page, nil
}

// CitizenHistory aggregates the reporting record of the citizen behind
// a case. Anonymous reporters get the empty aggregate.
func (s *IntakeService) CitizenHistory(ctx context.Context, caseID string) (*model.CitizenHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.repo.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if c.ReporterID == "" || c.ReporterID == "anonymous" {
		return &model.CitizenHistory{ReporterID: "anonymous", Cases: []model.CitizenCaseRef{}}, nil
	}

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	history := &model.CitizenHistory{
		ReporterID: c.ReporterID,
		Cases:      []model.CitizenCaseRef{},
	}

	var resolutionHours float64
	for _, cc := range cases {
		if cc.ReporterID != c.ReporterID {
			continue
		}

		history.Total++
		switch cc.Status {
		case model.StatusResolved:
			history.Resolved++
			resolvedAt := cc.CreatedAt
			if cc.ResolvedAt != nil {
				resolvedAt = *cc.ResolvedAt
			}
			resolutionHours += resolvedAt.Sub(cc.CreatedAt).Hours()
		case model.StatusInProgress:
			history.InProgress++
		default:
			history.Pending++
		}

		history.Cases = append(history.Cases, model.CitizenCaseRef{
			ID:        cc.ID,
			Title:     cc.Title,
			Status:    cc.Status,
			Priority:  cc.Priority,
			Category:  cc.Classification.Category,
			CreatedAt: cc.CreatedAt,
		})
	}

	if history.Resolved > 0 {
		history.AvgResolutionHours = roundTenth(resolutionHours / float64(history.Resolved))
	}

	return history, nil
}

// Leaderboard ranks departments by resolution rate, ties broken by
// faster average resolution.
func (s *IntakeService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	type deptStats struct {
		department      string
		level           string
		total           int
		resolved        int
		resolutionHours float64
		feedbackScore   int
		feedbackCount   int
		citizensServed  int
	}

	byDept := make(map[string]*deptStats)
	var order []string

	for _, c := range cases {
		dept := c.Classification.Department
		if dept == "" {
			dept = "Unknown"
		}

		d, ok := byDept[dept]
		if !ok {
			d = &deptStats{department: dept, level: c.Classification.GovernmentLevel}
			byDept[dept] = d
			order = append(order, dept)
		}

		d.total++
		d.citizensServed += c.ReportCount
		if c.IsResolved() {
			d.resolved++
			if c.ResolvedAt != nil {
				d.resolutionHours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
			}
		}
		if c.Feedback != nil && c.Feedback.Rating > 0 {
			d.feedbackScore += c.Feedback.Rating
			d.feedbackCount++
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(byDept))
	for _, dept := range order {
		d := byDept[dept]

		entry := model.LeaderboardEntry{
			Department:      d.department,
			Level:           d.level,
			TotalComplaints: d.total,
			Resolved:        d.resolved,
			CitizensServed:  d.citizensServed,
		}
		if d.total > 0 {
			entry.ResolutionRate = int(float64(d.resolved)/float64(d.total)*100 + 0.5)
		}
		if d.resolved > 0 {
			avg := roundTenth(d.resolutionHours / float64(d.resolved))
			entry.AvgResolutionHours = &avg
		}
		if d.feedbackCount > 0 {
			avg := roundTenth(float64(d.feedbackScore) / float64(d.feedbackCount))
			entry.AvgRating = &avg
		}

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ResolutionRate != entries[j].ResolutionRate {
			return entries[i].ResolutionRate > entries[j].ResolutionRate
		}
		return avgOrMax(entries[i].AvgResolutionHours) < avgOrMax(entries[j].AvgResolutionHours)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// LocationSummary groups open cases by district and ward, hottest
// locations first.
func (s *IntakeService) LocationSummary(ctx context.Context) ([]model.LocationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	byLocation := make(map[string]*model.LocationSummary)
	var order []string

	for _, c := range cases {
		if c.IsResolved() {
			continue
		}

		district := c.Location.District
		if district == "" {
			district = "Unknown"
		}
		ward := c.Location.Ward
		if ward == "" {
			ward = "?"
		}
		key := district + " Ward " + ward

		loc, ok := byLocation[key]
		if !ok {
			loc = &model.LocationSummary{Location: key, District: district, Ward: ward}
			byLocation[key] = loc
			order = append(order, key)
		}

		loc.Count++
		loc.CitizensAffected += c.ReportCount
		if c.Priority == model.PriorityHigh || c.Priority == model.PriorityCritical {
			loc.HighPriority++
		}
	}

	summaries := make([]model.LocationSummary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, *byLocation[key])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})

	return summaries, nil
}

// similarityThreshold admits a case into the similar-search results.
const similarityThreshold = 3.0

// similarLimit caps the similar-search results.
const similarLimit = 5

// Similar finds cases resembling a draft submission by a weighted mix
// of category, location and shared vocabulary.
func (s *IntakeService) Similar(ctx context.Context, req *model.SimilarRequest) ([]*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cases, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(req.Title + " " + req.Description)
	var words []string
	for _, w := range strings.Fields(text) {
		if len(w) > 3 {
			words = append(words, w)
		}
	}

	var matches []*model.Case
	for _, c := range cases {
		score := 0.0
		if req.Category != "" && c.Classification.CategoryKey == req.Category {
			score += 3
		}
		if req.Municipality != "" && c.Location.Municipality == req.Municipality {
			score += 2
		}
		if req.Ward != "" && c.Location.Ward == req.Ward {
			score += 1
		}

		caseText := strings.ToLower(c.Title + " " + c.Description)
		for _, w := range words {
			if strings.Contains(caseText, w) {
				score += 0.5
			}
		}

		if score >= similarityThreshold {
			matches = append(matches, c)
		}
	}

	if len(matches) > similarLimit {
		matches = matches[:similarLimit]
	}
	return matches, nil
}

// Categories exposes the classifier's registered category keys.
func (s *IntakeService) Categories() []string {
	return s.classifier.Categories()
}

// WithClock replaces the service clock; tests only.
func (s *IntakeService) WithClock(now func() time.Time) *IntakeService {
	s.now = now
	return s
}

func roundTenth(hours float64) float64 {
	return float64(int(hours*10+0.5)) / 10
}

func avgOrMax(v *float64) float64 {
	if v == nil {
		return 999
	}
	return *v
}
