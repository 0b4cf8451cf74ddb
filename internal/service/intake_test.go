package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunaso-platform/grievance/pkg/logger"

	"github.com/gunaso-platform/grievance/internal/classifier"
	"github.com/gunaso-platform/grievance/internal/feed"
	"github.com/gunaso-platform/grievance/internal/model"
	"github.com/gunaso-platform/grievance/internal/notify"
	"github.com/gunaso-platform/grievance/internal/repository"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestService(t *testing.T) (*IntakeService, *testClock) {
	t.Helper()

	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
	svc, err := NewIntakeService(
		repository.NewMemoryStore(),
		classifier.New(),
		notify.NewLog(nil, log.Logger),
		nil,
		log,
		"CPL",
	)
	require.NoError(t, err)

	clock := &testClock{current: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
	svc.WithClock(clock.Now)
	return svc, clock
}

func waterReport(reporter string) *model.SubmitRequest {
	return &model.SubmitRequest{
		Title:        "No water from the tap",
		Description:  "The communal tap has been dry for three days",
		District:     "Kathmandu",
		Municipality: "Kathmandu Metropolitan",
		Ward:         "5",
		ReporterID:   reporter,
	}
}

func TestSubmitCreatesCase(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.Clustered)
	assert.Equal(t, 1, result.ReportCount)

	c := result.Case
	assert.Equal(t, "CPL-2026-0001", c.ID)
	assert.Equal(t, model.StatusRegistered, c.Status)
	assert.Equal(t, model.PriorityNormal, c.Priority)
	assert.Equal(t, "water", c.Classification.CategoryKey)
	assert.Equal(t, clock.Now().Add(48*time.Hour), c.ExpectedResponseBy)

	// Five lifecycle steps plus the SMS and email registration entries.
	require.Len(t, c.Timeline, 7)
	assert.Equal(t, "Complaint Registered", c.Timeline[0].Step)
	assert.Equal(t, model.StepActive, c.Timeline[3].Status)
	assert.Nil(t, c.Timeline[3].Date)
	assert.Equal(t, model.EntryNotification, c.Timeline[5].Type)
	assert.Equal(t, 2, c.NotificationsSent)
}

func TestSubmitRequiresTitleAndDescription(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), &model.SubmitRequest{Title: "only a title"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestSubmitClustersWithinWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	second, err := svc.Submit(ctx, waterReport("citizen-2"))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.True(t, second.Clustered)
	assert.Equal(t, "RPT-0002", second.ReportID)
	assert.Equal(t, 2, second.ReportCount)
	assert.Contains(t, second.Message, "2 citizens have reported this issue")
	assert.Contains(t, second.Message, first.Case.ID)

	c, err := svc.Get(ctx, first.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ReportCount)
	require.Len(t, c.LinkedReports, 1)
	assert.Equal(t, "citizen-2", c.LinkedReports[0].ReporterID)
	assert.Equal(t, c.ReportCount, 1+len(c.LinkedReports))
}

func TestSubmitMunicipalityFallback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	other := waterReport("citizen-2")
	other.Ward = "9"
	result, err := svc.Submit(ctx, other)
	require.NoError(t, err)

	assert.True(t, result.Clustered)
}

func TestSubmitOutsideWindowCreatesNewCase(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	clock.Advance(49 * time.Hour)

	second, err := svc.Submit(ctx, waterReport("citizen-2"))
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Case.ID, second.Case.ID)
}

func TestSubmitKeepsLongerDescription(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	longer := waterReport("citizen-2")
	longer.Description = "The communal tap has been dry for three days and the tank above the square is leaking too"
	_, err = svc.Submit(ctx, longer)
	require.NoError(t, err)

	c, err := svc.Get(ctx, first.Case.ID)
	require.NoError(t, err)
	require.Len(t, c.AdditionalDetails, 1)
	assert.Equal(t, longer.Description, c.AdditionalDetails[0])
}

func TestReportCountEscalation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNormal, first.Case.Priority)

	for i := 2; i <= 5; i++ {
		_, err := svc.Submit(ctx, waterReport("citizen-n"))
		require.NoError(t, err)
	}

	c, err := svc.Get(ctx, first.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, c.ReportCount)
	assert.Equal(t, model.PriorityMedium, c.Priority)

	for i := 6; i <= 15; i++ {
		_, err := svc.Submit(ctx, waterReport("citizen-n"))
		require.NoError(t, err)
	}

	c, err = svc.Get(ctx, first.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, c.Priority)
	assert.Equal(t, c.ReportCount, 1+len(c.LinkedReports))
}

func TestClusteringNeverDemotesUrgentCase(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	urgent := &model.SubmitRequest{
		Title:        "Transformer exploded on the pole",
		Description:  "Sparking wires are hanging over the street",
		District:     "Lalitpur",
		Municipality: "Lalitpur Metropolitan",
		Ward:         "3",
	}

	first, err := svc.Submit(ctx, urgent)
	require.NoError(t, err)
	require.Equal(t, model.PriorityHigh, first.Case.Priority)

	// Crossing the 5-report MEDIUM threshold must not pull HIGH down.
	for i := 2; i <= 6; i++ {
		_, err := svc.Submit(ctx, urgent)
		require.NoError(t, err)
	}

	c, err := svc.Get(ctx, first.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, c.Priority)
}

func TestUpvoteToggle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport(""))
	require.NoError(t, err)
	id := created.Case.ID

	up, err := svc.Upvote(ctx, id, &model.UpvoteRequest{VoterToken: "visitor-1"})
	require.NoError(t, err)
	assert.True(t, up.Upvoted)
	assert.Equal(t, 1, up.Upvotes)

	down, err := svc.Upvote(ctx, id, &model.UpvoteRequest{VoterToken: "visitor-1"})
	require.NoError(t, err)
	assert.False(t, down.Upvoted)
	assert.Equal(t, 0, down.Upvotes)
}

func TestUpvoteUnknownCase(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Upvote(context.Background(), "CPL-2026-9999", &model.UpvoteRequest{VoterToken: "v"})
	require.Error(t, err)
}

func TestResolutionExcludesCaseFromClustering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	resolved, err := svc.SetStatus(ctx, first.Case.ID, &model.StatusUpdateRequest{
		Status: model.StatusResolved,
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "Issue resolved", resolved.Resolution)

	second, err := svc.Submit(ctx, waterReport("citizen-2"))
	require.NoError(t, err)
	assert.True(t, second.Created)
}

func TestStatusChangeNotifies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)
	sentAfterCreate := created.Case.NotificationsSent

	c, err := svc.SetStatus(ctx, created.Case.ID, &model.StatusUpdateRequest{
		Status: model.StatusInProgress,
		Note:   "Crew dispatched",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, c.Status)
	assert.Greater(t, c.NotificationsSent, sentAfterCreate)

	// Repeating in-progress is not a citizen-visible transition.
	sentBefore := c.NotificationsSent
	c, err = svc.SetStatus(ctx, created.Case.ID, &model.StatusUpdateRequest{Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, sentBefore, c.NotificationsSent)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetStatus(context.Background(), "CPL-2026-0001", &model.StatusUpdateRequest{Status: "archived"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestAssignMovesToInProgress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport(""))
	require.NoError(t, err)

	c, err := svc.Assign(ctx, created.Case.ID, &model.AssignRequest{AssignedTo: "Ram Shrestha"})
	require.NoError(t, err)
	assert.Equal(t, "Ram Shrestha", c.AssignedTo)
	assert.Equal(t, model.StatusInProgress, c.Status)
	assert.Equal(t, "Assigned to Ram Shrestha", c.Timeline[len(c.Timeline)-1].Step)
}

func TestManualEscalation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport(""))
	require.NoError(t, err)
	require.Equal(t, model.PriorityNormal, created.Case.Priority)

	c, err := svc.Escalate(ctx, created.Case.ID, &model.EscalateRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, c.Priority)
	assert.True(t, c.Escalated)
	assert.Equal(t, "Higher Authority", c.EscalatedTo)
}

func TestFeedbackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport(""))
	require.NoError(t, err)

	_, err = svc.Feedback(ctx, created.Case.ID, &model.FeedbackRequest{Rating: 6})
	require.Error(t, err)

	c, err := svc.Feedback(ctx, created.Case.ID, &model.FeedbackRequest{Rating: 4, Comment: "Fixed quickly"})
	require.NoError(t, err)
	require.NotNil(t, c.Feedback)
	assert.Equal(t, 4, c.Feedback.Rating)
}

func TestSLACheckEscalatesOverdueOnce(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)
	id := created.Case.ID

	report, err := svc.SLACheck(ctx)
	require.NoError(t, err)
	require.Len(t, report.Details, 1)
	assert.Equal(t, "ok", report.Details[0].Status)
	assert.Equal(t, 1, report.Summary.OK)

	// Past the 48h deadline.
	clock.Advance(49 * time.Hour)

	report, err = svc.SLACheck(ctx)
	require.NoError(t, err)
	require.Len(t, report.Details, 1)
	assert.Equal(t, "overdue", report.Details[0].Status)
	assert.Equal(t, 0.0, report.Details[0].RemainingHours)
	assert.True(t, report.Details[0].AutoEscalated)
	assert.Equal(t, model.PriorityMedium, report.Details[0].Priority)
	assert.Equal(t, 1, report.Summary.Overdue)

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.SLAEscalated)
	assert.Equal(t, model.PriorityMedium, c.Priority)
	timelineLen := len(c.Timeline)

	// Repeat sweeps over the same breach must change nothing.
	report, err = svc.SLACheck(ctx)
	require.NoError(t, err)
	assert.False(t, report.Details[0].AutoEscalated)

	c, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, c.Priority)
	assert.Len(t, c.Timeline, timelineLen)
}

func TestSLACheckOrdersByRemainingHours(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	// 48h SLA in Kathmandu.
	_, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	clock.Advance(30 * time.Hour)

	// Fresh 48h SLA elsewhere: more time remaining than the first.
	other := waterReport("citizen-2")
	other.District = "Pokhara"
	other.Municipality = "Pokhara Metropolitan"
	second, err := svc.Submit(ctx, other)
	require.NoError(t, err)
	require.True(t, second.Created)

	report, err := svc.SLACheck(ctx)
	require.NoError(t, err)
	require.Len(t, report.Details, 2)
	assert.Less(t, report.Details[0].RemainingHours, report.Details[1].RemainingHours)
}

func TestPublicFeedRedacts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := waterReport("citizen-1")
	req.SpecificLocation = "behind the school gate"
	_, err := svc.Submit(ctx, req)
	require.NoError(t, err)

	page, err := svc.PublicFeed(ctx, feed.ModeRecent, "", "", 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Empty(t, page[0].Location.SpecificLocation)
	assert.Equal(t, "Kathmandu", page[0].Location.District)
}

func TestCitizenHistory(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, waterReport("citizen-7"))
	require.NoError(t, err)

	road := &model.SubmitRequest{
		Title:       "Pothole on the highway",
		Description: "A deep pothole near the bus stop",
		District:    "Kathmandu",
		Ward:        "5",
		ReporterID:  "citizen-7",
	}
	_, err = svc.Submit(ctx, road)
	require.NoError(t, err)

	clock.Advance(10 * time.Hour)
	_, err = svc.SetStatus(ctx, first.Case.ID, &model.StatusUpdateRequest{Status: model.StatusResolved})
	require.NoError(t, err)

	history, err := svc.CitizenHistory(ctx, first.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, "citizen-7", history.ReporterID)
	assert.Equal(t, 2, history.Total)
	assert.Equal(t, 1, history.Resolved)
	assert.Equal(t, 1, history.Pending)
	assert.Equal(t, 10.0, history.AvgResolutionHours)
	assert.Len(t, history.Cases, 2)
}

func TestCitizenHistoryAnonymous(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, waterReport(""))
	require.NoError(t, err)

	history, err := svc.CitizenHistory(ctx, created.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", history.ReporterID)
	assert.Equal(t, 0, history.Total)
	assert.Empty(t, history.Cases)
}

func TestLeaderboard(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	water, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	road := &model.SubmitRequest{
		Title:       "Pothole on the highway",
		Description: "A deep pothole near the bus stop",
		District:    "Bhaktapur",
		Ward:        "2",
	}
	_, err = svc.Submit(ctx, road)
	require.NoError(t, err)

	clock.Advance(6 * time.Hour)
	_, err = svc.SetStatus(ctx, water.Case.ID, &model.StatusUpdateRequest{Status: model.StatusResolved})
	require.NoError(t, err)
	_, err = svc.Feedback(ctx, water.Case.ID, &model.FeedbackRequest{Rating: 5})
	require.NoError(t, err)

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The water department resolved everything; it leads.
	top := entries[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, "Department of Water Supply and Sewerage Management", top.Department)
	assert.Equal(t, 100, top.ResolutionRate)
	require.NotNil(t, top.AvgResolutionHours)
	assert.Equal(t, 6.0, *top.AvgResolutionHours)
	require.NotNil(t, top.AvgRating)
	assert.Equal(t, 5.0, *top.AvgRating)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Nil(t, entries[1].AvgResolutionHours)
}

func TestLocationSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, waterReport("citizen-2"))
	require.NoError(t, err)

	other := &model.SubmitRequest{
		Title:       "Garbage dumping by the river",
		Description: "Plastic waste piling up",
		District:    "Bhaktapur",
		Ward:        "4",
	}
	_, err = svc.Submit(ctx, other)
	require.NoError(t, err)

	summaries, err := svc.LocationSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Kathmandu Ward 5", summaries[0].Location)
	assert.Equal(t, 1, summaries[0].Count)
	assert.Equal(t, 2, summaries[0].CitizensAffected)
}

func TestSimilarSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	matches, err := svc.Similar(ctx, &model.SimilarRequest{
		Title:        "water tap not working",
		Description:  "communal tap dry again",
		Municipality: "Kathmandu Metropolitan",
		Ward:         "5",
		Category:     "water",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// Nothing in common with the stored case.
	none, err := svc.Similar(ctx, &model.SimilarRequest{
		Title:    "scholarship delayed",
		Category: "education",
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)

	road := &model.SubmitRequest{
		Title:       "Pothole on the highway",
		Description: "A deep pothole near the bus stop",
		District:    "Bhaktapur",
		Ward:        "2",
		ReporterID:  "citizen-2",
	}
	_, err = svc.Submit(ctx, road)
	require.NoError(t, err)

	all, err := svc.List(ctx, &model.CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	waterOnly, err := svc.List(ctx, &model.CaseFilter{CategoryKey: "water"})
	require.NoError(t, err)
	require.Len(t, waterOnly, 1)
	assert.Equal(t, "water", waterOnly[0].Classification.CategoryKey)

	byReporter, err := svc.List(ctx, &model.CaseFilter{ReporterID: "citizen-2"})
	require.NoError(t, err)
	assert.Len(t, byReporter, 1)
}

func TestSequenceReseedsAfterRestart(t *testing.T) {
	store := repository.NewMemoryStore()
	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
	clock := &testClock{current: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	first, err := NewIntakeService(store, classifier.New(), notify.NewLog(nil, log.Logger), nil, log, "CPL")
	require.NoError(t, err)
	first.WithClock(clock.Now)

	// Two cases plus a join: the join burns a sequence number too, so
	// three IDs are issued across two stored cases.
	_, err = first.Submit(ctx, waterReport("citizen-1"))
	require.NoError(t, err)
	joined, err := first.Submit(ctx, waterReport("citizen-2"))
	require.NoError(t, err)
	require.True(t, joined.Clustered)
	require.Equal(t, "RPT-0002", joined.ReportID)

	road := &model.SubmitRequest{
		Title:       "Pothole on the highway",
		Description: "A deep pothole near the bus stop",
		District:    "Bhaktapur",
		Ward:        "2",
	}
	third, err := first.Submit(ctx, road)
	require.NoError(t, err)
	require.Equal(t, "CPL-2026-0003", third.Case.ID)

	// A fresh service over the same store must mint past every issued
	// suffix, not just past the case count.
	second, err := NewIntakeService(store, classifier.New(), notify.NewLog(nil, log.Logger), nil, log, "CPL")
	require.NoError(t, err)
	second.WithClock(clock.Now)

	env := &model.SubmitRequest{
		Title:       "Garbage dumping by the river",
		Description: "Plastic waste piling up",
		District:    "Pokhara",
		Ward:        "8",
	}
	fourth, err := second.Submit(ctx, env)
	require.NoError(t, err)
	assert.True(t, fourth.Created)
	assert.Equal(t, "CPL-2026-0004", fourth.Case.ID)
}

func TestClassifyPreview(t *testing.T) {
	svc, _ := newTestService(t)

	classification, err := svc.Classify("load shedding every evening", "")
	require.NoError(t, err)
	assert.Equal(t, "electricity", classification.CategoryKey)

	_, err = svc.Classify("", "")
	require.Error(t, err)
}
