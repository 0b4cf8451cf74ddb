package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/gunaso-platform/grievance/pkg/errors"

	"github.com/gunaso-platform/grievance/internal/model"
)

// schema creates the case table. Structured sub-records live in JSONB:
// the intake core treats them as opaque case state, not query targets.
const schema = `
CREATE TABLE IF NOT EXISTS grievance_cases (
	seq                  BIGSERIAL,
	id                   TEXT PRIMARY KEY,
	reporter_id          TEXT NOT NULL DEFAULT 'anonymous',
	title                TEXT NOT NULL,
	description          TEXT NOT NULL,
	status               TEXT NOT NULL,
	priority             TEXT NOT NULL,
	assigned_to          TEXT NOT NULL DEFAULT '',
	report_count         INT NOT NULL DEFAULT 1,
	upvotes              INT NOT NULL DEFAULT 0,
	notifications_sent   INT NOT NULL DEFAULT 0,
	sla_escalated        BOOLEAN NOT NULL DEFAULT FALSE,
	escalated            BOOLEAN NOT NULL DEFAULT FALSE,
	escalated_to         TEXT NOT NULL DEFAULT '',
	resolution           TEXT NOT NULL DEFAULT '',
	resolved_at          TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL,
	last_reported_at     TIMESTAMPTZ NOT NULL,
	expected_response_by TIMESTAMPTZ NOT NULL,
	location             JSONB NOT NULL DEFAULT '{}',
	classification       JSONB NOT NULL DEFAULT '{}',
	linked_reports       JSONB NOT NULL DEFAULT '[]',
	additional_details   JSONB NOT NULL DEFAULT '[]',
	upvoted_by           JSONB NOT NULL DEFAULT '[]',
	timeline             JSONB NOT NULL DEFAULT '[]',
	feedback             JSONB
);
CREATE INDEX IF NOT EXISTS idx_grievance_cases_seq ON grievance_cases (seq);
`

// PostgresStore persists cases in PostgreSQL. It satisfies the same
// contract as the in-memory store; the intake service still serializes
// mutation, so no row locking is needed within one process.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed case store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the case table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to ensure schema")
	}
	return nil
}

// dbCase is the flat row representation of a case.
type dbCase struct {
	ID                 string         `db:"id"`
	ReporterID         string         `db:"reporter_id"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	Status             string         `db:"status"`
	Priority           string         `db:"priority"`
	AssignedTo         string         `db:"assigned_to"`
	ReportCount        int            `db:"report_count"`
	Upvotes            int            `db:"upvotes"`
	NotificationsSent  int            `db:"notifications_sent"`
	SLAEscalated       bool           `db:"sla_escalated"`
	Escalated          bool           `db:"escalated"`
	EscalatedTo        string         `db:"escalated_to"`
	Resolution         string         `db:"resolution"`
	ResolvedAt         *time.Time     `db:"resolved_at"`
	CreatedAt          time.Time      `db:"created_at"`
	LastReportedAt     time.Time      `db:"last_reported_at"`
	ExpectedResponseBy time.Time      `db:"expected_response_by"`
	Location           []byte         `db:"location"`
	Classification     []byte         `db:"classification"`
	LinkedReports      []byte         `db:"linked_reports"`
	AdditionalDetails  []byte         `db:"additional_details"`
	UpvotedBy          []byte         `db:"upvoted_by"`
	Timeline           []byte         `db:"timeline"`
	Feedback           []byte         `db:"feedback"`
	Seq                sql.NullInt64  `db:"seq"`
}

// Append stores a newly created case.
func (s *PostgresStore) Append(ctx context.Context, c *model.Case) error {
	row, err := toDBCase(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO grievance_cases (
			id, reporter_id, title, description, status, priority,
			assigned_to, report_count, upvotes, notifications_sent,
			sla_escalated, escalated, escalated_to, resolution, resolved_at,
			created_at, last_reported_at, expected_response_by,
			location, classification, linked_reports, additional_details,
			upvoted_by, timeline, feedback
		) VALUES (
			:id, :reporter_id, :title, :description, :status, :priority,
			:assigned_to, :report_count, :upvotes, :notifications_sent,
			:sla_escalated, :escalated, :escalated_to, :resolution, :resolved_at,
			:created_at, :last_reported_at, :expected_response_by,
			:location, :classification, :linked_reports, :additional_details,
			:upvoted_by, :timeline, :feedback
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to insert case")
	}
	return nil
}

// Get returns the case with the given ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Case, error) {
	var row dbCase
	err := s.db.GetContext(ctx, &row, `SELECT * FROM grievance_cases WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("case", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to get case")
	}
	return fromDBCase(&row)
}

// Update persists a mutated case.
func (s *PostgresStore) Update(ctx context.Context, c *model.Case) error {
	row, err := toDBCase(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE grievance_cases SET
			status = :status,
			priority = :priority,
			assigned_to = :assigned_to,
			report_count = :report_count,
			upvotes = :upvotes,
			notifications_sent = :notifications_sent,
			sla_escalated = :sla_escalated,
			escalated = :escalated,
			escalated_to = :escalated_to,
			resolution = :resolution,
			resolved_at = :resolved_at,
			last_reported_at = :last_reported_at,
			linked_reports = :linked_reports,
			additional_details = :additional_details,
			upvoted_by = :upvoted_by,
			timeline = :timeline,
			feedback = :feedback
		WHERE id = :id
	`

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to update case")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound("case", c.ID)
	}
	return nil
}

// All returns every case in insertion order.
func (s *PostgresStore) All(ctx context.Context) ([]*model.Case, error) {
	var rows []dbCase
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM grievance_cases ORDER BY seq ASC`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to list cases")
	}

	cases := make([]*model.Case, 0, len(rows))
	for i := range rows {
		c, err := fromDBCase(&rows[i])
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Count returns the number of stored cases.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM grievance_cases`); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to count cases")
	}
	return count, nil
}

func toDBCase(c *model.Case) (*dbCase, error) {
	location, err := json.Marshal(c.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}
	classification, err := json.Marshal(c.Classification)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classification: %w", err)
	}
	linked, err := json.Marshal(c.LinkedReports)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal linked reports: %w", err)
	}
	details, err := json.Marshal(c.AdditionalDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal additional details: %w", err)
	}
	upvotedBy, err := json.Marshal(c.UpvotedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upvoted_by: %w", err)
	}
	timeline, err := json.Marshal(c.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}

	var feedback []byte
	if c.Feedback != nil {
		feedback, err = json.Marshal(c.Feedback)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal feedback: %w", err)
		}
	}

	return &dbCase{
		ID:                 c.ID,
		ReporterID:         c.ReporterID,
		Title:              c.Title,
		Description:        c.Description,
		Status:             string(c.Status),
		Priority:           string(c.Priority),
		AssignedTo:         c.AssignedTo,
		ReportCount:        c.ReportCount,
		Upvotes:            c.Upvotes,
		NotificationsSent:  c.NotificationsSent,
		SLAEscalated:       c.SLAEscalated,
		Escalated:          c.Escalated,
		EscalatedTo:        c.EscalatedTo,
		Resolution:         c.Resolution,
		ResolvedAt:         c.ResolvedAt,
		CreatedAt:          c.CreatedAt,
		LastReportedAt:     c.LastReportedAt,
		ExpectedResponseBy: c.ExpectedResponseBy,
		Location:           location,
		Classification:     classification,
		LinkedReports:      linked,
		AdditionalDetails:  details,
		UpvotedBy:          upvotedBy,
		Timeline:           timeline,
		Feedback:           feedback,
	}, nil
}

func fromDBCase(row *dbCase) (*model.Case, error) {
	c := &model.Case{
		ID:                 row.ID,
		ReporterID:         row.ReporterID,
		Title:              row.Title,
		Description:        row.Description,
		Status:             model.Status(row.Status),
		Priority:           model.Priority(row.Priority),
		AssignedTo:         row.AssignedTo,
		ReportCount:        row.ReportCount,
		Upvotes:            row.Upvotes,
		NotificationsSent:  row.NotificationsSent,
		SLAEscalated:       row.SLAEscalated,
		Escalated:          row.Escalated,
		EscalatedTo:        row.EscalatedTo,
		Resolution:         row.Resolution,
		ResolvedAt:         row.ResolvedAt,
		CreatedAt:          row.CreatedAt,
		LastReportedAt:     row.LastReportedAt,
		ExpectedResponseBy: row.ExpectedResponseBy,
	}

	if err := json.Unmarshal(row.Location, &c.Location); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}
	if err := json.Unmarshal(row.Classification, &c.Classification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classification: %w", err)
	}
	if err := json.Unmarshal(row.LinkedReports, &c.LinkedReports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal linked reports: %w", err)
	}
	if err := json.Unmarshal(row.AdditionalDetails, &c.AdditionalDetails); err != nil {
		return nil, fmt.Errorf("failed to unmarshal additional details: %w", err)
	}
	if err := json.Unmarshal(row.UpvotedBy, &c.UpvotedBy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upvoted_by: %w", err)
	}
	if err := json.Unmarshal(row.Timeline, &c.Timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}
	if len(row.Feedback) > 0 {
		c.Feedback = &model.Feedback{}
		if err := json.Unmarshal(row.Feedback, c.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
	}

	return c, nil
}
