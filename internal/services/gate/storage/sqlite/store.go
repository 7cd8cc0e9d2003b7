// Package sqlite provides a SQLite-backed gate storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/kmavego/diagnostic-gate/internal/platform/pagination"
	sqlitemigrate "github.com/kmavego/diagnostic-gate/internal/platform/storage/sqlitemigrate"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/storage"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/storage/cursor"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/storage/sqlite/migrations"
)

// Store persists gate service state in SQLite.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite gate store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SetClock overrides the store's time source.
func (s *Store) SetClock(clock func() time.Time) {
	if s == nil || clock == nil {
		return
	}
	s.clock = clock
}

// CreateProject inserts one project record.
func (s *Store) CreateProject(ctx context.Context, project storage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	projectID := strings.TrimSpace(project.ID)
	ownerID := strings.TrimSpace(project.OwnerID)
	title := strings.TrimSpace(project.Title)
	state := strings.TrimSpace(project.CurrentState)
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if state == "" {
		return fmt.Errorf("current state is required")
	}
	createdAt := project.CreatedAt.UTC()
	updatedAt := project.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.clock().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO projects (
		   id, owner_id, title, description, current_state, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID,
		ownerID,
		title,
		strings.TrimSpace(project.Description),
		state,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject returns one project by ID, scoped to its owner. A project owned
// by someone else reads as ErrNotFound.
func (s *Store) GetProject(ctx context.Context, projectID, ownerID string) (storage.Project, error) {
	if err := ctx.Err(); err != nil {
		return storage.Project{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Project{}, fmt.Errorf("storage is not configured")
	}
	projectID = strings.TrimSpace(projectID)
	ownerID = strings.TrimSpace(ownerID)
	if projectID == "" {
		return storage.Project{}, fmt.Errorf("project id is required")
	}
	if ownerID == "" {
		return storage.Project{}, fmt.Errorf("owner id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, owner_id, title, description, current_state, created_at, updated_at
		   FROM projects
		  WHERE id = ? AND owner_id = ?`,
		projectID,
		ownerID,
	)
	return scanProject(row)
}

// ListProjects returns the owner's projects, most recently updated first.
func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]storage.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, owner_id, title, description, current_state, created_at, updated_at
		   FROM projects
		  WHERE owner_id = ?
		  ORDER BY updated_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]storage.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (storage.Project, error) {
	var project storage.Project
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.Description,
		&project.CurrentState,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Project{}, storage.ErrNotFound
		}
		return storage.Project{}, fmt.Errorf("scan project: %w", err)
	}
	project.CreatedAt = fromMillis(createdAt)
	project.UpdatedAt = fromMillis(updatedAt)
	return project, nil
}

// RecordEvaluation appends one submission to the ledger and, when nextState
// is non-empty, applies the project state transition. Both writes land in one
// transaction so a crash never records a transition without its submission or
// the reverse.
func (s *Store) RecordEvaluation(ctx context.Context, submission storage.Submission, nextState string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	submissionID := strings.TrimSpace(submission.ID)
	projectID := strings.TrimSpace(submission.ProjectID)
	if submissionID == "" {
		return fmt.Errorf("submission id is required")
	}
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(submission.GateID) == "" {
		return fmt.Errorf("gate id is required")
	}
	if strings.TrimSpace(submission.Decision) == "" {
		return fmt.Errorf("decision is required")
	}
	createdAt := submission.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.clock().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin evaluation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO submissions (
		   id, project_id, gate_id, gate_version, state_before,
		   decision, artifacts_payload, result_payload, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		submissionID,
		projectID,
		submission.GateID,
		submission.GateVersion,
		submission.StateBefore,
		submission.Decision,
		submission.ArtifactsPayload,
		submission.ResultPayload,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("record submission: %w", err)
	}

	if nextState = strings.TrimSpace(nextState); nextState != "" {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE projects SET current_state = ?, updated_at = ? WHERE id = ?`,
			nextState,
			toMillis(createdAt),
			projectID,
		)
		if err != nil {
			return fmt.Errorf("apply state transition: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply state transition: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evaluation tx: %w", err)
	}
	return nil
}

// GetSubmission returns one ledger record by ID. Ownership is asserted by the
// caller through the parent project.
func (s *Store) GetSubmission(ctx context.Context, submissionID string) (storage.Submission, error) {
	if err := ctx.Err(); err != nil {
		return storage.Submission{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Submission{}, fmt.Errorf("storage is not configured")
	}
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return storage.Submission{}, fmt.Errorf("submission id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, project_id, gate_id, gate_version, state_before,
		        decision, artifacts_payload, result_payload, created_at
		   FROM submissions
		  WHERE id = ?`,
		submissionID,
	)
	return scanSubmission(row)
}

// ListSubmissions returns one page of the project's ledger, ordered by
// creation time then id. The cursor marks the last record of the previous
// page; both comparisons are strict so a record is never served twice.
func (s *Store) ListSubmissions(ctx context.Context, req storage.ListSubmissionsRequest) (storage.SubmissionPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.SubmissionPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SubmissionPage{}, fmt.Errorf("storage is not configured")
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return storage.SubmissionPage{}, fmt.Errorf("project id is required")
	}
	if req.Limit <= 0 {
		return storage.SubmissionPage{}, fmt.Errorf("limit must be greater than zero")
	}
	order := req.Order
	if order != pagination.OrderAsc && order != pagination.OrderDesc {
		return storage.SubmissionPage{}, fmt.Errorf("order must be asc or desc")
	}

	var (
		rows *sql.Rows
		err  error
	)
	token := strings.TrimSpace(req.Cursor)
	if token == "" {
		direction := "DESC"
		if order == pagination.OrderAsc {
			direction = "ASC"
		}
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, project_id, gate_id, gate_version, state_before,
			        decision, artifacts_payload, result_payload, created_at
			   FROM submissions
			  WHERE project_id = ?
			  ORDER BY created_at `+direction+`, id `+direction+`
			  LIMIT ?`,
			projectID,
			req.Limit+1,
		)
	} else {
		pos, decodeErr := cursor.Decode(token)
		if decodeErr != nil {
			return storage.SubmissionPage{}, decodeErr
		}
		anchor := toMillis(pos.CreatedAt)
		if order == pagination.OrderAsc {
			rows, err = s.sqlDB.QueryContext(
				ctx,
				`SELECT id, project_id, gate_id, gate_version, state_before,
				        decision, artifacts_payload, result_payload, created_at
				   FROM submissions
				  WHERE project_id = ?
				    AND (created_at > ? OR (created_at = ? AND id > ?))
				  ORDER BY created_at ASC, id ASC
				  LIMIT ?`,
				projectID,
				anchor,
				anchor,
				pos.SubmissionID,
				req.Limit+1,
			)
		} else {
			rows, err = s.sqlDB.QueryContext(
				ctx,
				`SELECT id, project_id, gate_id, gate_version, state_before,
				        decision, artifacts_payload, result_payload, created_at
				   FROM submissions
				  WHERE project_id = ?
				    AND (created_at < ? OR (created_at = ? AND id < ?))
				  ORDER BY created_at DESC, id DESC
				  LIMIT ?`,
				projectID,
				anchor,
				anchor,
				pos.SubmissionID,
				req.Limit+1,
			)
		}
	}
	if err != nil {
		return storage.SubmissionPage{}, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	page := storage.SubmissionPage{
		Submissions: make([]storage.Submission, 0, req.Limit),
	}
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return storage.SubmissionPage{}, fmt.Errorf("list submissions: %w", err)
		}
		page.Submissions = append(page.Submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return storage.SubmissionPage{}, fmt.Errorf("list submissions: %w", err)
	}
	if len(page.Submissions) > req.Limit {
		page.Submissions = page.Submissions[:req.Limit]
		last := page.Submissions[req.Limit-1]
		token, err := cursor.Encode(cursor.Position{
			CreatedAt:    last.CreatedAt,
			SubmissionID: last.ID,
		})
		if err != nil {
			return storage.SubmissionPage{}, fmt.Errorf("encode next cursor: %w", err)
		}
		page.NextCursor = token
	}
	return page, nil
}

func scanSubmission(row rowScanner) (storage.Submission, error) {
	var submission storage.Submission
	var createdAt int64
	err := row.Scan(
		&submission.ID,
		&submission.ProjectID,
		&submission.GateID,
		&submission.GateVersion,
		&submission.StateBefore,
		&submission.Decision,
		&submission.ArtifactsPayload,
		&submission.ResultPayload,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Submission{}, storage.ErrNotFound
		}
		return storage.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	submission.CreatedAt = fromMillis(createdAt)
	return submission, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.Store = (*Store)(nil)
