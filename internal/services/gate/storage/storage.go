// Package storage defines persistence contracts for gate service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kmavego/diagnostic-gate/internal/platform/pagination"
)

var (
	// ErrNotFound indicates a requested record is missing or not visible to
	// the caller.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Project stores one gated project and its lifecycle position.
type Project struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	CurrentState string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Submission stores one immutable evaluation record. Payload fields hold the
// JSON snapshots taken at evaluation time; they are never rewritten.
type Submission struct {
	ID               string
	ProjectID        string
	GateID           string
	GateVersion      string
	StateBefore      string
	Decision         string
	ArtifactsPayload string
	ResultPayload    string
	CreatedAt        time.Time
}

// SubmissionPage stores one page of submission records.
type SubmissionPage struct {
	Submissions []Submission
	NextCursor  string
}

// ListSubmissionsRequest narrows one submission history query.
type ListSubmissionsRequest struct {
	ProjectID string
	Limit     int
	Cursor    string
	Order     pagination.Order
}

// ProjectStore persists project records. Reads are owner-scoped: a project
// that exists but belongs to someone else reads as ErrNotFound.
type ProjectStore interface {
	CreateProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, projectID, ownerID string) (Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]Project, error)
}

// SubmissionStore persists the append-only evaluation ledger. There are no
// update or delete operations on submissions.
type SubmissionStore interface {
	// RecordEvaluation inserts the submission and, when nextState is
	// non-empty, applies the project state transition in the same
	// transaction.
	RecordEvaluation(ctx context.Context, submission Submission, nextState string) error
	GetSubmission(ctx context.Context, submissionID string) (Submission, error)
	ListSubmissions(ctx context.Context, req ListSubmissionsRequest) (SubmissionPage, error)
}

// Store combines the persistence contracts the gate service needs.
type Store interface {
	ProjectStore
	SubmissionStore
}
