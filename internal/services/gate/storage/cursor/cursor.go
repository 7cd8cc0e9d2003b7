// Package cursor encodes submission list positions as opaque page tokens.
//
// A token is URL-safe base64 over a compact JSON object carrying the creation
// timestamp and the submission id of the last record on the page. Decoding is
// strict: a token that is not exactly what Encode produces is rejected, so a
// tampered or truncated token surfaces as a client error instead of a skewed
// page.
package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid indicates a page token that did not decode to a valid position.
var ErrInvalid = errors.New("invalid cursor")

// Position is the ledger coordinate a token points at.
type Position struct {
	CreatedAt    time.Time
	SubmissionID string
}

type wireCursor struct {
	CreatedAt    string `json:"created_at"`
	SubmissionID string `json:"submission_id"`
}

// Encode renders pos as an opaque page token.
func Encode(pos Position) (string, error) {
	if strings.TrimSpace(pos.SubmissionID) == "" {
		return "", fmt.Errorf("submission id is required")
	}
	if pos.CreatedAt.IsZero() {
		return "", fmt.Errorf("created at is required")
	}
	raw, err := json.Marshal(wireCursor{
		CreatedAt:    pos.CreatedAt.UTC().Format(time.RFC3339Nano),
		SubmissionID: pos.SubmissionID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Decode parses a page token back into a position. All failure modes return
// ErrInvalid.
func Decode(token string) (Position, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Position{}, fmt.Errorf("%w: empty token", ErrInvalid)
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	var wire wireCursor
	if err := decoder.Decode(&wire); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(wire.SubmissionID) == "" {
		return Position{}, fmt.Errorf("%w: missing submission id", ErrInvalid)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, wire.CreatedAt)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Position{CreatedAt: createdAt.UTC(), SubmissionID: wire.SubmissionID}, nil
}
