package cursor

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	token, err := Encode(Position{CreatedAt: createdAt, SubmissionID: "sub-0001"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	pos, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !pos.CreatedAt.Equal(createdAt) {
		t.Fatalf("created at = %v, want %v", pos.CreatedAt, createdAt)
	}
	if pos.SubmissionID != "sub-0001" {
		t.Fatalf("submission id = %q, want sub-0001", pos.SubmissionID)
	}
}

func TestEncodeRequiresFields(t *testing.T) {
	t.Parallel()

	if _, err := Encode(Position{SubmissionID: "sub-0001"}); err == nil {
		t.Fatal("expected error for zero timestamp")
	}
	if _, err := Encode(Position{CreatedAt: time.Now()}); err == nil {
		t.Fatal("expected error for empty submission id")
	}
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"not json", base64.URLEncoding.EncodeToString([]byte("plain text"))},
		{"unknown field", base64.URLEncoding.EncodeToString([]byte(`{"created_at":"2026-03-14T09:26:53Z","submission_id":"s","extra":1}`))},
		{"missing id", base64.URLEncoding.EncodeToString([]byte(`{"created_at":"2026-03-14T09:26:53Z","submission_id":""}`))},
		{"bad timestamp", base64.URLEncoding.EncodeToString([]byte(`{"created_at":"yesterday","submission_id":"s"}`))},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode(tc.token); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Decode(%q) err = %v, want ErrInvalid", tc.token, err)
			}
		})
	}
}

func TestDecodeIsStrictAboutTampering(t *testing.T) {
	t.Parallel()

	token, err := Encode(Position{CreatedAt: time.Now().UTC(), SubmissionID: "sub-0001"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(token[:len(token)-2]); !errors.Is(err, ErrInvalid) {
		t.Fatalf("truncated token err = %v, want ErrInvalid", err)
	}
}
