package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type ChallengeStatus string

const (
	StatusPending   ChallengeStatus = "pending"
	StatusSubmitted ChallengeStatus = "submitted"
	StatusCompleted ChallengeStatus = "completed"
)

type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictError   Verdict = "error"
)

// Envelope wraps a generated value for storage: {"value": <inputValue>}.
type Envelope struct {
	Value interface{} `json:"value"`
}

// Challenge is one user's instantiated attempt at a blueprint. Input and
// Solution hold envelope JSON; Solution is written once at creation and has
// no update path.
type Challenge struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	BlueprintID string          `json:"blueprint_id"`
	Input       json.RawMessage `json:"input"`
	Solution    json.RawMessage `json:"solution"`
	Status      ChallengeStatus `json:"status"`
	Logs        []SubmissionLog `json:"logs,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Blueprint *Blueprint `json:"blueprint,omitempty"` // For detail/history views
}

// SubmissionLog records one answer attempt and its verdict. Append-only.
type SubmissionLog struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	Input       string    `json:"input"`
	Output      Verdict   `json:"output"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEnvelope wraps a generated value as envelope JSON.
func NewEnvelope(value interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(Envelope{Value: value})
	if err != nil {
		return nil, fmt.Errorf("model.NewEnvelope: %w", err)
	}
	return raw, nil
}

// CanonicalSolutionString unwraps a solution envelope and renders its value
// as canonical JSON text. This is the exact string a correct submission must
// match: a solution of {"value":579} canonicalizes to "579".
func CanonicalSolutionString(solution json.RawMessage) (string, error) {
	var env Envelope
	if err := json.Unmarshal(solution, &env); err != nil {
		return "", fmt.Errorf("model.CanonicalSolutionString unmarshal: %w", err)
	}
	raw, err := json.Marshal(env.Value)
	if err != nil {
		return "", fmt.Errorf("model.CanonicalSolutionString marshal: %w", err)
	}
	return string(raw), nil
}

// ClassifyAnswer compares a raw submission against the stored solution.
// An exact match completes the challenge; anything else returns it to
// submitted so the user may try again.
func ClassifyAnswer(solution json.RawMessage, rawInput string) (ChallengeStatus, Verdict, error) {
	want, err := CanonicalSolutionString(solution)
	if err != nil {
		return "", "", err
	}
	if rawInput == want {
		return StatusCompleted, VerdictCorrect, nil
	}
	return StatusSubmitted, VerdictError, nil
}
