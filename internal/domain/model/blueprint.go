package model

import (
	"time"
)

type BlueprintDifficulty string

const (
	DifficultyEasy   BlueprintDifficulty = "easy"
	DifficultyMedium BlueprintDifficulty = "medium"
	DifficultyHard   BlueprintDifficulty = "hard"
)

// Blueprint is a challenge template. The two generator fields hold serialized
// function sources authored by trusted operators; they are never exposed in
// API responses and never accepted from end users.
type Blueprint struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Slug              string              `json:"slug"`
	Description       string              `json:"description"`
	Difficulty        BlueprintDifficulty `json:"difficulty"`
	InputGenerator    string              `json:"-"`
	SolutionGenerator string              `json:"-"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	// Challenges carries at most the requesting user's latest challenge when
	// a listing or detail read is annotated.
	Challenges []Challenge `json:"challenges,omitempty"`
}
