package model

import (
	"time"
)

type Rank string

const (
	RankOne   Rank = "one"
	RankTwo   Rank = "two"
	RankThree Rank = "three"
	RankFour  Rank = "four"
	RankFive  Rank = "five"
)

// Countries is the fixed set a profile may belong to. Join rejects anything
// outside it.
var Countries = []string{
	"Australia",
	"Canada",
	"France",
	"Germany",
	"India",
	"Japan",
	"Singapore",
	"UnitedKingdom",
	"UnitedStates",
}

func IsValidCountry(country string) bool {
	for _, c := range Countries {
		if c == country {
			return true
		}
	}
	return false
}

type Profile struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Pseudonym string `json:"pseudonym"`
	Country   string `json:"country"`
	Rank      Rank   `json:"rank"`
}

type User struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"-"` // Not exposed
	Profile        *Profile    `json:"profile,omitempty"`
	Challenges     []Challenge `json:"challenges,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// UserSummary is the listing projection: profile plus how many challenges
// the user has completed.
type UserSummary struct {
	ID                  string   `json:"id"`
	Email               string   `json:"email"`
	Profile             *Profile `json:"profile,omitempty"`
	CompletedChallenges int      `json:"completed_challenges"`
}
