package models

import "time"

// Challenge is a capital-growth goal bounded by a date window.
type Challenge struct {
	ID              string    `json:"id" yaml:"id" validate:"required"`
	Name            string    `json:"name,omitempty" yaml:"name,omitempty"`
	StartingCapital float64   `json:"startingCapital" yaml:"startingCapital" validate:"gte=0"`
	TargetCapital   float64   `json:"targetCapital" yaml:"targetCapital" validate:"gte=0"`
	StartDate       string    `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	StartTime       string    `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	TargetDate      string    `json:"targetDate,omitempty" yaml:"targetDate,omitempty"`
	Active          bool      `json:"active" yaml:"active"`
	CreatedAt       time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// ChallengeRecord accepts both spellings stores have used for the
// challenge window and folds them into a Challenge.
type ChallengeRecord struct {
	Challenge          `yaml:",inline"`
	ChallengeStartDate string `json:"challengeStartDate,omitempty" yaml:"challengeStartDate,omitempty"`
	ChallengeStartTime string `json:"challengeStartTime,omitempty" yaml:"challengeStartTime,omitempty"`
	ChallengeEndDate   string `json:"challengeEndDate,omitempty" yaml:"challengeEndDate,omitempty"`
}

// Resolve returns the challenge with legacy window fields applied where
// the canonical ones are empty.
func (r ChallengeRecord) Resolve() Challenge {
	c := r.Challenge
	if c.StartDate == "" {
		c.StartDate = r.ChallengeStartDate
	}
	if c.StartTime == "" {
		c.StartTime = r.ChallengeStartTime
	}
	if c.TargetDate == "" {
		c.TargetDate = r.ChallengeEndDate
	}
	return c
}
