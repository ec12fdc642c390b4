package models

import (
	"fmt"
	"time"
)

// MaxAttempts is the wrong-guess budget of every round.
const MaxAttempts = 6

// WordEntry is one word/hint pair from the fixed word list.
type WordEntry struct {
	Word string `yaml:"word" json:"word"`
	Hint string `yaml:"hint" json:"hint"`
}

// Status is the derived state of a round.
type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

// String returns the display value for the status.
func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "unknown"
}

// MarshalText lets the status travel as its display value in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "in_progress":
		*s = InProgress
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Tone tells the presentation layer how to colour a message.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Feedback is the user-facing message produced by every command.
type Feedback struct {
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// Snapshot is the read model of a round handed to presentation layers.
type Snapshot struct {
	Hint         string   `json:"hint"`
	Length       int      `json:"length"`
	Board        []string `json:"board"` // letter or "" per position
	AttemptsLeft int      `json:"attemptsLeft"`
	MaxAttempts  int      `json:"maxAttempts"`
	Guessed      []string `json:"guessed"`
	Correct      []string `json:"correct"`
	Wrong        []string `json:"wrong"`
	Status       Status   `json:"status"`
	Terminal     bool     `json:"terminal"`
	Forfeited    bool     `json:"forfeited,omitempty"` // ended by show answer
	Word         string   `json:"word,omitempty"`      // only once terminal or revealed
}

// SavedRound is the persisted form of a round.
type SavedRound struct {
	SessionID    string
	Word         string
	Hint         string
	Guessed      string // letters in guess order
	AttemptsLeft int
	Revealed     bool
	Forfeited    bool
	UpdatedAt    time.Time
}
