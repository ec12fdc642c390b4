package logic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rishugupta23/word-guessing-game/models"
	"github.com/rishugupta23/word-guessing-game/words"
)

var (
	ErrAlreadyGuessed = errors.New("letter already guessed")
	ErrInvalidState   = errors.New("round is not in progress")
	ErrInvalidLetter  = errors.New("guess must be a single letter A-Z")
)

// GameEngine owns the state of one round at a time. It is not safe for
// concurrent use; callers serialize commands.
type GameEngine struct {
	source words.Source

	chosen       models.WordEntry
	attemptsLeft int
	guessed      map[byte]bool
	order        []byte
	correct      map[byte]bool
	revealed     bool
	forfeited    bool

	onRoundStart func(hint string, length int)
}

// NewGameEngine returns an engine drawing words from source. No round is
// active until StartRound is called.
func NewGameEngine(source words.Source) *GameEngine {
	return &GameEngine{
		source:  source,
		guessed: make(map[byte]bool),
		correct: make(map[byte]bool),
	}
}

// OnRoundStart registers fn to receive the hint and word length of every new round.
func (g *GameEngine) OnRoundStart(fn func(hint string, length int)) {
	g.onRoundStart = fn
}

// StartRound discards the current round and begins a new one.
func (g *GameEngine) StartRound() {
	g.begin(g.source.Pick())
	if g.onRoundStart != nil {
		g.onRoundStart(g.chosen.Hint, len(g.chosen.Word))
	}
}

func (g *GameEngine) begin(entry models.WordEntry) {
	g.chosen = entry
	g.attemptsLeft = models.MaxAttempts
	g.guessed = make(map[byte]bool)
	g.order = g.order[:0]
	g.correct = make(map[byte]bool)
	g.revealed = false
	g.forfeited = false
}

// Guess submits one letter and reports whether it occurs in the word.
func (g *GameEngine) Guess(letter rune) (bool, error) {
	if letter < 'A' || letter > 'Z' {
		return false, ErrInvalidLetter
	}
	if !g.Active() || g.IsTerminal() {
		return false, ErrInvalidState
	}
	l := byte(letter)
	if g.guessed[l] {
		return false, ErrAlreadyGuessed
	}

	g.guessed[l] = true
	g.order = append(g.order, l)

	hit := strings.IndexByte(g.chosen.Word, l) >= 0
	if hit {
		g.correct[l] = true
	} else if g.attemptsLeft > 0 {
		g.attemptsLeft--
	}

	if g.Status() == models.Lost {
		g.revealed = true
	}
	return hit, nil
}

// RevealAnswer makes every letter of the word visible. It does not end the
// round; callers that give up follow it with ForceTerminal.
func (g *GameEngine) RevealAnswer() {
	if g.Active() {
		g.revealed = true
	}
}

// ForceTerminal ends an in-progress round as lost.
func (g *GameEngine) ForceTerminal() {
	if g.Active() && !g.IsTerminal() {
		g.forfeited = true
	}
}

// Status derives the round status from the letter sets and attempts.
func (g *GameEngine) Status() models.Status {
	if g.Active() && g.complete() {
		return models.Won
	}
	if g.Active() && (g.attemptsLeft == 0 || g.forfeited) {
		return models.Lost
	}
	return models.InProgress
}

// IsTerminal reports whether the round is won or lost.
func (g *GameEngine) IsTerminal() bool {
	s := g.Status()
	return s == models.Won || s == models.Lost
}

// Active reports whether a round has been started.
func (g *GameEngine) Active() bool {
	return g.chosen.Word != ""
}

func (g *GameEngine) complete() bool {
	for i := 0; i < len(g.chosen.Word); i++ {
		if !g.correct[g.chosen.Word[i]] {
			return false
		}
	}
	return true
}

func (g *GameEngine) Word() models.WordEntry { return g.chosen }

func (g *GameEngine) AttemptsLeft() int { return g.attemptsLeft }

func (g *GameEngine) Revealed() bool { return g.revealed }

// GuessedLetters returns the letters submitted this round, sorted.
func (g *GameEngine) GuessedLetters() []string { return sortedLetters(g.guessed) }

// CorrectLetters returns the guessed letters that occur in the word, sorted.
func (g *GameEngine) CorrectLetters() []string { return sortedLetters(g.correct) }

// HasGuessed reports whether letter was already submitted this round.
func (g *GameEngine) HasGuessed(letter rune) bool {
	if letter < 'A' || letter > 'Z' {
		return false
	}
	return g.guessed[byte(letter)]
}

// Snapshot returns the read model of the current round.
func (g *GameEngine) Snapshot() models.Snapshot {
	word := g.chosen.Word
	board := make([]string, len(word))
	for i := 0; i < len(word); i++ {
		if g.revealed || g.correct[word[i]] {
			board[i] = string(word[i])
		}
	}

	wrong := make(map[byte]bool)
	for l := range g.guessed {
		if !g.correct[l] {
			wrong[l] = true
		}
	}

	s := models.Snapshot{
		Hint:         g.chosen.Hint,
		Length:       len(word),
		Board:        board,
		AttemptsLeft: g.attemptsLeft,
		MaxAttempts:  models.MaxAttempts,
		Guessed:      sortedLetters(g.guessed),
		Correct:      sortedLetters(g.correct),
		Wrong:        sortedLetters(wrong),
		Status:       g.Status(),
		Terminal:     g.IsTerminal(),
		Forfeited:    g.forfeited,
	}
	if s.Terminal || g.revealed {
		s.Word = word
	}
	return s
}

// Save returns the persisted form of the current round.
func (g *GameEngine) Save(sessionID string) models.SavedRound {
	return models.SavedRound{
		SessionID:    sessionID,
		Word:         g.chosen.Word,
		Hint:         g.chosen.Hint,
		Guessed:      string(g.order),
		AttemptsLeft: g.attemptsLeft,
		Revealed:     g.revealed,
		Forfeited:    g.forfeited,
	}
}

// Restore rebuilds an engine from a saved round by replaying its guesses.
func Restore(source words.Source, r models.SavedRound) (*GameEngine, error) {
	if !words.ValidWord(r.Word) {
		return nil, fmt.Errorf("restore round %s: invalid word %q", r.SessionID, r.Word)
	}
	g := NewGameEngine(source)
	g.begin(models.WordEntry{Word: r.Word, Hint: r.Hint})
	for _, l := range r.Guessed {
		if _, err := g.Guess(l); err != nil {
			return nil, fmt.Errorf("restore round %s: replay %q: %w", r.SessionID, l, err)
		}
	}
	if g.attemptsLeft != r.AttemptsLeft {
		return nil, fmt.Errorf("restore round %s: attempts %d do not match replayed %d",
			r.SessionID, r.AttemptsLeft, g.attemptsLeft)
	}
	if r.Revealed {
		g.revealed = true
	}
	if r.Forfeited {
		g.ForceTerminal()
	}
	return g, nil
}

// Convert a letter set to a sorted slice of one-letter strings
func sortedLetters(m map[byte]bool) []string {
	letters := make([]string, 0, len(m))
	for l := range m {
		letters = append(letters, string(l))
	}
	sort.Strings(letters)
	return letters
}
