package words

import (
	crand "crypto/rand"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rishugupta23/word-guessing-game/models"
)

//go:embed words.yaml
var wordBank []byte

var (
	loadOnce sync.Once
	wordList []models.WordEntry
	loadErr  error
)

// Parse decodes and validates a YAML word list.
func Parse(data []byte) ([]models.WordEntry, error) {
	var entries []models.WordEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("word list is empty")
	}
	for i, e := range entries {
		if !ValidWord(e.Word) {
			return nil, fmt.Errorf("entry %d: word %q must be uppercase A-Z", i, e.Word)
		}
		if strings.TrimSpace(e.Hint) == "" {
			return nil, fmt.Errorf("entry %d: word %q has no hint", i, e.Word)
		}
	}
	return entries, nil
}

// ValidWord reports whether w is a non-empty run of uppercase A-Z.
func ValidWord(w string) bool {
	if w == "" {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}

// Load returns the built-in word list. The result must not be modified.
func Load() ([]models.WordEntry, error) {
	loadOnce.Do(func() {
		wordList, loadErr = Parse(wordBank)
	})
	return wordList, loadErr
}

// Source chooses the word of a new round.
type Source interface {
	Pick() models.WordEntry
}

// Picker draws entries uniformly at random. It is safe for concurrent use.
type Picker struct {
	entries []models.WordEntry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a picker over entries using rng. A nil rng is seeded
// from crypto/rand.
func NewPicker(entries []models.WordEntry, rng *rand.Rand) (*Picker, error) {
	if len(entries) == 0 {
		return nil, errors.New("picker needs at least one entry")
	}
	if rng == nil {
		seed, err := newSeed()
		if err != nil {
			return nil, err
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Picker{entries: entries, rng: rng}, nil
}

// NewDefaultPicker returns a randomly seeded picker over the built-in list.
func NewDefaultPicker() (*Picker, error) {
	entries, err := Load()
	if err != nil {
		return nil, err
	}
	return NewPicker(entries, nil)
}

func (p *Picker) Pick() models.WordEntry {
	p.mu.Lock()
	i := p.rng.Intn(len(p.entries))
	p.mu.Unlock()
	return p.entries[i]
}

// Fixed always returns the same entry.
type Fixed models.WordEntry

func (f Fixed) Pick() models.WordEntry { return models.WordEntry(f) }

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
