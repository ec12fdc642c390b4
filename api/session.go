package handlers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rishugupta23/word-guessing-game/db"
	"github.com/rishugupta23/word-guessing-game/logger"
	"github.com/rishugupta23/word-guessing-game/logic"
	"github.com/rishugupta23/word-guessing-game/models"
	"github.com/rishugupta23/word-guessing-game/words"
)

// RoundStore persists session rounds. *db.Store implements it.
type RoundStore interface {
	SaveRound(ctx context.Context, r models.SavedRound) error
	LoadRound(ctx context.Context, sessionID string) (models.SavedRound, error)
	PruneBefore(ctx context.Context, t time.Time) (int64, error)
}

// Session is one browser's game. Its mutex serializes commands the way a
// browser event loop would.
type Session struct {
	ID string

	lastSeen atomic.Int64 // unix nanoseconds

	mu      sync.Mutex
	engine  *logic.GameEngine
	savedAt time.Time
}

// Sessions keeps the live sessions and loads missing ones from the store.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]*Session
	store  RoundStore
	source words.Source
	now    func() time.Time
}

// NewSessions returns a registry drawing words from source. store may be nil,
// in which case rounds only live in memory.
func NewSessions(source words.Source, store RoundStore) *Sessions {
	return &Sessions{
		byID:   make(map[string]*Session),
		store:  store,
		source: source,
		now:    time.Now,
	}
}

// Get returns the session for id, restoring its saved round or starting a
// fresh one. The store is never accessed with the registry locked.
func (s *Sessions) Get(ctx context.Context, id string) *Session {
	if sess := s.lookup(id); sess != nil {
		return sess
	}

	engine := s.restore(ctx, id)
	fresh := engine == nil
	if fresh {
		engine = s.newEngine(id)
		engine.StartRound()
	}

	s.mu.Lock()
	if sess, ok := s.byID[id]; ok {
		// another request got here first
		s.mu.Unlock()
		s.touch(sess)
		return sess
	}
	sess := &Session{ID: id, engine: engine}
	s.touch(sess)
	s.byID[id] = sess
	s.mu.Unlock()

	if fresh {
		sess.mu.Lock()
		s.save(ctx, sess)
		sess.mu.Unlock()
	}
	return sess
}

func (s *Sessions) lookup(id string) *Session {
	s.mu.Lock()
	sess := s.byID[id]
	s.mu.Unlock()
	if sess != nil {
		s.touch(sess)
	}
	return sess
}

// touch marks the session as in use.
func (s *Sessions) touch(sess *Session) {
	sess.lastSeen.Store(s.now().UnixNano())
}

func (s *Sessions) newEngine(id string) *logic.GameEngine {
	return logRounds(id, logic.NewGameEngine(s.source))
}

func logRounds(id string, g *logic.GameEngine) *logic.GameEngine {
	g.OnRoundStart(func(hint string, length int) {
		logger.Info("round started session=%s length=%d hint=%q", id, length, hint)
	})
	return g
}

func (s *Sessions) restore(ctx context.Context, id string) *logic.GameEngine {
	if s.store == nil {
		return nil
	}
	saved, err := s.store.LoadRound(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Error("load session %s: %v", id, err)
		return nil
	}
	g, err := logic.Restore(s.source, saved)
	if err != nil {
		logger.Error("discarding saved round: %v", err)
		return nil
	}
	return logRounds(id, g)
}

// Do runs cmd on the session's engine and saves the result. A failed save is
// logged; the in-memory round stays authoritative.
func (s *Sessions) Do(ctx context.Context, sess *Session, cmd logic.Command) (models.Feedback, models.Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.touch(sess)
	fb, err := sess.engine.Execute(cmd)
	if err == nil {
		s.save(ctx, sess)
	}
	return fb, sess.engine.Snapshot(), err
}

// View returns the current snapshot of the session.
func (s *Sessions) View(sess *Session) models.Snapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.touch(sess)
	return sess.engine.Snapshot()
}

func (s *Sessions) save(ctx context.Context, sess *Session) {
	if s.store == nil {
		return
	}
	r := sess.engine.Save(sess.ID)
	r.UpdatedAt = s.now()
	if err := s.store.SaveRound(ctx, r); err != nil {
		logger.Error("save session %s: %v", sess.ID, err)
		return
	}
	sess.savedAt = r.UpdatedAt
}

// Prune drops sessions idle for longer than ttl from memory and the store.
// Live sessions whose stored round is older than ttl are saved again first so
// the store keeps them.
func (s *Sessions) Prune(ctx context.Context, ttl time.Duration) {
	cutoff := s.now().Add(-ttl)

	var live []*Session
	s.mu.Lock()
	for id, sess := range s.byID {
		if time.Unix(0, sess.lastSeen.Load()).Before(cutoff) {
			delete(s.byID, id)
			continue
		}
		live = append(live, sess)
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	for _, sess := range live {
		sess.mu.Lock()
		if sess.savedAt.Before(cutoff) {
			s.save(ctx, sess)
		}
		sess.mu.Unlock()
	}

	n, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		logger.Error("prune rounds: %v", err)
		return
	}
	if n > 0 {
		logger.Info("pruned %d stale rounds", n)
	}
}

// RunPruner calls Prune every interval until ctx is done.
func (s *Sessions) RunPruner(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(ctx, ttl)
		}
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
