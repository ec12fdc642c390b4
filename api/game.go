package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rishugupta23/word-guessing-game/logger"
	"github.com/rishugupta23/word-guessing-game/logic"
	"github.com/rishugupta23/word-guessing-game/models"
	"github.com/rishugupta23/word-guessing-game/telemetry"
	"github.com/rishugupta23/word-guessing-game/utils"
)

const sessionCookie = "wordguess_session"

// Handler serves the web binding of the game.
type Handler struct {
	sessions *Sessions
	hub      *hub
	tracer   trace.Tracer
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{
		sessions: sessions,
		hub:      newHub(),
		tracer:   telemetry.Tracer(),
	}
}

// Response is the JSON body of every command endpoint.
type Response struct {
	Feedback *models.Feedback `json:"feedback,omitempty"`
	State    models.Snapshot  `json:"state"`
}

// Key is one button of the on-screen keyboard.
type Key struct {
	Letter   string
	Class    string
	Disabled bool
}

// Helper: Retrieve the session of the request, issuing a new cookie when the
// browser has none or an invalid one.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil && utils.ValidID(c.Value) {
		id = c.Value
	} else {
		id = utils.GenerateID()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.sessions.Get(r.Context(), id)
}

// run executes cmd for sess inside a trace span and pushes the new state to
// the session's other sockets.
func (h *Handler) run(ctx context.Context, sess *Session, cmd logic.Command, from *client) (models.Feedback, models.Snapshot, error) {
	ctx, span := h.tracer.Start(ctx, "wordguess.command", trace.WithAttributes(
		attribute.String("command", cmd.Kind.String()),
	))
	defer span.End()

	fb, state, err := h.sessions.Do(ctx, sess, cmd)
	span.SetAttributes(
		attribute.String("status", state.Status.String()),
		attribute.Int("attempts_left", state.AttemptsLeft),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fb, state, err
	}

	h.hub.broadcast(sess.ID, WSMessage{Action: "state", State: &state}, from)
	return fb, state, nil
}

// statusFor maps game errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, logic.ErrInvalidLetter):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrAlreadyGuessed), errors.Is(err, logic.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response: %v", err)
	}
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request, cmd logic.Command) {
	sess := h.session(w, r)
	fb, state, err := h.run(r.Context(), sess, cmd, nil)
	writeJSON(w, statusFor(err), Response{Feedback: &fb, State: state})
}

// parseLetter normalises user input to one uppercase rune. Anything that is
// not exactly one character is reported as not ok.
func parseLetter(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	l, _ := utf8.DecodeRuneInString(s)
	return unicode.ToUpper(l), true
}

// StateHandler returns the current round of the session.
func (h *Handler) StateHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, Response{State: h.sessions.View(sess)})
}

// NewGameHandler starts a new round.
func (h *Handler) NewGameHandler(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, logic.NewGame())
}

// GuessHandler submits one letter: {"letter":"A"}.
func (h *Handler) GuessHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	// out-of-range runes still reach the engine, which reports ErrInvalidLetter
	letter, ok := parseLetter(body.Letter)
	if !ok {
		letter = utf8.RuneError
	}
	h.command(w, r, logic.GuessLetter(letter))
}

// RevealHandler shows the answer and ends the round.
func (h *Handler) RevealHandler(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, logic.ShowAnswer())
}

// GameplayHandler renders the game page.
func (h *Handler) GameplayHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	state := h.sessions.View(sess)

	utils.RenderPage(w, "game.html", map[string]interface{}{
		"State":    state,
		"Feedback": pageFeedback(state),
		"Keys":     buildKeys(state),
	})
}

// pageFeedback picks the message shown when a page is (re)loaded.
func pageFeedback(s models.Snapshot) models.Feedback {
	switch s.Status {
	case models.Won:
		return models.Feedback{Message: "🎉 You won! The word was " + s.Word, Tone: models.ToneSuccess}
	case models.Lost:
		if s.Forfeited {
			return models.Feedback{Message: "Answer revealed: " + s.Word, Tone: models.ToneError}
		}
		return models.Feedback{Message: "💀 You lost! The word was " + s.Word, Tone: models.ToneError}
	}
	return models.Feedback{Message: "Start guessing letters!", Tone: models.ToneNeutral}
}

// buildKeys lays out the 26-letter keyboard, disabling guessed letters and
// every key once the round is over.
func buildKeys(s models.Snapshot) []Key {
	correct := make(map[string]bool, len(s.Correct))
	for _, l := range s.Correct {
		correct[l] = true
	}
	wrong := make(map[string]bool, len(s.Wrong))
	for _, l := range s.Wrong {
		wrong[l] = true
	}

	keys := make([]Key, 0, 26)
	for l := 'A'; l <= 'Z'; l++ {
		k := Key{Letter: string(l), Disabled: s.Terminal}
		switch {
		case correct[k.Letter]:
			k.Class, k.Disabled = "disabled correct", true
		case wrong[k.Letter]:
			k.Class, k.Disabled = "disabled wrong", true
		}
		keys = append(keys, k)
	}
	return keys
}
