package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishugupta23/word-guessing-game/db"
	"github.com/rishugupta23/word-guessing-game/models"
	"github.com/rishugupta23/word-guessing-game/words"
)

var mango = words.Fixed(models.WordEntry{Word: "MANGO", Hint: "A tropical fruit"})

func openStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "rounds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestServer(t *testing.T, store RoundStore) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(NewSessions(mango, store))))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url, body string) (int, Response) {
	t.Helper()
	resp, err := c.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func guess(t *testing.T, srv *httptest.Server, c *http.Client, letter string) (int, Response) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"letter": letter})
	require.NoError(t, err)
	return postJSON(t, c, srv.URL+"/api/guess", string(body))
}

func TestStateStartsRoundAndSetsCookie(t *testing.T) {
	srv, c := newTestServer(t, openStore(t))

	resp, err := c.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			found = true
			assert.True(t, ck.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie not set")

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Nil(t, out.Feedback)
	assert.Equal(t, "A tropical fruit", out.State.Hint)
	assert.Equal(t, 5, out.State.Length)
	assert.Equal(t, models.MaxAttempts, out.State.AttemptsLeft)
	assert.Equal(t, models.InProgress, out.State.Status)
	assert.Empty(t, out.State.Word)
}

func TestGuessEndpoint(t *testing.T) {
	srv, c := newTestServer(t, nil)

	code, out := guess(t, srv, c, "m")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Nice! 'M' is correct.", out.Feedback.Message)
	assert.Equal(t, []string{"M", "", "", "", ""}, out.State.Board)

	code, out = guess(t, srv, c, "Q")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ToneError, out.Feedback.Tone)
	assert.Equal(t, 5, out.State.AttemptsLeft)

	code, out = guess(t, srv, c, "Q")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "You already guessed 'Q'.", out.Feedback.Message)
	assert.Equal(t, 5, out.State.AttemptsLeft)

	for _, bad := range []string{"1", "", "AB", "é"} {
		code, out = guess(t, srv, c, bad)
		assert.Equal(t, http.StatusBadRequest, code, bad)
		assert.Equal(t, 5, out.State.AttemptsLeft)
	}

	code, _ = postJSON(t, c, srv.URL+"/api/guess", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWinThroughAPI(t *testing.T) {
	srv, c := newTestServer(t, nil)

	var out Response
	for _, l := range []string{"M", "A", "N", "G", "O"} {
		var code int
		code, out = guess(t, srv, c, l)
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, "🎉 You won! The word was MANGO", out.Feedback.Message)
	assert.Equal(t, models.Won, out.State.Status)
	assert.True(t, out.State.Terminal)
	assert.Equal(t, models.MaxAttempts, out.State.AttemptsLeft)

	code, out := guess(t, srv, c, "Z")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "The round is over. Start a new game!", out.Feedback.Message)
}

func TestRevealAndNewGame(t *testing.T) {
	srv, c := newTestServer(t, nil)

	code, out := postJSON(t, c, srv.URL+"/api/reveal", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Answer revealed: MANGO", out.Feedback.Message)
	assert.Equal(t, models.Lost, out.State.Status)
	assert.Equal(t, "MANGO", out.State.Word)
	assert.Equal(t, []string{"M", "A", "N", "G", "O"}, out.State.Board)

	code, _ = guess(t, srv, c, "M")
	assert.Equal(t, http.StatusConflict, code)

	code, out = postJSON(t, c, srv.URL+"/api/new", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Start guessing letters!", out.Feedback.Message)
	assert.Equal(t, models.InProgress, out.State.Status)
	assert.Empty(t, out.State.Guessed)
	assert.Equal(t, models.MaxAttempts, out.State.AttemptsLeft)
}

func TestGameplayPage(t *testing.T) {
	srv, c := newTestServer(t, nil)

	_, _ = guess(t, srv, c, "Q")
	_, _ = guess(t, srv, c, "M")

	resp, err := c.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "A tropical fruit")
	assert.Equal(t, 26, strings.Count(body, `<button class="key`))
	assert.Contains(t, body, `class="key disabled wrong" data-letter="Q" disabled`)
	assert.Contains(t, body, `class="key disabled correct" data-letter="M" disabled`)
	assert.Contains(t, body, `class="key " data-letter="A">`)
	assert.Contains(t, body, `<span id="attempts">5</span>`)
}

func TestHealthAndStatic(t *testing.T) {
	srv, c := newTestServer(t, nil)

	resp, err := c.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = c.Get(srv.URL + "/static/game.js")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.Contains(body, []byte("new WebSocket")))
}

func TestSeparateBrowsersGetSeparateRounds(t *testing.T) {
	srv, first := newTestServer(t, nil)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	second := &http.Client{Jar: jar}

	_, _ = guess(t, srv, first, "Q")
	code, out := guess(t, srv, second, "Q")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, out.State.AttemptsLeft)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(nil))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
}

func TestBuildKeysDisablesAllWhenTerminal(t *testing.T) {
	keys := buildKeys(models.Snapshot{Terminal: true, Correct: []string{"M"}})
	require.Len(t, keys, 26)
	for _, k := range keys {
		assert.True(t, k.Disabled, k.Letter)
	}
	assert.Equal(t, "disabled correct", keys['M'-'A'].Class)
	assert.Empty(t, keys[0].Class)
}

func TestPageFeedback(t *testing.T) {
	tests := []struct {
		name  string
		state models.Snapshot
		want  models.Feedback
	}{
		{
			name:  "in progress",
			state: models.Snapshot{Status: models.InProgress},
			want:  models.Feedback{Message: "Start guessing letters!", Tone: models.ToneNeutral},
		},
		{
			name:  "won",
			state: models.Snapshot{Status: models.Won, Word: "MANGO"},
			want:  models.Feedback{Message: "🎉 You won! The word was MANGO", Tone: models.ToneSuccess},
		},
		{
			name:  "out of attempts",
			state: models.Snapshot{Status: models.Lost, Word: "MANGO"},
			want:  models.Feedback{Message: "💀 You lost! The word was MANGO", Tone: models.ToneError},
		},
		{
			name:  "answer shown",
			state: models.Snapshot{Status: models.Lost, Forfeited: true, Word: "MANGO"},
			want:  models.Feedback{Message: "Answer revealed: MANGO", Tone: models.ToneError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageFeedback(tt.state))
		})
	}
}

func TestGameplayPageAfterReveal(t *testing.T) {
	srv, c := newTestServer(t, nil)
	code, out := postJSON(t, c, srv.URL+"/api/reveal", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, out.State.Forfeited)

	resp, err := c.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Answer revealed: MANGO")
}
