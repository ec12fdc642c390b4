package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishugupta23/word-guessing-game/models"
)

func TestExecuteFeedback(t *testing.T) {
	g := NewGameEngine(mango)

	fb, err := g.Execute(NewGame())
	require.NoError(t, err)
	assert.Equal(t, models.Feedback{Message: "Start guessing letters!", Tone: models.ToneNeutral}, fb)

	fb, err = g.Execute(GuessLetter('M'))
	require.NoError(t, err)
	assert.Equal(t, models.Feedback{Message: "Nice! 'M' is correct.", Tone: models.ToneSuccess}, fb)

	fb, err = g.Execute(GuessLetter('Q'))
	require.NoError(t, err)
	assert.Equal(t, models.Feedback{Message: "Oops! 'Q' is not in the word.", Tone: models.ToneError}, fb)

	fb, err = g.Execute(GuessLetter('Q'))
	assert.ErrorIs(t, err, ErrAlreadyGuessed)
	assert.Equal(t, models.Feedback{Message: "You already guessed 'Q'.", Tone: models.ToneError}, fb)

	fb, err = g.Execute(GuessLetter('?'))
	assert.ErrorIs(t, err, ErrInvalidLetter)
	assert.Equal(t, models.ToneError, fb.Tone)

	for _, l := range "ANG" {
		_, err := g.Execute(GuessLetter(l))
		require.NoError(t, err)
	}
	fb, err = g.Execute(GuessLetter('O'))
	require.NoError(t, err)
	assert.Equal(t, models.Feedback{Message: "🎉 You won! The word was MANGO", Tone: models.ToneSuccess}, fb)

	fb, err = g.Execute(GuessLetter('Z'))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "The round is over. Start a new game!", fb.Message)
}

func TestExecuteLoss(t *testing.T) {
	g := NewGameEngine(mango)
	_, _ = g.Execute(NewGame())

	var fb models.Feedback
	for _, l := range "QWXZJK" {
		var err error
		fb, err = g.Execute(GuessLetter(l))
		require.NoError(t, err)
	}
	assert.Equal(t, models.Feedback{Message: "💀 You lost! The word was MANGO", Tone: models.ToneError}, fb)
}

func TestExecuteShowAnswer(t *testing.T) {
	g := NewGameEngine(mango)

	_, err := g.Execute(ShowAnswer())
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _ = g.Execute(NewGame())
	fb, err := g.Execute(ShowAnswer())
	require.NoError(t, err)
	assert.Equal(t, models.Feedback{Message: "Answer revealed: MANGO", Tone: models.ToneError}, fb)
	assert.True(t, g.IsTerminal())
	assert.Equal(t, []string{"M", "A", "N", "G", "O"}, g.Snapshot().Board)

	_, err = g.Execute(GuessLetter('M'))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = g.Execute(NewGame())
	require.NoError(t, err)
	assert.False(t, g.IsTerminal())
}

func TestExecuteUnknownCommand(t *testing.T) {
	g := NewGameEngine(mango)
	_, err := g.Execute(Command{Kind: CommandKind(42)})
	assert.Error(t, err)
}
