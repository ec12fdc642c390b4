package logic

import (
	"errors"
	"fmt"

	"github.com/rishugupta23/word-guessing-game/models"
)

// CommandKind names the operations a presentation layer can invoke.
type CommandKind int

const (
	CmdNewGame CommandKind = iota
	CmdGuess
	CmdShowAnswer
)

func (k CommandKind) String() string {
	switch k {
	case CmdNewGame:
		return "new_game"
	case CmdGuess:
		return "guess"
	case CmdShowAnswer:
		return "reveal"
	}
	return "unknown"
}

// Command is one user action. Letter is only used by CmdGuess.
type Command struct {
	Kind   CommandKind
	Letter rune
}

func NewGame() Command { return Command{Kind: CmdNewGame} }

func GuessLetter(l rune) Command { return Command{Kind: CmdGuess, Letter: l} }

func ShowAnswer() Command { return Command{Kind: CmdShowAnswer} }

// Execute applies cmd to the engine and returns the message to display.
// Errors are from the game taxonomy and never leave the round inconsistent.
func (g *GameEngine) Execute(cmd Command) (models.Feedback, error) {
	switch cmd.Kind {
	case CmdNewGame:
		g.StartRound()
		return models.Feedback{Message: "Start guessing letters!", Tone: models.ToneNeutral}, nil

	case CmdShowAnswer:
		if !g.Active() {
			return models.Feedback{Message: "Start a new game first.", Tone: models.ToneNeutral}, ErrInvalidState
		}
		g.RevealAnswer()
		g.ForceTerminal()
		return models.Feedback{Message: "Answer revealed: " + g.chosen.Word, Tone: models.ToneError}, nil

	case CmdGuess:
		return g.guessFeedback(cmd.Letter)
	}
	return models.Feedback{}, fmt.Errorf("unknown command %d", cmd.Kind)
}

func (g *GameEngine) guessFeedback(letter rune) (models.Feedback, error) {
	hit, err := g.Guess(letter)
	switch {
	case errors.Is(err, ErrInvalidLetter):
		return models.Feedback{Message: "Please pick a letter from A to Z.", Tone: models.ToneError}, err
	case errors.Is(err, ErrInvalidState):
		return models.Feedback{Message: "The round is over. Start a new game!", Tone: models.ToneNeutral}, err
	case errors.Is(err, ErrAlreadyGuessed):
		return models.Feedback{Message: fmt.Sprintf("You already guessed '%c'.", letter), Tone: models.ToneError}, err
	case err != nil:
		return models.Feedback{}, err
	}

	switch g.Status() {
	case models.Won:
		return models.Feedback{Message: "🎉 You won! The word was " + g.chosen.Word, Tone: models.ToneSuccess}, nil
	case models.Lost:
		return models.Feedback{Message: "💀 You lost! The word was " + g.chosen.Word, Tone: models.ToneError}, nil
	}
	if hit {
		return models.Feedback{Message: fmt.Sprintf("Nice! '%c' is correct.", letter), Tone: models.ToneSuccess}, nil
	}
	return models.Feedback{Message: fmt.Sprintf("Oops! '%c' is not in the word.", letter), Tone: models.ToneError}, nil
}
