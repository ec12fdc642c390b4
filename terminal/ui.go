// Package terminal plays the game in a full-screen terminal UI.
package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/rishugupta23/word-guessing-game/logic"
	"github.com/rishugupta23/word-guessing-game/models"
)

const help = "A-Z guess   1 new game   2 show answer   Esc quit"

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleCorrect = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWrong   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMuted   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// UI renders one engine on a tcell screen and feeds key presses to it.
type UI struct {
	screen   tcell.Screen
	engine   *logic.GameEngine
	feedback models.Feedback
}

// New returns a UI on an initialised screen.
func New(screen tcell.Screen, engine *logic.GameEngine) *UI {
	return &UI{screen: screen, engine: engine}
}

// Action is what a key press asks for.
type Action int

const (
	ActionNone Action = iota
	ActionCommand
	ActionQuit
)

// KeyCommand maps a key press to an engine command.
func KeyCommand(ev *tcell.EventKey) (logic.Command, Action) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return logic.Command{}, ActionQuit
	case tcell.KeyRune:
	default:
		return logic.Command{}, ActionNone
	}

	r := ev.Rune()
	switch {
	case r >= 'a' && r <= 'z':
		return logic.GuessLetter(r - 'a' + 'A'), ActionCommand
	case r >= 'A' && r <= 'Z':
		return logic.GuessLetter(r), ActionCommand
	case r == '1':
		return logic.NewGame(), ActionCommand
	case r == '2':
		return logic.ShowAnswer(), ActionCommand
	}
	return logic.Command{}, ActionNone
}

// Handle applies one key press and reports whether the UI should quit.
// Letters whose key is disabled are ignored, as on the web keyboard.
func (u *UI) Handle(ev *tcell.EventKey) bool {
	cmd, action := KeyCommand(ev)
	switch action {
	case ActionQuit:
		return true
	case ActionNone:
		return false
	}

	if cmd.Kind == logic.CmdGuess && (u.engine.IsTerminal() || u.engine.HasGuessed(cmd.Letter)) {
		return false
	}
	// game errors arrive with their own feedback
	u.feedback, _ = u.engine.Execute(cmd)
	return false
}

// Run starts a round and processes events until quit or ctx is done.
func (u *UI) Run(ctx context.Context) error {
	var err error
	u.feedback, err = u.engine.Execute(logic.NewGame())
	if err != nil {
		return fmt.Errorf("start round: %w", err)
	}
	u.Draw()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			u.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		switch ev := u.screen.PollEvent().(type) {
		case nil, *tcell.EventInterrupt:
			return nil
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if u.Handle(ev) {
				return nil
			}
		}
		u.Draw()
	}
}

// Draw paints the whole game screen.
func (u *UI) Draw() {
	s := u.engine.Snapshot()
	u.screen.Clear()

	drawText(u.screen, 2, 0, styleTitle, "WORD GUESS")
	drawText(u.screen, 2, 2, styleDefault, "Hint: "+s.Hint)

	for i, l := range s.Board {
		if l == "" {
			l = " "
		}
		drawText(u.screen, 2+i*4, 4, styleDefault, "["+l+"]")
	}

	drawText(u.screen, 2, 6, styleDefault, fmt.Sprintf("Attempts left: %d", s.AttemptsLeft))

	correct := letterSet(s.Correct)
	wrong := letterSet(s.Wrong)
	for i := 0; i < 26; i++ {
		l := string(rune('A' + i))
		style := styleDefault
		switch {
		case correct[l]:
			style = styleCorrect
		case wrong[l]:
			style = styleWrong
		case s.Terminal:
			style = styleMuted
		}
		drawText(u.screen, 2+(i%13)*3, 8+i/13, style, l)
	}

	drawText(u.screen, 2, 11, toneStyle(u.feedback.Tone), u.feedback.Message)
	drawText(u.screen, 2, 13, styleMuted, help)
	u.screen.Show()
}

func toneStyle(t models.Tone) tcell.Style {
	switch t {
	case models.ToneSuccess:
		return styleCorrect
	case models.ToneError:
		return styleWrong
	}
	return styleMuted
}

func letterSet(letters []string) map[string]bool {
	m := make(map[string]bool, len(letters))
	for _, l := range letters {
		m[l] = true
	}
	return m
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
