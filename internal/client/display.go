package client

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"hangman/internal/network"
)

// Display renders server broadcasts and local notices. It implements
// OutputHandler and is safe for use from the listener and the input loop.
type Display struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	serverColor  *color.Color
	connectColor *color.Color
	gameColor    *color.Color
	guessColor   *color.Color
	winColor     *color.Color
	loseColor    *color.Color
	leaveColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:          out,
		now:          time.Now,
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		guessColor:   color.New(color.FgCyan),
		winColor:     color.New(color.FgGreen, color.Bold, color.BgBlack),
		loseColor:    color.New(color.FgRed, color.Bold, color.BgBlack),
		leaveColor:   color.New(color.FgMagenta),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgWhite),
	}
}

func (d *Display) printf(c *color.Color, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.Fprintf(d.out, format, args...)
}

func (d *Display) timestamp() string {
	return d.now().Format("15:04:05")
}

// PrintBanner displays the game banner
func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║            HANGMAN  CLIENT            ║
║          guess it together            ║
╚═══════════════════════════════════════╝
`
	d.printf(d.gameColor, "%s\n", banner)
}

// PrintHelp lists the commands understood by the input loop
func (d *Display) PrintHelp() {
	d.printf(d.infoColor, `Commands:
  user <name>           announce your name
  guess <letter|word>   guess a letter or the whole word
  help                  show this help
  quit                  leave the game
`)
}

// PrintError displays error messages
func (d *Display) PrintError(message string) {
	d.printf(d.loseColor, "[ERROR] %s\n", message)
}

// PrintWarning displays warning messages
func (d *Display) PrintWarning(message string) {
	d.printf(d.warningColor, "[WARNING] %s\n", message)
}

// PrintInfo displays informational messages
func (d *Display) PrintInfo(message string) {
	d.printf(d.infoColor, "[INFO] %s\n", message)
}

// OnConnected reports an established connection
func (d *Display) OnConnected(addr string) {
	d.printf(d.serverColor, "[%s] [SERVER] Connected to %s\n", d.timestamp(), addr)
}

// OnConnectionLost reports a connection that ended without a local disconnect
func (d *Display) OnConnectionLost(err error) {
	d.printf(d.loseColor, "[%s] [SERVER] Lost connection to server: %v\n", d.timestamp(), err)
}

// OnMessage renders one raw server line. Frames that are not broadcasts are
// shown verbatim.
func (d *Display) OnMessage(raw string) {
	msg, err := network.Decode(raw)
	if err != nil {
		d.PrintWarning(fmt.Sprintf("Unreadable message: %s", raw))
		return
	}
	event, ok := network.Unwrap(msg)
	if !ok {
		d.printf(d.serverColor, "[%s] [SERVER] %s\n", d.timestamp(), raw)
		return
	}

	ts := d.timestamp()
	field := func(i int) string {
		v, _ := event.Field(i)
		return v
	}

	switch event.Type() {
	case network.MsgNewGame:
		d.printf(d.gameColor, "[%s] [NEW GAME] Word: %s (%s guesses left)\n",
			ts, spaced(field(0)), field(1))
	case network.MsgUser:
		d.printf(d.connectColor, "[%s] [JOIN] %s joined the game, welcome!\n", ts, field(0))
	case network.MsgGuess:
		d.printf(d.guessColor, "[%s] [GUESS] %s guessed %q: %s (%s guesses left)\n",
			ts, field(0), field(1), spaced(field(2)), field(3))
	case network.MsgEndGame:
		d.printEndGame(ts, field)
	case network.MsgDisconnect:
		d.printf(d.leaveColor, "[%s] [LEAVE] %s left the game :( .\n", ts, field(0))
	default:
		d.printf(d.serverColor, "[%s] [SERVER] %s\n", ts, raw)
	}
}

func (d *Display) printEndGame(ts string, field func(int) string) {
	user, mask, score, outcome, word := field(0), field(2), field(4), field(5), field(6)
	if outcome == network.OutcomeWin {
		d.printf(d.winColor, "[%s] [GAME OVER] %s solved %s! The word is %s. Score: %s\n",
			ts, user, spaced(mask), word, score)
		return
	}
	d.printf(d.loseColor, "[%s] [GAME OVER] Out of guesses. The word is %s. Score: %s\n",
		ts, word, score)
}

// spaced renders a mask with a space between letters
func spaced(mask string) string {
	return strings.Join(strings.Split(mask, ""), " ")
}
