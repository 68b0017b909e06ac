package client

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestDisplay(t *testing.T) (*Display, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	d := NewDisplay(&buf)
	d.now = func() time.Time { return time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC) }
	return d, &buf
}

func TestDisplay_OnMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "new game",
			raw:  "BROADCAST##NEWGAME##_____##5",
			want: "[12:30:00] [NEW GAME] Word: _ _ _ _ _ (5 guesses left)\n",
		},
		{
			name: "user joined",
			raw:  "BROADCAST##USER##alice",
			want: "[12:30:00] [JOIN] alice joined the game, welcome!\n",
		},
		{
			name: "guess",
			raw:  "BROADCAST##GUESS##alice##e##_e___##5",
			want: "[12:30:00] [GUESS] alice guessed \"e\": _ e _ _ _ (5 guesses left)\n",
		},
		{
			name: "win",
			raw:  "BROADCAST##ENDGAME##bob##o##go##2##1##win##go",
			want: "[12:30:00] [GAME OVER] bob solved g o! The word is go. Score: 1\n",
		},
		{
			name: "lose",
			raw:  "BROADCAST##ENDGAME##bob##y##__##0##-1##lose##go",
			want: "[12:30:00] [GAME OVER] Out of guesses. The word is go. Score: -1\n",
		},
		{
			name: "player left",
			raw:  "BROADCAST##DISCONNECT##alice",
			want: "[12:30:00] [LEAVE] alice left the game :( .\n",
		},
		{
			name: "frame outside a broadcast is shown verbatim",
			raw:  "USER##carol",
			want: "[12:30:00] [SERVER] USER##carol\n",
		},
		{
			name: "unknown tag",
			raw:  "HELLO##there",
			want: "[WARNING] Unreadable message: HELLO##there\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf := newTestDisplay(t)
			d.OnMessage(tt.raw)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestDisplay_ConnectionNotices(t *testing.T) {
	d, buf := newTestDisplay(t)

	d.OnConnected("127.0.0.1:8080")
	d.OnConnectionLost(errors.New("EOF"))

	assert.Equal(t,
		"[12:30:00] [SERVER] Connected to 127.0.0.1:8080\n"+
			"[12:30:00] [SERVER] Lost connection to server: EOF\n",
		buf.String())
}

func TestDisplay_PrintHelpListsCommands(t *testing.T) {
	d, buf := newTestDisplay(t)
	d.PrintHelp()

	for _, cmd := range []string{"user <name>", "guess <letter|word>", "help", "quit"} {
		assert.Contains(t, buf.String(), cmd)
	}
}
