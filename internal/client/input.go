package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// CommandKind selects what a line typed by the player does
type CommandKind int

const (
	CmdUser CommandKind = iota
	CmdGuess
	CmdHelp
	CmdQuit
)

const maxUsernameLength = 20

var (
	// ErrUnknownCommand is returned for a verb the client does not know
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgument is returned for a missing or unusable argument
	ErrInvalidArgument = errors.New("invalid argument")
)

// Command is one parsed line of player input
type Command struct {
	Kind CommandKind
	Arg  string
}

// ParseCommand parses "user <name>", "guess <letter|word>", "help" or "quit"
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "exit":
		return Command{Kind: CmdQuit}, nil
	case "user", "name":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: usage: user <name>", ErrInvalidArgument)
		}
		if err := validateUsername(args[0]); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdUser, Arg: args[0]}, nil
	case "guess", "g":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: usage: guess <letter|word>", ErrInvalidArgument)
		}
		if err := validateGuess(args[0]); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdGuess, Arg: strings.ToLower(args[0])}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}
}

// validateUsername checks the name fits on the wire and on screen
func validateUsername(name string) error {
	if len(name) > maxUsernameLength {
		return fmt.Errorf("%w: username must be no more than %d characters long", ErrInvalidArgument, maxUsernameLength)
	}
	if !isValidUsername(name) {
		return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", ErrInvalidArgument)
	}
	return nil
}

// isValidUsername checks if username contains only valid characters
func isValidUsername(username string) bool {
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}
	return true
}

func validateGuess(guess string) error {
	for _, r := range guess {
		if !unicode.IsLetter(r) {
			return fmt.Errorf("%w: guess must be letters only", ErrInvalidArgument)
		}
	}
	return nil
}

// InputHandler reads player commands line by line
type InputHandler struct {
	scanner *bufio.Scanner
	display *Display
	prompt  io.Writer
}

// NewInputHandler creates an input handler reading from in and writing
// prompts to prompt
func NewInputHandler(in io.Reader, prompt io.Writer, display *Display) *InputHandler {
	return &InputHandler{
		scanner: bufio.NewScanner(in),
		display: display,
		prompt:  prompt,
	}
}

// ReadCommand prompts until a valid command is entered. It returns io.EOF
// when input ends.
func (ih *InputHandler) ReadCommand() (Command, error) {
	for {
		fmt.Fprint(ih.prompt, "> ")

		if !ih.scanner.Scan() {
			if err := ih.scanner.Err(); err != nil {
				return Command{}, err
			}
			return Command{}, io.EOF
		}

		line := strings.TrimSpace(ih.scanner.Text())
		if line == "" {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			ih.display.PrintWarning(err.Error())
			continue
		}
		return cmd, nil
	}
}
