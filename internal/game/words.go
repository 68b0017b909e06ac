// Package game implements the hangman round state and its word list
package game

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"
)

// ErrNoWords is returned when a word file yields no usable word
var ErrNoWords = errors.New("no usable words")

var defaultWords = []string{
	"apple", "banana", "network", "socket", "goroutine", "channel",
	"hangman", "protocol", "server", "client", "broadcast", "session",
	"keyboard", "mountain", "library", "elephant", "umbrella", "galaxy",
}

// WordList is an immutable set of candidate secret words
type WordList struct {
	words []string
}

// DefaultWordList returns the built-in word list
func DefaultWordList() *WordList {
	return &WordList{words: append([]string(nil), defaultWords...)}
}

// NewWordList keeps the valid entries of words (letters only, lowercased)
func NewWordList(words []string) (*WordList, error) {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w, ok := normalizeWord(w); ok {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoWords
	}
	return &WordList{words: kept}, nil
}

// LoadWordList reads one word per line from path. Blank lines, lines starting
// with '#' and entries containing non-letters are skipped.
func LoadWordList(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open words file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	list, err := NewWordList(words)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Len returns the number of words
func (wl *WordList) Len() int {
	return len(wl.words)
}

// Pick returns a random word
func (wl *WordList) Pick(rng *rand.Rand) string {
	return wl.words[rng.Intn(len(wl.words))]
}

func normalizeWord(w string) (string, bool) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return "", false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return w, true
}
