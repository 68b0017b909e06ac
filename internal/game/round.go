package game

import (
	"math/rand"
	"strings"
	"time"
)

const hiddenLetter = '_'

// Round holds the secret word, the revealed mask, the remaining guesses and
// the running score. Round is not safe for concurrent use; the server hub
// serializes every call.
type Round struct {
	words     *WordList
	rng       *rand.Rand
	word      []rune
	revealed  []bool
	tried     map[rune]bool
	remaining int
	score     int
}

// NewRound creates a round controller drawing from words. A nil rng is seeded
// from the clock. No word is selected until SelectWord is called.
func NewRound(words *WordList, rng *rand.Rand) *Round {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Round{words: words, rng: rng}
}

// SelectWord starts a new round with a random word. The score carries over.
func (r *Round) SelectWord() {
	r.word = []rune(r.words.Pick(r.rng))
	r.revealed = make([]bool, len(r.word))
	r.tried = make(map[rune]bool)
	r.remaining = len(r.word)
}

// MaskedState renders revealed letters and '_' for hidden ones
func (r *Round) MaskedState() string {
	var b strings.Builder
	for i, c := range r.word {
		if r.revealed[i] {
			b.WriteRune(c)
		} else {
			b.WriteRune(hiddenLetter)
		}
	}
	return b.String()
}

// RemainingGuesses returns how many wrong guesses are left
func (r *Round) RemainingGuesses() int {
	return r.remaining
}

// ApplyGuess applies a letter or whole-word guess and reports whether the
// word is now solved. A wrong guess costs one remaining guess; repeating a
// letter already tried costs nothing. Guesses on a finished round are ignored.
func (r *Round) ApplyGuess(input string) bool {
	guess := []rune(strings.ToLower(strings.TrimSpace(input)))
	if len(guess) == 0 || r.finished() {
		return r.solved()
	}

	if len(guess) == 1 {
		letter := guess[0]
		if r.tried[letter] {
			return r.solved()
		}
		r.tried[letter] = true
		hit := false
		for i, c := range r.word {
			if c == letter {
				r.revealed[i] = true
				hit = true
			}
		}
		if !hit {
			r.remaining--
		}
	} else if string(guess) == string(r.word) {
		for i := range r.revealed {
			r.revealed[i] = true
		}
	} else {
		r.remaining--
	}

	switch {
	case r.solved():
		r.score++
		return true
	case r.remaining == 0:
		r.score--
	}
	return false
}

// Score returns the running score: +1 per win, -1 per loss
func (r *Round) Score() int {
	return r.score
}

// RevealedWord returns the secret word
func (r *Round) RevealedWord() string {
	return string(r.word)
}

func (r *Round) solved() bool {
	if len(r.word) == 0 {
		return false
	}
	for _, ok := range r.revealed {
		if !ok {
			return false
		}
	}
	return true
}

func (r *Round) finished() bool {
	return r.solved() || r.remaining == 0
}
