// Diversity selection for the regeneration path.
//
// When the user asks for an automatic redo (no feedback text), the pipeline
// forces variety by narrowing the inputs: one randomly chosen challenge per
// prospect and one randomly chosen highlight line per batch. The randomness
// sits behind the Picker interface so tests can pin the choices.
package services

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/tbourn/go-outreach-backend/internal/domain"
)

// Picker chooses an index in [0, n). n is always >= 1 when called.
type Picker interface {
	Pick(n int) int
}

// randPicker is the production Picker backed by its own seeded source.
type randPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandPicker returns a time-seeded Picker safe for concurrent use.
func NewRandPicker() Picker {
	return &randPicker{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Pick implements Picker.
func (p *randPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// pickOneChallenge narrows a prospect's challenge set to one entry chosen by
// p. With one (or zero) challenges there is nothing to vary.
func pickOneChallenge(challenges []domain.Challenge, p Picker) []domain.Challenge {
	if len(challenges) <= 1 {
		return challenges
	}
	i := p.Pick(len(challenges))
	return challenges[i : i+1]
}

// splitHighlightLines breaks the candidate's highlight text into non-empty
// trimmed lines.
func splitHighlightLines(highlights string) []string {
	raw := strings.Split(strings.ReplaceAll(highlights, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, ln := range raw {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// pickHighlightLine returns one highlight line chosen by p, or the full text
// when it has fewer than two lines.
func pickHighlightLine(highlights string, p Picker) string {
	lines := splitHighlightLines(highlights)
	if len(lines) == 0 {
		return highlights
	}
	if len(lines) == 1 {
		return lines[0]
	}
	return lines[p.Pick(len(lines))]
}
