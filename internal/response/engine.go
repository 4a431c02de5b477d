// Package response synthesizes bot replies from fixed personality template
// tables. Reply selection is keyword-rule matching with an explicit precedence
// order, plus a randomized variation override for diversity.
package response

import (
	"math/rand"
	"strings"
	"time"
)

// variationThreshold is the uniform-draw cutoff for overriding the selected
// template with a random variation. A draw above the threshold fires the
// override, so the override probability is 0.3.
const variationThreshold = 0.7

// baseDelay anchors the simulated thinking delay.
const baseDelay = time.Second

// rule pairs a keyword predicate with a template selector. Rules are
// evaluated in sequence and the first match wins.
type rule struct {
	match func(text string) bool
	pick  func(t templateSet) string
}

// Precedence order: greeting before help before code before thanks. The
// matched text is the lower-cased user message; the stored message keeps its
// original casing.
var rules = []rule{
	{containsAny("hello", "hi"), func(t templateSet) string { return t.Greeting }},
	{containsAny("help"), func(t templateSet) string { return t.Help }},
	{containsAny("code"), func(t templateSet) string { return t.Code }},
	{containsAny("thank"), func(t templateSet) string { return t.Thanks }},
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

// Engine generates replies. It is a pure function of (personality, user text,
// random source); the source is injected so tests can make draws
// deterministic.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine backed by the given random source. A nil source
// falls back to a time-seeded one.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// Generate returns the reply template for the user text under the given
// personality. An unknown personality falls back to Friendly. With
// probability 0.3 the selected template is replaced by a uniformly-random
// pick from the personality's variation list, when that list is non-empty.
//
// Generate is not safe for concurrent use; callers serialize access.
func (e *Engine) Generate(p Personality, userText string) string {
	t, ok := templates[p]
	if !ok {
		t = templates[Friendly]
	}

	lower := strings.ToLower(userText)
	reply := t.Default
	for _, r := range rules {
		if r.match(lower) {
			reply = r.pick(t)
			break
		}
	}

	if len(t.Variations) > 0 && e.rng.Float64() > variationThreshold {
		reply = t.Variations[e.rng.Intn(len(t.Variations))]
	}

	return reply
}

// Delay converts a response speed level (1 = very slow, 5 = very fast) into
// the scheduling delay before the bot turn completes: 1000ms * (6-level) * 0.5,
// so level 5 yields 500ms and level 1 yields 2500ms. Out-of-range levels are
// clamped.
func Delay(speedLevel int) time.Duration {
	if speedLevel < 1 {
		speedLevel = 1
	}
	if speedLevel > 5 {
		speedLevel = 5
	}
	return time.Duration(float64(baseDelay) * float64(6-speedLevel) * 0.5)
}
