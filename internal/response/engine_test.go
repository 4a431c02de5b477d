package response

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource feeds a fixed sequence of Int63 values into math/rand so draws
// are fully deterministic. A value of 0 makes Float64 return 0; highDraw
// makes it return just under 1.
type stubSource struct {
	vals []int64
	i    int
}

// highDraw converts to a Float64 just under 1.0. Values at the very top of
// the Int63 range round to exactly 1.0, which makes Float64 discard them
// and redraw, shifting the stubbed sequence.
const highDraw = int64(1<<63 - 1 - 1<<10)

func (s *stubSource) Int63() int64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func (s *stubSource) Seed(int64) {}

func engineWithDraws(vals ...int64) *Engine {
	return NewEngine(rand.New(&stubSource{vals: vals}))
}

func TestGenerate_GreetingForAllPersonalities(t *testing.T) {
	t.Parallel()

	personalities := []Personality{Friendly, Professional, Casual, Technical}
	texts := []string{"hello", "Hi there", "HELLO world", "well hi"}

	for _, p := range personalities {
		for _, text := range texts {
			// Draw of 0 stays below the variation threshold.
			e := engineWithDraws(0)
			got := e.Generate(p, text)
			assert.Equal(t, templates[p].Greeting, got, "personality %s text %q", p, text)
		}
	}
}

func TestGenerate_RulePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want func(t templateSet) string
	}{
		{"greeting beats help", "hello, can you help me?", func(t templateSet) string { return t.Greeting }},
		{"help beats code", "can you help me debug my code", func(t templateSet) string { return t.Help }},
		{"code beats thanks", "thanks for the code review", func(t templateSet) string { return t.Code }},
		{"thanks alone", "thank you so much", func(t templateSet) string { return t.Thanks }},
		{"no keyword falls through to default", "what is the weather like", func(t templateSet) string { return t.Default }},
		{"matching is case insensitive", "THANK YOU", func(t templateSet) string { return t.Thanks }},
		{"keywords match inside words", "I need this fixed", func(t templateSet) string { return t.Greeting }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := engineWithDraws(0)
			got := e.Generate(Professional, tt.text)
			assert.Equal(t, tt.want(templates[Professional]), got)
		})
	}
}

func TestGenerate_VariationOverride(t *testing.T) {
	t.Parallel()

	// First draw above the threshold fires the override. Intn reads the top
	// 32 bits of the next Int63, so 1<<32 selects variation index 1.
	e := engineWithDraws(highDraw, 1<<32)
	got := e.Generate(Casual, "hello")
	assert.Equal(t, templates[Casual].Variations[1], got)
}

func TestGenerate_UnknownPersonalityFallsBackToFriendly(t *testing.T) {
	t.Parallel()

	e := engineWithDraws(0)
	got := e.Generate(Personality("sarcastic"), "hello")
	assert.Equal(t, templates[Friendly].Greeting, got)
}

func TestGenerate_NilSource(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	got := e.Generate(Technical, "thank you")
	require.NotEmpty(t, got)
}

func TestDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  time.Duration
	}{
		{5, 500 * time.Millisecond},
		{4, time.Second},
		{3, 1500 * time.Millisecond},
		{2, 2 * time.Second},
		{1, 2500 * time.Millisecond},
		{0, 2500 * time.Millisecond}, // clamped up
		{9, 500 * time.Millisecond},  // clamped down
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Delay(tt.level), "level %d", tt.level)
	}
}

func TestFeatureTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"question mark", "What would you like to do?", []string{"Question Answering"}},
		{"analysis keyword", "Let me analyze that for you", []string{"Analysis"}},
		{"recommendation keyword", "Here is my suggestion", []string{"Recommendations"}},
		{"code keyword", "I can review your code", []string{"Code Assistance"}},
		{"no tags", "Sure thing", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FeatureTags(tt.content))
		})
	}

	t.Run("long content is tagged detailed", func(t *testing.T) {
		t.Parallel()
		long := make([]byte, detailedResponseLength+1)
		for i := range long {
			long[i] = 'a'
		}
		assert.Contains(t, FeatureTags(string(long)), "Detailed Response")
	})
}
