// Package sentiment provides a deterministic bag-of-words sentiment scorer.
//
// The scorer performs a plain lexicon lookup with no negation handling and no
// stemming. That is a documented limitation of the approach, not a bug: the
// goal is a cheap, reproducible polarity signal for analytics, not language
// understanding.
package sentiment

import (
	"strings"
	"time"
)

// Label classifies the polarity of a scored message.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// Sample is one timestamped polarity measurement for a single message.
// Samples are appended to a session's analytics history and never mutated.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Label     Label     `json:"sentiment"`
	Score     int       `json:"score"`
}

// The two lexicons are fixed and disjoint.
var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "wonderful",
	"fantastic", "love", "like", "happy", "pleased",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "hate", "dislike",
	"angry", "frustrated", "disappointed", "sad",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Score splits text on whitespace, lower-cases each token, and sums +1 for
// every token in the positive lexicon and -1 for every token in the negative
// lexicon. It returns the raw score together with its classification.
func Score(text string) (int, Label) {
	score := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}
	return score, Classify(score)
}

// Classify maps a raw score to its label: positive above zero, negative below,
// neutral at exactly zero.
func Classify(score int) Label {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}
