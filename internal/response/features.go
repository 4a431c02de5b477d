package response

import (
	"regexp"
	"strings"
)

var (
	analysisRe  = regexp.MustCompile(`(?i)\b(analyze|analysis)\b`)
	recommendRe = regexp.MustCompile(`(?i)\b(recommend|suggestion)\b`)
	codeRe      = regexp.MustCompile(`(?i)\b(code|programming)\b`)
)

// detailedResponseLength is the content length above which a reply is tagged
// as a detailed response.
const detailedResponseLength = 200

// FeatureTags derives capability tags for a bot reply. The view layer renders
// them as chips next to the message; the tags carry no semantics beyond
// display.
func FeatureTags(content string) []string {
	var tags []string

	if strings.ContainsRune(content, '?') {
		tags = append(tags, "Question Answering")
	}
	if analysisRe.MatchString(content) {
		tags = append(tags, "Analysis")
	}
	if recommendRe.MatchString(content) {
		tags = append(tags, "Recommendations")
	}
	if codeRe.MatchString(content) {
		tags = append(tags, "Code Assistance")
	}
	if len(content) > detailedResponseLength {
		tags = append(tags, "Detailed Response")
	}

	return tags
}
