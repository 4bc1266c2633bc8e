package ranking

import (
	"fmt"
	"strings"

	"github.com/dynamicdo/dynamicdo/models"
)

const maxSuggestionTitleLen = 80

// SuggestTasks extracts task candidates from free text with a sentence
// heuristic. It deliberately avoids a provider round trip: suggestions are
// throwaway drafts and a neutral rank is good enough.
func SuggestTasks(text string) []models.TaskSuggestion {
	suggestions := []models.TaskSuggestion{}
	if strings.TrimSpace(text) == "" {
		return suggestions
	}

	flattened := strings.ReplaceAll(text, "\n", " ")
	for _, sentence := range strings.Split(flattened, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		idx := len(suggestions)
		title := sentence
		if len(title) > maxSuggestionTitleLen {
			title = title[:maxSuggestionTitleLen]
		}
		suggestions = append(suggestions, models.TaskSuggestion{
			ID:       fmt.Sprintf("sugg-%d", idx),
			Title:    title,
			Priority: "medium",
			Rank:     0.5,
			Source:   "heuristic",
		})
	}
	return suggestions
}
