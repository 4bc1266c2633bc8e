package ranking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dynamicdo/dynamicdo/models"
)

// parseRankResponse normalizes the two response shapes the provider is
// allowed to return — {"items": [...]} or a bare array of the same item
// shape — into one result list. Items without an id are dropped; ranks are
// clamped to [0.0, 1.0] and priorities normalized to the known tiers.
func parseRankResponse(content string) ([]models.RankResult, error) {
	raw := stripCodeFence(content)

	var wrapped struct {
		Items []models.RankResult `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Items != nil {
		return normalizeResults(wrapped.Items), nil
	}

	var plain []models.RankResult
	if err := json.Unmarshal([]byte(raw), &plain); err == nil {
		return normalizeResults(plain), nil
	}

	return nil, fmt.Errorf("unrecognized ranking payload")
}

func normalizeResults(results []models.RankResult) []models.RankResult {
	out := make([]models.RankResult, 0, len(results))
	for _, res := range results {
		if res.ID == "" {
			continue
		}
		if res.Rank < 0 {
			res.Rank = 0
		}
		if res.Rank > 1 {
			res.Rank = 1
		}
		switch strings.ToLower(res.Priority) {
		case "high", "medium", "low":
			res.Priority = strings.ToLower(res.Priority)
		default:
			res.Priority = "medium"
		}
		out = append(out, res)
	}
	return out
}

// stripCodeFence unwraps a ```json ... ``` block, which chat models emit
// even when told not to.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
