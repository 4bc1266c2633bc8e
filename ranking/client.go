package ranking

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/dynamicdo/dynamicdo/models"
)

const defaultModel = openai.GPT4oMini

const systemPrompt = `You rank personal task reminders by urgency and importance.
Given a list of tasks and optional user context, score every task.
Respond with JSON only, in the shape:
{"items": [{"id": "<task id>", "rank": <float 0.0-1.0>, "priority": "high"|"medium"|"low"}]}
Higher rank means more urgent. Include every task id you were given.`

const reasoningInstruction = `Additionally include a short "reasoning" string per item explaining its score.`

// Client calls an OpenAI-compatible chat-completions endpoint to score
// reminder batches. It implements engine.RankingProvider.
type Client struct {
	api   *openai.Client
	model string
	log   *logrus.Logger
}

func NewClient(apiKey, model string, log *logrus.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
		log:   log,
	}
}

// rankRequest is the user-message payload. Context is free text steering
// the ranking ("focus on work deadlines").
type rankRequest struct {
	Items            []models.RankItem `json:"items"`
	Context          string            `json:"context,omitempty"`
	IncludeReasoning bool              `json:"include_reasoning"`
}

// Rank submits the projections and returns normalized per-item results. Any
// transport or parse failure surfaces as an error; the engine decides what
// to do with it.
func (c *Client) Rank(ctx context.Context, items []models.RankItem, rankContext string, includeReasoning bool) ([]models.RankResult, error) {
	payload, err := json.Marshal(rankRequest{
		Items:            items,
		Context:          rankContext,
		IncludeReasoning: includeReasoning,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ranking request: %w", err)
	}

	system := systemPrompt
	if includeReasoning {
		system += "\n" + reasoningInstruction
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ranking request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("ranking response contained no choices")
	}

	content := resp.Choices[0].Message.Content
	results, err := parseRankResponse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"items":   len(items),
		"results": len(results),
		"model":   c.model,
	}).Debug("Ranking call completed")

	return results, nil
}
