package models

// RankItem is the minimal reminder projection sent to the ranking provider.
// Empty fields are omitted to keep the request payload small.
type RankItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Priority string `json:"priority,omitempty"`
	Tag      string `json:"tag,omitempty"`
	List     string `json:"list,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// RankResult is one provider-returned score. It is never persisted as its
// own record; only rank and priority are merged into the reminder.
type RankResult struct {
	ID        string  `json:"id"`
	Rank      float64 `json:"rank"`
	Priority  string  `json:"priority"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// TaskSuggestion is a lightweight task candidate extracted from free text.
type TaskSuggestion struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"due_date"`
	Rank     float64 `json:"rank"`
	Source   string  `json:"source"`
}
