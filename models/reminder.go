package models

import "time"

// Reminder is a user-owned task record. Optional fields are pointers so an
// explicit null in a patch clears them and absent fields stay untouched;
// they serialize as null rather than disappearing, matching the API shape
// clients already depend on.
type Reminder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Notes     *string   `json:"notes"`
	URL       *string   `json:"url"`
	Date      *string   `json:"date"`
	Time      *string   `json:"time"`
	Priority  *string   `json:"priority"`
	List      *string   `json:"list"`
	Tag       *string   `json:"tag"`
	Completed bool      `json:"completed"`
	Rank      *float64  `json:"rank,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"` // transient, debug ranking only
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderInput carries the client-settable fields for creation.
type ReminderInput struct {
	Title    string  `json:"title"`
	Notes    *string `json:"notes"`
	URL      *string `json:"url"`
	Date     *string `json:"date"`
	Time     *string `json:"time"`
	Priority *string `json:"priority"`
	List     *string `json:"list"`
	Tag      *string `json:"tag"`
}

// BatchOutcome reports a capped batch mutation. Done holds the ids actually
// mutated in store id format; NotFound merges missing and malformed ids
// (missing first, each group in original order); Ignored is the uninspected
// tail beyond the cap, verbatim.
type BatchOutcome struct {
	Done     []string
	NotFound []string
	Ignored  []string
}
