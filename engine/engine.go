package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dynamicdo/dynamicdo/models"
)

// ReminderStore is the persistence contract the engine operates against.
// The concrete implementation lives in the datastore package; tests use an
// in-memory fake. Lookup methods report absence as (nil, nil) so the engine
// owns the not-found signal.
type ReminderStore interface {
	Insert(ctx context.Context, rem *models.Reminder) (string, error)
	FindByID(ctx context.Context, owner, id string) (*models.Reminder, error)
	FindByOwner(ctx context.Context, owner string) ([]models.Reminder, error)
	FindUncompleted(ctx context.Context, owner string) ([]models.Reminder, error)
	FindOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error)
	DeleteMany(ctx context.Context, owner string, ids []string) (int64, error)
	SetCompletion(ctx context.Context, owner string, ids []string, completed bool, now time.Time) (int64, error)
	ApplyPatch(ctx context.Context, owner, id string, fields map[string]any, now time.Time) (*models.Reminder, error)
	SaveRank(ctx context.Context, owner, id string, rank float64, priority string, now time.Time) (bool, error)

	// ValidID reports whether id is syntactically valid in the store's
	// identity format. It performs no I/O.
	ValidID(id string) bool
}

// RankingProvider scores a batch of reminder projections. Implementations
// may fail outright or return partial results; the engine absorbs both.
type RankingProvider interface {
	Rank(ctx context.Context, items []models.RankItem, rankContext string, includeReasoning bool) ([]models.RankResult, error)
}

// Engine owns the reminder lifecycle: creation, ordering, allow-listed
// updates, capped batch mutations, and ranking reconciliation.
type Engine struct {
	store  ReminderStore
	ranker RankingProvider
	log    *logrus.Logger
}

func New(store ReminderStore, ranker RankingProvider, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{store: store, ranker: ranker, log: log}
}

// Create persists a new reminder for owner. Title is required and must be
// non-blank after trimming; all other fields are optional.
func (e *Engine) Create(ctx context.Context, owner string, input models.ReminderInput) (*models.Reminder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errValidation("reminder title is required")
	}

	now := time.Now().UTC()
	rem := &models.Reminder{
		UserID:    owner,
		Title:     title,
		Notes:     input.Notes,
		URL:       input.URL,
		Date:      input.Date,
		Time:      input.Time,
		Priority:  input.Priority,
		List:      input.List,
		Tag:       input.Tag,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := e.store.Insert(ctx, rem)
	if err != nil {
		return nil, errStore("failed to create reminder", err)
	}
	rem.ID = id

	e.log.WithFields(logrus.Fields{"user_id": owner, "reminder_id": id}).Info("Reminder created")
	return rem, nil
}

// Get returns the reminder with the given id if it belongs to owner. A
// malformed id and a non-owned id collapse into the same not-found signal
// so callers cannot probe for existence.
func (e *Engine) Get(ctx context.Context, owner, id string) (*models.Reminder, error) {
	if !e.store.ValidID(id) {
		return nil, errNotFound("reminder not found")
	}
	rem, err := e.store.FindByID(ctx, owner, id)
	if err != nil {
		return nil, errStore("failed to fetch reminder", err)
	}
	if rem == nil {
		return nil, errNotFound("reminder not found")
	}
	return rem, nil
}

// List returns all of owner's reminders ordered by the two-key comparator:
// uncompleted before completed, then rank descending with unranked items
// last. Ties keep input order.
func (e *Engine) List(ctx context.Context, owner string) ([]models.Reminder, error) {
	reminders, err := e.store.FindByOwner(ctx, owner)
	if err != nil {
		return nil, errStore("failed to list reminders", err)
	}
	sortReminders(reminders)
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// ListUncompleted returns owner's uncompleted reminders via a store-level
// filter, so completed records are never fetched.
func (e *Engine) ListUncompleted(ctx context.Context, owner string) ([]models.Reminder, error) {
	reminders, err := e.store.FindUncompleted(ctx, owner)
	if err != nil {
		return nil, errStore("failed to list uncompleted reminders", err)
	}
	sortReminders(reminders)
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// updatableFields is the fixed allow-list for Update. Anything else in a
// patch is dropped without comment.
var updatableFields = map[string]struct{}{
	"title":    {},
	"notes":    {},
	"url":      {},
	"date":     {},
	"time":     {},
	"priority": {},
	"list":     {},
}

// Update applies an allow-listed patch to one of owner's reminders and
// returns the full updated record. Explicit nulls clear a field; a title,
// if present, must be a non-blank string.
func (e *Engine) Update(ctx context.Context, owner, id string, patch map[string]any) (*models.Reminder, error) {
	fields := make(map[string]any)
	for key, value := range patch {
		if _, ok := updatableFields[key]; ok {
			fields[key] = value
		}
	}

	if title, ok := fields["title"]; ok {
		s, isString := title.(string)
		trimmed := strings.TrimSpace(s)
		if !isString || trimmed == "" {
			return nil, errValidation("reminder title cannot be empty")
		}
		fields["title"] = trimmed
	}

	if len(fields) == 0 {
		return nil, errValidation("no valid fields to update")
	}

	if !e.store.ValidID(id) {
		return nil, errNotFound("reminder not found")
	}

	updated, err := e.store.ApplyPatch(ctx, owner, id, fields, time.Now().UTC())
	if err != nil {
		return nil, errStore("failed to update reminder", err)
	}
	if updated == nil {
		return nil, errNotFound("reminder not found")
	}

	e.log.WithFields(logrus.Fields{"user_id": owner, "reminder_id": id}).Info("Reminder updated")
	return updated, nil
}

func sortReminders(reminders []models.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Rank == nil {
			return false
		}
		if b.Rank == nil {
			return true
		}
		return *a.Rank > *b.Rank
	})
}
