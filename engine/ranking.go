package engine

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dynamicdo/dynamicdo/models"
)

const (
	defaultRank       = 0.5
	defaultPriority   = "medium"
	fallbackReasoning = "ranking unavailable"
)

// RankingOutcome is the result of a rank-and-persist pass: the merged,
// rank-ordered reminders plus what the persistence step managed to save.
type RankingOutcome struct {
	Reminders []models.Reminder `json:"reminders"`
	Modified  int               `json:"modified"`
	Errors    map[string]string `json:"errors"`
}

// RankAndPersist ranks owner's uncompleted reminders through the ranking
// provider, merges the results back over the originals, orders them by rank
// descending, and persists rank and priority per item. A provider failure is
// absorbed into a degraded result (rank 0.5, priority medium) and is never
// surfaced as an error.
func (e *Engine) RankAndPersist(ctx context.Context, owner, rankContext string, debug bool) (*RankingOutcome, error) {
	reminders, err := e.store.FindUncompleted(ctx, owner)
	if err != nil {
		return nil, errStore("failed to fetch uncompleted reminders", err)
	}

	// Nothing to rank; skip the provider call entirely.
	if len(reminders) == 0 {
		return &RankingOutcome{Reminders: []models.Reminder{}, Errors: map[string]string{}}, nil
	}

	items := projectForRanking(reminders)

	var ranked []models.Reminder
	results, err := e.ranker.Rank(ctx, items, rankContext, debug)
	if err != nil {
		e.log.WithError(err).WithField("user_id", owner).Warn("Ranking provider failed, falling back to defaults")
		ranked = fallbackRanking(reminders, debug)
	} else {
		ranked = mergeRankResults(reminders, results, debug)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return derefRank(ranked[i].Rank) > derefRank(ranked[j].Rank)
	})

	modified, saveErrs, err := e.SaveRankingResults(ctx, owner, ranked)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"user_id":  owner,
		"ranked":   len(ranked),
		"modified": modified,
		"failed":   len(saveErrs),
	}).Info("Ranking pass finished")

	return &RankingOutcome{Reminders: ranked, Modified: modified, Errors: saveErrs}, nil
}

// SaveRankingResults writes rank and priority for each ranked reminder,
// scoped to (id, owner). Items missing an id or a rank are skipped, and a
// per-item store failure is recorded without aborting the rest. Returns the
// number of records actually modified plus the per-id error map.
func (e *Engine) SaveRankingResults(ctx context.Context, owner string, ranked []models.Reminder) (int, map[string]string, error) {
	if len(ranked) == 0 {
		return 0, nil, errValidation("no ranked reminders to save")
	}

	now := time.Now().UTC()
	modified := 0
	saveErrs := map[string]string{}

	for _, rem := range ranked {
		if rem.ID == "" || rem.Rank == nil {
			continue
		}
		priority := defaultPriority
		if rem.Priority != nil {
			priority = *rem.Priority
		}
		matched, err := e.store.SaveRank(ctx, owner, rem.ID, *rem.Rank, priority, now)
		if err != nil {
			saveErrs[rem.ID] = err.Error()
			continue
		}
		if matched {
			modified++
		}
	}

	return modified, saveErrs, nil
}

// projectForRanking builds the minimal per-reminder payload sent to the
// provider, omitting absent fields to keep the request small.
func projectForRanking(reminders []models.Reminder) []models.RankItem {
	items := make([]models.RankItem, 0, len(reminders))
	for _, rem := range reminders {
		item := models.RankItem{ID: rem.ID, Title: rem.Title}
		if rem.Date != nil {
			item.Date = *rem.Date
		}
		if rem.Time != nil {
			item.Time = *rem.Time
		}
		if rem.Priority != nil {
			item.Priority = *rem.Priority
		}
		if rem.Tag != nil {
			item.Tag = *rem.Tag
		}
		if rem.List != nil {
			item.List = *rem.List
		}
		if rem.Notes != nil {
			item.Notes = *rem.Notes
		}
		items = append(items, item)
	}
	return items
}

// mergeRankResults overlays provider results onto the originals by id.
// Every original appears exactly once in the output; reminders the provider
// skipped get the default rank and priority.
func mergeRankResults(reminders []models.Reminder, results []models.RankResult, debug bool) []models.Reminder {
	byID := make(map[string]models.RankResult, len(results))
	for _, res := range results {
		byID[res.ID] = res
	}

	merged := make([]models.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		out := rem
		if res, ok := byID[rem.ID]; ok {
			rank := res.Rank
			priority := res.Priority
			out.Rank = &rank
			out.Priority = &priority
			if debug && res.Reasoning != "" {
				out.Reasoning = res.Reasoning
			}
		} else {
			out.Rank = floatPtr(defaultRank)
			out.Priority = strPtr(defaultPriority)
		}
		merged = append(merged, out)
	}
	return merged
}

// fallbackRanking is the degraded result used when the provider is
// unavailable: every reminder keeps its data and gets the neutral rank.
func fallbackRanking(reminders []models.Reminder, debug bool) []models.Reminder {
	out := make([]models.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		degraded := rem
		degraded.Rank = floatPtr(defaultRank)
		degraded.Priority = strPtr(defaultPriority)
		if debug {
			degraded.Reasoning = fallbackReasoning
		}
		out = append(out, degraded)
	}
	return out
}

func derefRank(rank *float64) float64 {
	if rank == nil {
		return 0
	}
	return *rank
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
