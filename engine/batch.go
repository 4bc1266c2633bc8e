package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dynamicdo/dynamicdo/models"
)

// batchCap bounds how many ids a single batch call will process. Everything
// past the cap is echoed back untouched — not even syntactically checked.
const batchCap = 10

// DeleteBatch removes up to batchCap of owner's reminders in one store-level
// bulk delete. Invalid and non-owned ids within the cap are reported as
// not_found; the tail beyond the cap is reported as ignored verbatim.
func (e *Engine) DeleteBatch(ctx context.Context, owner string, ids []string) (*models.BatchOutcome, error) {
	found, notFound, ignored, err := e.resolveBatch(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	if len(found) > 0 {
		if _, err := e.store.DeleteMany(ctx, owner, found); err != nil {
			return nil, errStore("failed to delete reminders", err)
		}
	}

	e.log.WithFields(logrus.Fields{
		"user_id": owner,
		"deleted": len(found),
		"ignored": len(ignored),
	}).Info("Batch delete finished")

	return &models.BatchOutcome{Done: found, NotFound: notFound, Ignored: ignored}, nil
}

// SetCompletionBatch marks up to batchCap of owner's reminders completed or
// uncompleted in one store-level bulk update, with the same partition and
// reporting rules as DeleteBatch. Repeating a call is idempotent: the found
// set and final state do not change.
func (e *Engine) SetCompletionBatch(ctx context.Context, owner string, ids []string, completed bool) (*models.BatchOutcome, error) {
	found, notFound, ignored, err := e.resolveBatch(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	if len(found) > 0 {
		if _, err := e.store.SetCompletion(ctx, owner, found, completed, time.Now().UTC()); err != nil {
			return nil, errStore("failed to update reminders", err)
		}
	}

	e.log.WithFields(logrus.Fields{
		"user_id":   owner,
		"updated":   len(found),
		"ignored":   len(ignored),
		"completed": completed,
	}).Info("Batch completion update finished")

	return &models.BatchOutcome{Done: found, NotFound: notFound, Ignored: ignored}, nil
}

// resolveBatch applies the cap, partitions the head into valid and invalid
// ids, and resolves ownership with a single store query. not_found carries
// the missing valid ids first (original order), then the invalid ids
// (original order).
func (e *Engine) resolveBatch(ctx context.Context, owner string, ids []string) (found, notFound, ignored []string, err error) {
	if len(ids) == 0 {
		return nil, nil, nil, errValidation("no reminder ids provided")
	}

	head := ids
	ignored = []string{}
	if len(ids) > batchCap {
		head = ids[:batchCap]
		ignored = append(ignored, ids[batchCap:]...)
	}

	var valid, invalid []string
	for _, id := range head {
		if e.store.ValidID(id) {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}

	owned := []string{}
	if len(valid) > 0 {
		owned, err = e.store.FindOwnedIDs(ctx, owner, valid)
		if err != nil {
			return nil, nil, nil, errStore("failed to resolve reminder ids", err)
		}
	}

	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	found = []string{}
	notFound = []string{}
	for _, id := range valid {
		if _, ok := ownedSet[id]; ok {
			found = append(found, id)
		} else {
			notFound = append(notFound, id)
		}
	}
	notFound = append(notFound, invalid...)

	return found, notFound, ignored, nil
}
