// Package sync orchestrates reads and writes against the authoritative log
// with the local cache as fallback and fill target.
package sync

import (
	"context"
	"errors"
	"log"
	gosync "sync"

	"golang.org/x/sync/singleflight"

	"nutrilog/client/api"
	"nutrilog/client/cache"
	"nutrilog/common"
	"nutrilog/models"
	"nutrilog/services"
)

// Coordinator owns the reconciliation policy. It is the only component
// that touches the cache. Reads go remote-first and degrade to cached data;
// writes go remote-first and mirror into the cache only after the server
// acknowledged them. Nothing is retried automatically.
type Coordinator struct {
	remote api.Remote
	cache  *cache.Cache

	group singleflight.Group

	mu     gosync.Mutex
	states map[string]SummaryState
}

func NewCoordinator(remote api.Remote, local *cache.Cache) *Coordinator {
	return &Coordinator{
		remote: remote,
		cache:  local,
		states: make(map[string]SummaryState),
	}
}

// State returns the current reducer state for a summary key.
func (c *Coordinator) State(date string) SummaryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[date]
}

func (c *Coordinator) apply(date string, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[date] = Reduce(c.states[date], e)
}

// SummaryResult is what a read yields: the summary, whether it was served
// from cache, and the reason the authoritative fetch failed if it did.
type SummaryResult struct {
	Summary       *services.DaySummary
	Entries       []models.FoodLogEntry
	Degraded      bool
	FailureReason string
}

type fetchOutcome struct {
	result *SummaryResult
	err    error
}

// DaySummary fetches one day's summary. Concurrent calls for the same date
// share a single in-flight request rather than issuing duplicates. On
// remote failure it falls back to the cache, recomputing totals locally
// with the same aggregation the server runs, so a degraded result matches
// what the authoritative path would return for the same entry set.
func (c *Coordinator) DaySummary(ctx context.Context, date string) (*SummaryResult, error) {
	c.apply(date, Event{Kind: EventFetchStarted})

	v, _, _ := c.group.Do(date, func() (interface{}, error) {
		// The flight is shared: later callers join it, so it must not die
		// with whichever caller happened to start it.
		return c.fetch(context.WithoutCancel(ctx), date), nil
	})
	out := v.(*fetchOutcome)

	switch {
	case out.err != nil:
		c.apply(date, Event{Kind: EventFetchFailed, Err: out.err.Error()})
		return nil, out.err
	case out.result.Degraded:
		c.apply(date, Event{
			Kind:     EventFetchFailed,
			Summary:  out.result.Summary,
			Degraded: true,
			Err:      out.result.FailureReason,
		})
	default:
		c.apply(date, Event{Kind: EventFetchSucceeded, Summary: out.result.Summary})
	}
	return out.result, nil
}

func (c *Coordinator) fetch(ctx context.Context, date string) *fetchOutcome {
	entries, err := c.remote.DayEntries(ctx, date)
	if err != nil {
		return c.fallback(date, err)
	}
	summary, err := c.remote.DaySummary(ctx, date)
	if err != nil {
		return c.fallback(date, err)
	}

	if cacheErr := c.cache.ReplaceDay(date, entries); cacheErr != nil {
		// A cache-fill failure degrades future offline reads, not this one.
		log.Printf("sync: caching day %s: %v", date, cacheErr)
	}
	return &fetchOutcome{result: &SummaryResult{Summary: summary, Entries: entries}}
}

// fallback serves the degraded path. Totals are recomputed from the cached
// item lists rather than trusted from the cached rows, so the result is
// exactly what the server would compute for this entry set.
func (c *Coordinator) fallback(date string, cause error) *fetchOutcome {
	entries, ok, err := c.cache.Day(date)
	if err != nil || !ok {
		// Nothing cached: surface the original failure with no data.
		return &fetchOutcome{err: cause}
	}

	for i := range entries {
		entries[i].Totals = models.AggregateItems(entries[i].Items)
	}
	summary := services.BuildDaySummary(date, entries)
	return &fetchOutcome{result: &SummaryResult{
		Summary:       summary,
		Entries:       entries,
		Degraded:      true,
		FailureReason: cause.Error(),
	}}
}

// CreateEntry writes to the authoritative store first and mirrors the
// accepted state. A failed write is surfaced, never applied locally: the
// cache holds no entry the server has not accepted.
func (c *Coordinator) CreateEntry(ctx context.Context, draft services.EntryDraft) (*models.FoodLogEntry, error) {
	// Once issued, the store mutation is not cancelled with the caller;
	// abandoning it mid-flight would leave the server state unknown.
	entry, err := c.remote.CreateEntry(context.WithoutCancel(ctx), draft)
	if err != nil {
		return nil, err
	}
	c.mirror(entry)
	return entry, nil
}

// UpdateEntry follows the same remote-first rule as CreateEntry.
func (c *Coordinator) UpdateEntry(ctx context.Context, id string, patch services.EntryPatch) (*models.FoodLogEntry, error) {
	entry, err := c.remote.UpdateEntry(context.WithoutCancel(ctx), id, patch)
	if err != nil {
		return nil, err
	}
	c.mirror(entry)
	return entry, nil
}

// DeleteEntry soft-deletes on the server, then drops the mirror copy.
func (c *Coordinator) DeleteEntry(ctx context.Context, id string, expected *uint64) error {
	cached, ok, cacheErr := c.cache.Entry(id)
	if cacheErr != nil {
		log.Printf("sync: reading cached entry %s: %v", id, cacheErr)
	}

	if err := c.remote.DeleteEntry(context.WithoutCancel(ctx), id, expected); err != nil {
		if errors.Is(err, common.ErrNotFound) && ok {
			// Server no longer has it; the mirror copy is an orphan.
			_ = c.cache.RemoveEntry(id)
		}
		return err
	}

	if err := c.cache.RemoveEntry(id); err != nil {
		log.Printf("sync: removing cached entry %s: %v", id, err)
	}
	if ok {
		c.apply(cached.LoggedDate, Event{Kind: EventWriteSucceeded})
	}
	return nil
}

func (c *Coordinator) mirror(entry *models.FoodLogEntry) {
	if err := c.cache.UpsertEntry(entry); err != nil {
		log.Printf("sync: mirroring entry %s: %v", entry.ID, err)
	}
	c.apply(entry.LoggedDate, Event{Kind: EventWriteSucceeded})
}
