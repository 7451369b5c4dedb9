package client

import (
	"context"
	"log"
	"sync"
)

const historyFetchLimit = 50

// HistoryCache is a fetch-once cache of past interaction checks. History
// only changes through this client's own SaveCheck/DeleteEntry/Clear
// calls, so a second un-forced fetch in the same session is known to be
// redundant and is skipped.
type HistoryCache struct {
	mu    sync.Mutex
	api   *Client
	epoch uint64

	entries    []HistoryEntry
	loading    bool
	hasFetched bool
	err        string
}

func NewHistoryCache(api *Client) *HistoryCache {
	return &HistoryCache{api: api}
}

func (h *HistoryCache) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryEntry(nil), h.entries...)
}

func (h *HistoryCache) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

func (h *HistoryCache) HasFetched() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hasFetched
}

func (h *HistoryCache) Err() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *HistoryCache) TotalChecks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// HighRiskCount counts entries whose check hit the highest severity.
func (h *HistoryCache) HighRiskCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.entries {
		if e.MaxSeverity == string(SeverityHigh) {
			n++
		}
	}
	return n
}

// RecentAlerts returns the first four entries that found an interaction,
// in server order (newest first).
func (h *HistoryCache) RecentAlerts() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	var alerts []HistoryEntry
	for _, e := range h.entries {
		if !e.HadInteraction {
			continue
		}
		alerts = append(alerts, e)
		if len(alerts) == 4 {
			break
		}
	}
	return alerts
}

// FetchHistory loads the check history. After one successful fetch the
// call becomes a no-op for the rest of the session unless force is set.
func (h *HistoryCache) FetchHistory(ctx context.Context, force bool) {
	h.mu.Lock()
	if h.hasFetched && !force {
		h.mu.Unlock()
		return
	}
	start := h.epoch
	h.loading = true
	h.err = ""
	h.mu.Unlock()

	wire, err := h.api.history(ctx, historyFetchLimit)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if h.epoch != start {
		return
	}
	if err != nil {
		h.err = failureMessage(err, "Failed to fetch history")
		log.Printf("failed to fetch interaction history: %v", err)
		return
	}
	entries := make([]HistoryEntry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, toHistoryEntry(w))
	}
	h.entries = entries
	h.hasFetched = true
}

// SaveCheck submits a check and then force-refetches the whole history,
// so server-derived fields (max_severity and friends) are never computed
// locally.
func (h *HistoryCache) SaveCheck(ctx context.Context, food string, medications []string, interactions []Interaction) {
	if err := h.api.saveCheck(ctx, food, medications, interactions); err != nil {
		log.Printf("failed to save check to history: %v", err)
		return
	}
	h.FetchHistory(ctx, true)
}

// DeleteEntry removes the entry locally once the server confirms. On
// failure the entry stays visible; the error is only logged.
func (h *HistoryCache) DeleteEntry(ctx context.Context, id uint) {
	if err := h.api.deleteHistoryEntry(ctx, id); err != nil {
		log.Printf("failed to delete history entry %d: %v", id, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.entries[:0:0]
	for _, e := range h.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	h.entries = kept
}

// ClearHistory empties the collection only after the remote clear
// succeeds.
func (h *HistoryCache) ClearHistory(ctx context.Context) {
	if err := h.api.clearHistory(ctx); err != nil {
		log.Printf("failed to clear history: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Reset clears the cache and its fetch-once flag; invoked by the
// session's logout cascade.
func (h *HistoryCache) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.epoch++
	h.entries = nil
	h.hasFetched = false
	h.loading = false
	h.err = ""
}
