package client

import (
	"context"
	"log"
	"strings"
	"sync"
)

// MedicationRegistry caches the user's medication list, drug-name search
// results, and the interaction warnings derived from the list. Every
// successful mutation of the list triggers a full re-aggregation of the
// warnings; the registry never patches them incrementally.
type MedicationRegistry struct {
	mu    sync.Mutex
	api   *Client
	epoch uint64

	medications   []Medication
	searchResults []DrugSearchResult
	interactions  []Interaction
	loading       bool
	searchLoading bool
	err           string
}

func NewMedicationRegistry(api *Client) *MedicationRegistry {
	return &MedicationRegistry{api: api}
}

func (m *MedicationRegistry) Medications() []Medication {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Medication(nil), m.medications...)
}

func (m *MedicationRegistry) SearchResults() []DrugSearchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DrugSearchResult(nil), m.searchResults...)
}

func (m *MedicationRegistry) Interactions() []Interaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Interaction(nil), m.interactions...)
}

func (m *MedicationRegistry) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.medications)
}

// HighRiskCount counts interactions at the highest severity level.
func (m *MedicationRegistry) HighRiskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, i := range m.interactions {
		if i.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

func (m *MedicationRegistry) HasHighRisk() bool { return m.HighRiskCount() > 0 }

func (m *MedicationRegistry) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *MedicationRegistry) SearchLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchLoading
}

func (m *MedicationRegistry) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// FetchMedications replaces the whole medication list from the server and
// re-aggregates interactions. On failure the previous list survives and
// the message lands in Err.
func (m *MedicationRegistry) FetchMedications(ctx context.Context) {
	m.mu.Lock()
	start := m.epoch
	m.loading = true
	m.err = ""
	m.mu.Unlock()
	defer m.clearLoading()

	wire, err := m.api.medications(ctx)

	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch == start {
			m.err = failureMessage(err, "Failed to fetch medications")
		}
		return
	}

	meds := make([]Medication, 0, len(wire))
	for _, w := range wire {
		meds = append(meds, toMedication(w))
	}

	m.mu.Lock()
	if m.epoch != start {
		m.mu.Unlock()
		return
	}
	m.medications = meds
	m.mu.Unlock()

	m.refreshInteractions(ctx, start)
}

// SearchDrugs replaces the search results for a query. A blank query
// clears the results without a network call; a failed search also clears
// them, so stale hits are never mistaken for fresh ones.
func (m *MedicationRegistry) SearchDrugs(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		m.mu.Lock()
		m.searchResults = nil
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	start := m.epoch
	m.searchLoading = true
	m.mu.Unlock()

	wire, err := m.api.searchDrugs(ctx, query)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchLoading = false
	if m.epoch != start {
		return
	}
	if err != nil {
		log.Printf("drug search failed: %v", err)
		m.searchResults = nil
		return
	}
	results := make([]DrugSearchResult, 0, len(wire))
	for _, w := range wire {
		results = append(results, toDrugSearchResult(w))
	}
	m.searchResults = results
}

// AddMedication appends the server-confirmed record and re-aggregates.
// There is no optimistic insert: the medication only exists locally once
// the server has assigned it an id.
func (m *MedicationRegistry) AddMedication(ctx context.Context, drugName, dosage, frequency string) bool {
	m.mu.Lock()
	start := m.epoch
	m.loading = true
	m.err = ""
	m.mu.Unlock()
	defer m.clearLoading()

	wire, err := m.api.addMedication(ctx, drugName, dosage, frequency)

	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch == start {
			m.err = failureMessage(err, "Failed to add medication")
		}
		return false
	}

	m.mu.Lock()
	if m.epoch != start {
		m.mu.Unlock()
		return false
	}
	m.medications = append(m.medications, toMedication(*wire))
	m.mu.Unlock()

	m.refreshInteractions(ctx, start)
	return true
}

// RemoveMedication drops the id from the list once the server confirms
// the delete, then re-aggregates.
func (m *MedicationRegistry) RemoveMedication(ctx context.Context, id uint) bool {
	m.mu.Lock()
	start := m.epoch
	m.loading = true
	m.err = ""
	m.mu.Unlock()
	defer m.clearLoading()

	err := m.api.removeMedication(ctx, id)

	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch == start {
			m.err = failureMessage(err, "Failed to remove")
		}
		return false
	}

	m.mu.Lock()
	if m.epoch != start {
		m.mu.Unlock()
		return false
	}
	kept := m.medications[:0:0]
	for _, med := range m.medications {
		if med.ID != id {
			kept = append(kept, med)
		}
	}
	m.medications = kept
	m.mu.Unlock()

	m.refreshInteractions(ctx, start)
	return true
}

func (m *MedicationRegistry) ClearSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchResults = nil
}

// Reset clears everything and invalidates in-flight operations; invoked by
// the session's logout cascade.
func (m *MedicationRegistry) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.medications = nil
	m.searchResults = nil
	m.interactions = nil
	m.loading = false
	m.searchLoading = false
	m.err = ""
}

// refreshInteractions recomputes the interaction list from scratch: one
// lookup per medication, issued sequentially so the result is
// deterministic, with per-lookup failures swallowed (partial data beats
// none). The concatenation is deduplicated by (DrugName, FoodName), first
// occurrence winning, so the record from the earliest-listed medication is
// the one kept.
func (m *MedicationRegistry) refreshInteractions(ctx context.Context, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	meds := append([]Medication(nil), m.medications...)
	m.mu.Unlock()

	var all []Interaction
	for _, med := range meds {
		wire, err := m.api.drugInteractions(ctx, med.DrugName)
		if err != nil {
			log.Printf("interaction lookup for %q failed: %v", med.DrugName, err)
			continue
		}
		for _, w := range wire {
			all = append(all, toInteraction(w))
		}
	}

	deduped := dedupeInteractions(all)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return
	}
	m.interactions = deduped
}

func dedupeInteractions(in []Interaction) []Interaction {
	seen := make(map[[2]string]struct{}, len(in))
	out := make([]Interaction, 0, len(in))
	for _, i := range in {
		key := [2]string{i.DrugName, i.FoodName}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, i)
	}
	return out
}

func (m *MedicationRegistry) clearLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}
