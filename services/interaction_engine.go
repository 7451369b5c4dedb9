package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	SeverityLow      = "low"
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
)

// SeverityOutranks reports whether severity a is stricter than b.
func SeverityOutranks(a, b string) bool {
	return severityRank(a) < severityRank(b)
}

// severityRank orders severities for sorting and "highest wins" decisions.
func severityRank(s string) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityModerate:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

type kbFood struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases"`
}

type kbDrug struct {
	Names      []string `json:"names"`
	BrandNames []string `json:"brand_names"`
	Class      string   `json:"class"`
}

type kbEntry struct {
	ID             string `json:"id"`
	Food           kbFood `json:"food"`
	Drug           kbDrug `json:"drug"`
	Severity       string `json:"severity"`
	Effect         string `json:"effect"`
	Mechanism      string `json:"mechanism"`
	Recommendation string `json:"recommendation"`
	EvidenceLevel  string `json:"evidence_level"`
}

type knowledgeBase struct {
	Version      string    `json:"version"`
	LastUpdated  string    `json:"last_updated"`
	Interactions []kbEntry `json:"interactions"`
}

// InteractionRecord is the wire shape of a single food-drug interaction.
type InteractionRecord struct {
	ID             string `json:"id"`
	DrugName       string `json:"drug_name"`
	DrugClass      string `json:"drug_class"`
	FoodName       string `json:"food_name"`
	FoodCategory   string `json:"food_category"`
	Severity       string `json:"severity"`
	Effect         string `json:"effect"`
	Mechanism      string `json:"mechanism,omitempty"`
	Recommendation string `json:"recommendation"`
	EvidenceLevel  string `json:"evidence_level,omitempty"`
}

// CheckSummary aggregates one food checked against a medication list.
type CheckSummary struct {
	FoodChecked        string                         `json:"food_checked"`
	MedicationsChecked []string                       `json:"medications_checked"`
	TotalWarnings      int                            `json:"total_warnings"`
	HasHighSeverity    bool                           `json:"has_high_severity"`
	MaxSeverity        string                         `json:"max_severity,omitempty"`
	Warnings           map[string][]InteractionRecord `json:"warnings"`
}

// EngineStats describes the loaded knowledge base (health endpoint).
type EngineStats struct {
	TotalInteractions int            `json:"total_interactions"`
	Version           string         `json:"version"`
	LastUpdated       string         `json:"last_updated"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	DrugClasses       int            `json:"drug_classes"`
	FoodCategories    int            `json:"food_categories"`
}

// InteractionEngine answers food-drug interaction queries against a bundled
// knowledge base. Matching is fuzzy: case-insensitive, substring-tolerant,
// alias- and synonym-aware, so "Lipitor 20mg" still matches atorvastatin.
type InteractionEngine struct {
	entries     []kbEntry
	version     string
	lastUpdated string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// Common phrasings folded onto KB terms before matching.
var foodSynonyms = map[string]string{
	"grape juice":   "grapefruit",
	"dairy":         "milk",
	"peanut butter": "peanut",
	"gluten":        "wheat",
}

func NewInteractionEngine(raw []byte) (*InteractionEngine, error) {
	var kb knowledgeBase
	if err := json.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("failed to parse interaction knowledge base: %w", err)
	}
	return &InteractionEngine{
		entries:     kb.Interactions,
		version:     kb.Version,
		lastUpdated: kb.LastUpdated,
	}, nil
}

func normalize(text string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
	for k, v := range foodSynonyms {
		if strings.Contains(s, k) {
			s = strings.ReplaceAll(s, k, v)
			break
		}
	}
	return s
}

// fuzzyMatch returns the first target the query matches, or "".
// A match is an exact normalized string, a substring either way, or a
// word-subset in either direction (handles "grapefruit juice" vs "juice").
func fuzzyMatch(query string, targets []string) string {
	q := normalize(query)
	if q == "" {
		return ""
	}

	for _, target := range targets {
		t := normalize(target)
		if t == "" {
			continue
		}
		if q == t || strings.Contains(t, q) || strings.Contains(q, t) {
			return target
		}

		qWords := wordSet(q)
		tWords := wordSet(t)
		if subset(qWords, tWords) || subset(tWords, qWords) {
			return target
		}
	}
	return ""
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func subset(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for w := range a {
		if _, ok := b[w]; !ok {
			return false
		}
	}
	return true
}

func (e *InteractionEngine) matchFood(query string, food kbFood) string {
	terms := append([]string{food.Name}, food.Aliases...)
	return fuzzyMatch(query, terms)
}

func (e *InteractionEngine) matchDrug(query string, drug kbDrug) string {
	terms := append(append([]string{}, drug.Names...), drug.BrandNames...)
	terms = append(terms, drug.Class)
	return fuzzyMatch(query, terms)
}

func (e *InteractionEngine) record(entry kbEntry) InteractionRecord {
	drugName := "Unknown"
	if len(entry.Drug.Names) > 0 {
		drugName = entry.Drug.Names[0]
	}
	return InteractionRecord{
		ID:             entry.ID,
		DrugName:       drugName,
		DrugClass:      entry.Drug.Class,
		FoodName:       entry.Food.Name,
		FoodCategory:   entry.Food.Category,
		Severity:       entry.Severity,
		Effect:         entry.Effect,
		Mechanism:      entry.Mechanism,
		Recommendation: entry.Recommendation,
		EvidenceLevel:  entry.EvidenceLevel,
	}
}

// CheckInteraction returns every KB entry matching both the food and the
// drug, highest severity first.
func (e *InteractionEngine) CheckInteraction(food, drug string) []InteractionRecord {
	if strings.TrimSpace(food) == "" || strings.TrimSpace(drug) == "" {
		return nil
	}

	var results []InteractionRecord
	for _, entry := range e.entries {
		if e.matchFood(food, entry.Food) == "" {
			continue
		}
		if e.matchDrug(drug, entry.Drug) == "" {
			continue
		}
		results = append(results, e.record(entry))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return severityRank(results[i].Severity) < severityRank(results[j].Severity)
	})
	return results
}

// CheckFoodAgainstMedications checks one food against the whole medication
// list and groups the deduplicated warnings by severity.
func (e *InteractionEngine) CheckFoodAgainstMedications(food string, medications []string) CheckSummary {
	summary := CheckSummary{
		FoodChecked: food,
		Warnings: map[string][]InteractionRecord{
			SeverityHigh:     {},
			SeverityModerate: {},
			SeverityLow:      {},
		},
	}

	var all []InteractionRecord
	for _, med := range medications {
		med = strings.TrimSpace(med)
		if med == "" {
			continue
		}
		summary.MedicationsChecked = append(summary.MedicationsChecked, med)
		all = append(all, e.CheckInteraction(food, med)...)
	}

	seen := make(map[string]struct{})
	for _, rec := range all {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}

		sev := rec.Severity
		if _, ok := summary.Warnings[sev]; !ok {
			sev = SeverityLow
		}
		summary.Warnings[sev] = append(summary.Warnings[sev], rec)
		if summary.MaxSeverity == "" || severityRank(sev) < severityRank(summary.MaxSeverity) {
			summary.MaxSeverity = sev
		}
	}

	summary.TotalWarnings = len(seen)
	summary.HasHighSeverity = len(summary.Warnings[SeverityHigh]) > 0
	return summary
}

// DrugInteractions returns every known food interaction for a drug.
func (e *InteractionEngine) DrugInteractions(drug string) []InteractionRecord {
	var results []InteractionRecord
	for _, entry := range e.entries {
		if e.matchDrug(drug, entry.Drug) == "" {
			continue
		}
		results = append(results, e.record(entry))
	}
	return results
}

// FoodInteractions returns every known drug interaction for a food.
func (e *InteractionEngine) FoodInteractions(food string) []InteractionRecord {
	var results []InteractionRecord
	for _, entry := range e.entries {
		if e.matchFood(food, entry.Food) == "" {
			continue
		}
		results = append(results, e.record(entry))
	}
	return results
}

func (e *InteractionEngine) Stats() EngineStats {
	stats := EngineStats{
		TotalInteractions: len(e.entries),
		Version:           e.version,
		LastUpdated:       e.lastUpdated,
		SeverityBreakdown: map[string]int{SeverityHigh: 0, SeverityModerate: 0, SeverityLow: 0},
	}

	drugClasses := make(map[string]struct{})
	foodCategories := make(map[string]struct{})
	for _, entry := range e.entries {
		stats.SeverityBreakdown[entry.Severity]++
		drugClasses[entry.Drug.Class] = struct{}{}
		foodCategories[entry.Food.Category] = struct{}{}
	}
	stats.DrugClasses = len(drugClasses)
	stats.FoodCategories = len(foodCategories)
	return stats
}
