// Package client keeps a local, session-scoped view of a Medible user's
// account: the authenticated session, the medication list with its derived
// food-interaction warnings, and the interaction-check history. The three
// stores stay consistent across login, edits and logout; logout cascades a
// reset to every user-scoped cache.
package client

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

type UserProfile struct {
	ID        uint
	Email     string
	FirstName string
	LastName  string
	Name      string
	CreatedAt time.Time
}

type Medication struct {
	ID          uint
	DrugName    string
	GenericName string
	Dosage      string
	Frequency   string
	CreatedAt   time.Time
}

// DrugSearchResult is ephemeral: replaced wholesale on every search, never
// merged with earlier results.
type DrugSearchResult struct {
	BrandName    string
	GenericName  string
	Manufacturer string
}

// Interaction is one food warning for a drug. Two records describing the
// same (DrugName, FoodName) pair are the same fact, even when their IDs
// differ; the aggregation dedups on that pair.
type Interaction struct {
	ID             string
	DrugName       string
	FoodName       string
	FoodCategory   string
	Severity       Severity
	Effect         string
	Mechanism      string
	Recommendation string
	EvidenceLevel  string
}

// CheckResult is the server's verdict for one food checked against a
// medication list. It lives nowhere: callers pass it to
// HistoryCache.SaveCheck when the check is worth remembering.
type CheckResult struct {
	FoodChecked        string
	MedicationsChecked []string
	TotalWarnings      int
	HasHighSeverity    bool
	MaxSeverity        string
	Warnings           map[Severity][]Interaction
}

// AllWarnings flattens the grouped warnings, highest severity first.
func (r *CheckResult) AllWarnings() []Interaction {
	var out []Interaction
	for _, sev := range []Severity{SeverityHigh, SeverityModerate, SeverityLow} {
		out = append(out, r.Warnings[sev]...)
	}
	return out
}

type HistoryEntry struct {
	ID                 uint
	FoodName           string
	HadInteraction     bool
	InteractionCount   int
	MaxSeverity        string
	MedicationsChecked []string
	CreatedAt          time.Time
}
