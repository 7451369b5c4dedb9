package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrajwalpGM256/Medible/data"
)

func testEngine(t *testing.T) *InteractionEngine {
	t.Helper()
	engine, err := NewInteractionEngine(data.InteractionsJSON)
	require.NoError(t, err)
	return engine
}

func TestNewInteractionEngineRejectsGarbage(t *testing.T) {
	_, err := NewInteractionEngine([]byte("{not json"))
	assert.Error(t, err)
}

func TestCheckInteractionBrandNameWithDosage(t *testing.T) {
	engine := testEngine(t)

	results := engine.CheckInteraction("grapefruit juice", "Lipitor 20mg")

	require.Len(t, results, 1)
	assert.Equal(t, "INT-001", results[0].ID)
	assert.Equal(t, "atorvastatin", results[0].DrugName)
	assert.Equal(t, "Statins", results[0].DrugClass)
	assert.Equal(t, SeverityHigh, results[0].Severity)
}

func TestCheckInteractionMatchesFoodAlias(t *testing.T) {
	engine := testEngine(t)

	results := engine.CheckInteraction("kale", "warfarin")

	require.Len(t, results, 1)
	assert.Equal(t, "INT-002", results[0].ID)
	assert.Equal(t, "Leafy greens", results[0].FoodName)
}

func TestCheckInteractionBlankInputs(t *testing.T) {
	engine := testEngine(t)

	assert.Nil(t, engine.CheckInteraction("", "warfarin"))
	assert.Nil(t, engine.CheckInteraction("grapefruit", "   "))
	assert.Empty(t, engine.CheckInteraction("pizza", "ibuprofen"))
}

func TestFoodSynonymsFoldOntoKnownTerms(t *testing.T) {
	engine := testEngine(t)

	tests := []struct {
		query  string
		wantID string
	}{
		{"grape juice", "INT-001"},
		{"dairy", "INT-004"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results := engine.FoodInteractions(tt.query)
			require.NotEmpty(t, results)
			assert.Equal(t, tt.wantID, results[0].ID)
		})
	}
}

func TestDrugInteractionsMatchesByClass(t *testing.T) {
	engine := testEngine(t)

	results := engine.DrugInteractions("statins")

	require.Len(t, results, 1)
	assert.Equal(t, "INT-001", results[0].ID)
}

func TestDrugInteractionsMultipleEntries(t *testing.T) {
	engine := testEngine(t)

	results := engine.DrugInteractions("warfarin")

	// warfarin appears under vitamin K antagonists and anticoagulants
	require.Len(t, results, 2)
	ids := []string{results[0].ID, results[1].ID}
	assert.Contains(t, ids, "INT-002")
	assert.Contains(t, ids, "INT-012")
}

func TestCheckFoodAgainstMedicationsGroupsBySeverity(t *testing.T) {
	engine := testEngine(t)

	summary := engine.CheckFoodAgainstMedications("grapefruit", []string{"Lipitor", "Norvasc"})

	assert.Equal(t, "grapefruit", summary.FoodChecked)
	assert.Equal(t, []string{"Lipitor", "Norvasc"}, summary.MedicationsChecked)
	assert.Equal(t, 2, summary.TotalWarnings)
	assert.True(t, summary.HasHighSeverity)
	assert.Equal(t, SeverityHigh, summary.MaxSeverity)
	require.Len(t, summary.Warnings[SeverityHigh], 1)
	assert.Equal(t, "INT-001", summary.Warnings[SeverityHigh][0].ID)
	require.Len(t, summary.Warnings[SeverityModerate], 1)
	assert.Equal(t, "INT-010", summary.Warnings[SeverityModerate][0].ID)
	assert.Empty(t, summary.Warnings[SeverityLow])
}

func TestCheckFoodAgainstMedicationsDedupsSharedEntry(t *testing.T) {
	engine := testEngine(t)

	// brand and generic name of the same drug must not double-count
	summary := engine.CheckFoodAgainstMedications("grapefruit juice", []string{"Lipitor", "atorvastatin"})

	assert.Equal(t, 1, len(summary.Warnings[SeverityHigh]))
}

func TestCheckFoodAgainstMedicationsSkipsBlankMeds(t *testing.T) {
	engine := testEngine(t)

	summary := engine.CheckFoodAgainstMedications("grapefruit", []string{"  ", "Lipitor", ""})

	assert.Equal(t, []string{"Lipitor"}, summary.MedicationsChecked)
	assert.Equal(t, 1, summary.TotalWarnings)
}

func TestCheckFoodAgainstMedicationsNoMatches(t *testing.T) {
	engine := testEngine(t)

	summary := engine.CheckFoodAgainstMedications("pizza", []string{"ibuprofen"})

	assert.Equal(t, 0, summary.TotalWarnings)
	assert.False(t, summary.HasHighSeverity)
	assert.Empty(t, summary.MaxSeverity)
}

func TestSeverityOutranks(t *testing.T) {
	assert.True(t, SeverityOutranks(SeverityHigh, SeverityModerate))
	assert.True(t, SeverityOutranks(SeverityModerate, SeverityLow))
	assert.True(t, SeverityOutranks(SeverityLow, "bogus"))
	assert.False(t, SeverityOutranks(SeverityLow, SeverityHigh))
	assert.False(t, SeverityOutranks(SeverityHigh, SeverityHigh))
}

func TestStats(t *testing.T) {
	engine := testEngine(t)

	stats := engine.Stats()

	assert.Equal(t, 12, stats.TotalInteractions)
	assert.Equal(t, "1.2.0", stats.Version)
	assert.Equal(t, 5, stats.SeverityBreakdown[SeverityHigh])
	assert.Equal(t, 5, stats.SeverityBreakdown[SeverityModerate])
	assert.Equal(t, 2, stats.SeverityBreakdown[SeverityLow])
	assert.Greater(t, stats.DrugClasses, 0)
	assert.Greater(t, stats.FoodCategories, 0)
}
