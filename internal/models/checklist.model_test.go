package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeTasks_DefaultsToIncomplete(t *testing.T) {
	items := []ChecklistItem{
		{ID: "a", Label: "Check fryer oil", ShiftType: ShiftOpening, Order: 1},
		{ID: "b", Label: "Wipe counters", ShiftType: ShiftOpening, Order: 2},
	}

	views := MergeTasks(items, nil)

	assert.Len(t, views, 2)
	for _, view := range views {
		assert.False(t, view.IsCompleted)
		assert.Nil(t, view.CompletedBy)
		assert.Nil(t, view.CompletedAt)
	}
}

func TestMergeTasks_NewestCompletionWins(t *testing.T) {
	items := []ChecklistItem{
		{ID: "a", Label: "Check fryer oil", ShiftType: ShiftOpening, Order: 1},
		{ID: "b", Label: "Wipe counters", ShiftType: ShiftOpening, Order: 2},
	}
	older := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	completions := []ChecklistCompletion{
		{
			ID:          "c2",
			Type:        ShiftOpening,
			Items:       []CompletionItem{{ID: "a", IsCompleted: false}, {ID: "b", IsCompleted: true}},
			CompletedBy: CompletedBy{ID: "u2", Name: "Jordan"},
			CompletedAt: newer,
		},
		{
			ID:          "c1",
			Type:        ShiftOpening,
			Items:       []CompletionItem{{ID: "a", IsCompleted: true}, {ID: "b", IsCompleted: false}},
			CompletedBy: CompletedBy{ID: "u1", Name: "Alex"},
			CompletedAt: older,
		},
	}

	views := MergeTasks(items, completions)

	assert.False(t, views[0].IsCompleted, "newest record should win for task a")
	assert.True(t, views[1].IsCompleted, "newest record should win for task b")
	assert.Equal(t, "Jordan", views[0].CompletedBy.Name)
	assert.Equal(t, newer, *views[1].CompletedAt)
}

func TestMergeTasks_HandlesMisorderedCompletions(t *testing.T) {
	items := []ChecklistItem{{ID: "a", Label: "Check fryer oil", ShiftType: ShiftOpening, Order: 1}}
	older := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	// Oldest listed first, violating the newest-first gateway contract
	completions := []ChecklistCompletion{
		{ID: "c1", Items: []CompletionItem{{ID: "a", IsCompleted: true}}, CompletedAt: older},
		{ID: "c2", Items: []CompletionItem{{ID: "a", IsCompleted: false}}, CompletedAt: newer},
	}

	views := MergeTasks(items, completions)

	assert.False(t, views[0].IsCompleted)
}

func TestMergeTasks_SortsByDisplayOrder(t *testing.T) {
	items := []ChecklistItem{
		{ID: "c", Label: "Stock sauces", Order: 3},
		{ID: "a", Label: "Check fryer oil", Order: 1},
		{ID: "b", Label: "Wipe counters", Order: 2},
	}

	views := MergeTasks(items, nil)

	assert.Equal(t, []string{"a", "b", "c"}, []string{views[0].ID, views[1].ID, views[2].ID})
}

func TestMergeTasks_IgnoresUnknownEntries(t *testing.T) {
	items := []ChecklistItem{{ID: "a", Label: "Check fryer oil", Order: 1}}
	completions := []ChecklistCompletion{
		{
			ID:          "c1",
			Items:       []CompletionItem{{ID: "removed-task", IsCompleted: true}},
			CompletedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		},
	}

	views := MergeTasks(items, completions)

	assert.Len(t, views, 1)
	assert.False(t, views[0].IsCompleted)
	assert.Nil(t, views[0].CompletedBy)
}

func TestShiftType_Valid(t *testing.T) {
	assert.True(t, ShiftOpening.Valid())
	assert.True(t, ShiftTransition.Valid())
	assert.True(t, ShiftClosing.Valid())
	assert.False(t, ShiftType("overnight").Valid())
	assert.False(t, ShiftType("").Valid())
}
