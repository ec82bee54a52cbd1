package models

import (
	"sort"
	"time"
)

type ShiftType string

const (
	ShiftOpening    ShiftType = "opening"
	ShiftTransition ShiftType = "transition"
	ShiftClosing    ShiftType = "closing"
)

func (s ShiftType) String() string {
	return string(s)
}

func (s ShiftType) Valid() bool {
	switch s {
	case ShiftOpening, ShiftTransition, ShiftClosing:
		return true
	}
	return false
}

func AllShiftTypes() []ShiftType {
	return []ShiftType{ShiftOpening, ShiftTransition, ShiftClosing}
}

// ChecklistItem is a task definition for one shift type. Definitions are
// managed by the upstream operations API and read-only here.
type ChecklistItem struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	IsRequired bool      `json:"isRequired"`
	ShiftType  ShiftType `json:"shiftType"`
	Order      int       `json:"order"`
}

type CompletionItem struct {
	ID          string `json:"id"`
	IsCompleted bool   `json:"isCompleted"`
}

type CompletedBy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChecklistCompletion is one submitted completion snapshot. Items always
// covers the complete item set for the shift type; the latest record for a
// given day is the effective state (last write wins, full state wins).
type ChecklistCompletion struct {
	ID          string           `json:"id"`
	Type        ShiftType        `json:"type"`
	Items       []CompletionItem `json:"items"`
	CompletedBy CompletedBy      `json:"completedBy"`
	CompletedAt time.Time        `json:"completedAt"`
	Notes       string           `json:"notes,omitempty"`
}

// CompletionSubmission is the payload for submitCompletion. ForcePartialSave
// is a wire-compatibility flag inherited from older completion formats; the
// item list is a full snapshot regardless of its value.
type CompletionSubmission struct {
	Items            []CompletionItem `json:"items"`
	Notes            string           `json:"notes,omitempty"`
	ForcePartialSave bool             `json:"forcePartialSave"`
}

// TaskView is an item definition overlaid with its latest completion state.
// It is a pure projection, recomputed on every fetch and never stored.
type TaskView struct {
	ChecklistItem
	IsCompleted bool         `json:"isCompleted"`
	CompletedBy *CompletedBy `json:"completedBy,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// MergeTasks overlays the newest completion entry for each item onto its
// definition. Items with no matching entry default to incomplete. Completions
// arrive newest-first from the gateway but are re-sorted by CompletedAt so a
// misordered list cannot flip the last-write-wins overlay.
func MergeTasks(items []ChecklistItem, completions []ChecklistCompletion) []TaskView {
	ordered := make([]ChecklistCompletion, len(completions))
	copy(ordered, completions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.After(ordered[j].CompletedAt)
	})

	views := make([]TaskView, 0, len(items))
	for _, item := range items {
		view := TaskView{ChecklistItem: item}
		for _, completion := range ordered {
			entry, ok := findEntry(completion.Items, item.ID)
			if !ok {
				continue
			}

			view.IsCompleted = entry.IsCompleted
			by := completion.CompletedBy
			at := completion.CompletedAt
			view.CompletedBy = &by
			view.CompletedAt = &at
			break
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Order < views[j].Order
	})

	return views
}

func findEntry(entries []CompletionItem, id string) (CompletionItem, bool) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return CompletionItem{}, false
}
