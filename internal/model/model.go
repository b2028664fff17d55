package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type TaskID string

type BlockID string

// SeriesID is shared by every materialized occurrence of one recurring series.
type SeriesID string

type BlockStatus string

const (
	StatusPlanned    BlockStatus = "planned"
	StatusInProgress BlockStatus = "in_progress"
	StatusDone       BlockStatus = "done"
	StatusSkipped    BlockStatus = "skipped"
)

type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type Task struct {
	ID        TaskID          `json:"id"`
	Title     string          `json:"title"`
	Notes     *string         `json:"notes,omitempty"`
	Checklist []ChecklistItem `json:"checklist,omitempty"`
	Priority  *int            `json:"priority,omitempty"` // 0..2
	Tags      []string        `json:"tags,omitempty"`

	// Recurrence is a free-form annotation on the task itself. It is never
	// expanded; only Block.Recurrence drives materialization.
	Recurrence *string `json:"recurrence,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}

func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// Block is one concrete, dated occurrence of scheduled time, optionally
// linked to a Task. A dangling TaskID is tolerated and rendered "untitled".
type Block struct {
	ID            BlockID `json:"id"`
	TaskID        TaskID  `json:"taskId,omitempty"`
	Title         *string `json:"title,omitempty"`
	NotesOverride *string `json:"notesOverride,omitempty"`

	// End > Start is expected but not enforced here; callers maintain it.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Status BlockStatus `json:"status"`

	// Rev increments on every mutation. Advisory only: nothing compares it
	// against a caller-supplied expected value.
	Rev int `json:"rev"`

	Recurrence *BlockRecurrence `json:"recurrence,omitempty"`
}

func (b *Block) Bump() {
	b.Rev++
}

func (b *Block) InSeries() bool {
	return b.Recurrence != nil && b.Recurrence.ID != ""
}

type RecurrenceType string

const (
	RecurDaily  RecurrenceType = "daily"
	RecurWeekly RecurrenceType = "weekly"
)

// BlockRecurrence describes one recurring series. Every member block carries
// its own copy; the copies agree and are kept in sync by series edits.
type BlockRecurrence struct {
	ID       SeriesID       `json:"id"`
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`

	// DaysOfWeek uses 0=Sunday..6=Saturday; weekly rules only. Empty means
	// the anchor's weekday.
	DaysOfWeek []int `json:"daysOfWeek,omitempty"`

	StartDate   string `json:"startDate"` // YYYY-MM-DD anchor
	StartMinute int    `json:"startMinute"`
	Duration    int    `json:"duration"` // minutes

	Until      string   `json:"until,omitempty"` // inclusive YYYY-MM-DD
	Exceptions []string `json:"exceptions,omitempty"`
}

func (r *BlockRecurrence) Clone() *BlockRecurrence {
	if r == nil {
		return nil
	}
	c := *r
	c.DaysOfWeek = slices.Clone(r.DaysOfWeek)
	c.Exceptions = slices.Clone(r.Exceptions)
	return &c
}

func (r *BlockRecurrence) HasException(date string) bool {
	return slices.Contains(r.Exceptions, date)
}

// AddException records date as skipped, keeping the set sorted and unique.
func (r *BlockRecurrence) AddException(date string) {
	if r.HasException(date) {
		return
	}
	r.Exceptions = append(r.Exceptions, date)
	slices.Sort(r.Exceptions)
}

func NewTaskID() TaskID   { return TaskID(newID("task")) }
func NewBlockID() BlockID { return BlockID(newID("block")) }
func NewSeriesID() SeriesID {
	return SeriesID(newID("series"))
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
