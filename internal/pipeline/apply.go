// Package pipeline applies batches of external command envelopes to the
// task/block collections, producing one result per envelope. Writes are
// unconditional: the conflict resolver is never consulted here.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/schedule"
)

// Applier executes command batches. Each command is applied independently; a
// failure is captured in its result and never aborts the rest of the batch.
type Applier struct {
	Loc *time.Location
	Now func() time.Time
}

func NewApplier(loc *time.Location) *Applier {
	if loc == nil {
		loc = time.Local
	}
	return &Applier{Loc: loc, Now: time.Now}
}

// ApplyBatch runs the envelopes in order against the collections and returns
// the per-envelope results plus the updated collections.
func (a *Applier) ApplyBatch(tasks []model.Task, blocks []model.Block, envs []model.Envelope) ([]model.Result, []model.Task, []model.Block) {
	results := make([]model.Result, 0, len(envs))
	for _, env := range envs {
		effects, t2, b2, err := a.applyOne(tasks, blocks, env)
		if err != nil {
			results = append(results, model.Result{For: env.ID, OK: false, Error: err.Error()})
			continue
		}
		tasks, blocks = t2, b2
		results = append(results, model.Result{For: env.ID, OK: true, Effects: effects})
	}
	return results, tasks, blocks
}

func (a *Applier) applyOne(tasks []model.Task, blocks []model.Block, env model.Envelope) ([]string, []model.Task, []model.Block, error) {
	p := env.Command.Payload
	switch env.Command.Type {
	case "create_task":
		return a.cmdCreateTask(tasks, blocks, p)
	case "update_task":
		return a.cmdUpdateTask(tasks, blocks, p)
	case "create_block":
		return a.cmdCreateBlock(tasks, blocks, p)
	case "move_block":
		return a.cmdMoveBlock(tasks, blocks, p)
	case "resize_block":
		return a.cmdResizeBlock(tasks, blocks, p)
	case "complete_block":
		return a.cmdCompleteBlock(tasks, blocks, p)
	case "set_recurrence":
		return a.cmdSetRecurrence(tasks, blocks, p)
	default:
		return nil, nil, nil, fmt.Errorf("UNSUPPORTED: unknown command type %q", env.Command.Type)
	}
}

func (a *Applier) cmdCreateTask(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	now := a.Now()
	t := model.Task{
		ID:        model.TaskID(getStringOr(p, "id")),
		Title:     getStringOr(p, "title"),
		Notes:     getStringPtr(p, "notes"),
		Priority:  getIntPtr(p, "priority"),
		Tags:      getStringSlice(p, "tags"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := decodeField(p, "checklist", &t.Checklist); err != nil {
		return nil, nil, nil, err
	}
	t.Recurrence = getStringPtr(p, "recurrence")

	// A caller-supplied id makes re-creation idempotent: an existing task
	// is overwritten in place rather than duplicated.
	if t.ID != "" {
		for i := range tasks {
			if tasks[i].ID == t.ID {
				t.CreatedAt = tasks[i].CreatedAt
				out := append([]model.Task(nil), tasks...)
				out[i] = t
				return []string{fmt.Sprintf("task %s replaced", t.ID)}, out, blocks, nil
			}
		}
	} else {
		t.ID = model.NewTaskID()
	}
	return []string{fmt.Sprintf("task %s created", t.ID)},
		append(append([]model.Task(nil), tasks...), t), blocks, nil
}

func (a *Applier) cmdUpdateTask(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	id, err := getString(p, "id")
	if err != nil {
		return nil, nil, nil, err
	}
	idx := -1
	for i := range tasks {
		if tasks[i].ID == model.TaskID(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, nil, fmt.Errorf("NOT_FOUND: task %s", id)
	}

	out := append([]model.Task(nil), tasks...)
	t := &out[idx]
	if v, ok := p["title"]; ok {
		if s, ok := v.(string); ok {
			t.Title = s
		}
	}
	if _, ok := p["notes"]; ok {
		t.Notes = getStringPtr(p, "notes")
	}
	if _, ok := p["priority"]; ok {
		t.Priority = getIntPtr(p, "priority")
	}
	if _, ok := p["tags"]; ok {
		t.Tags = getStringSlice(p, "tags")
	}
	if _, ok := p["recurrence"]; ok {
		t.Recurrence = getStringPtr(p, "recurrence")
	}
	if _, ok := p["checklist"]; ok {
		var items []model.ChecklistItem
		if err := decodeField(p, "checklist", &items); err != nil {
			return nil, nil, nil, err
		}
		t.Checklist = items
	}
	t.Touch(a.Now())
	return []string{fmt.Sprintf("task %s updated", id)}, out, blocks, nil
}

func (a *Applier) cmdCreateBlock(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	start, err := getTime(p, "start", a.Loc)
	if err != nil {
		return nil, nil, nil, err
	}
	end, err := getTime(p, "end", a.Loc)
	if err != nil {
		return nil, nil, nil, err
	}
	b := model.Block{
		ID:            model.BlockID(getStringOr(p, "id")),
		TaskID:        model.TaskID(getStringOr(p, "task_id")),
		Title:         getStringPtr(p, "title"),
		NotesOverride: getStringPtr(p, "notes_override"),
		Start:         start,
		End:           end,
		Status:        model.StatusPlanned,
		Rev:           1,
	}
	if s := getStringOr(p, "status"); s != "" {
		b.Status = model.BlockStatus(s)
	}

	if b.ID != "" {
		for i := range blocks {
			if blocks[i].ID == b.ID {
				b.Rev = blocks[i].Rev + 1
				b.Recurrence = blocks[i].Recurrence
				out := append([]model.Block(nil), blocks...)
				out[i] = b
				return []string{fmt.Sprintf("block %s replaced", b.ID)}, tasks, out, nil
			}
		}
	} else {
		b.ID = model.NewBlockID()
	}
	return []string{fmt.Sprintf("block %s created", b.ID)},
		tasks, append(append([]model.Block(nil), blocks...), b), nil
}

func (a *Applier) cmdMoveBlock(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	id, err := getString(p, "id")
	if err != nil {
		return nil, nil, nil, err
	}
	start, err := getTime(p, "start", a.Loc)
	if err != nil {
		return nil, nil, nil, err
	}
	end, err := getTime(p, "end", a.Loc)
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := schedule.MoveBlock(blocks, model.BlockID(id), start, end)
	if err != nil {
		return nil, nil, nil, tagNotFound(err, "block", id)
	}
	return []string{fmt.Sprintf("block %s moved", id)}, tasks, out, nil
}

func (a *Applier) cmdResizeBlock(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	id, err := getString(p, "id")
	if err != nil {
		return nil, nil, nil, err
	}
	end, err := getTime(p, "end", a.Loc)
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := schedule.ResizeBlock(blocks, model.BlockID(id), end)
	if err != nil {
		return nil, nil, nil, tagNotFound(err, "block", id)
	}
	return []string{fmt.Sprintf("block %s resized", id)}, tasks, out, nil
}

func (a *Applier) cmdCompleteBlock(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	id, err := getString(p, "id")
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := schedule.CompleteBlock(blocks, model.BlockID(id))
	if err != nil {
		return nil, nil, nil, tagNotFound(err, "block", id)
	}
	return []string{fmt.Sprintf("block %s completed", id)}, tasks, out, nil
}

func (a *Applier) cmdSetRecurrence(tasks []model.Task, blocks []model.Block, p map[string]any) ([]string, []model.Task, []model.Block, error) {
	id, err := getString(p, "id")
	if err != nil {
		return nil, nil, nil, err
	}
	idx := -1
	for i := range blocks {
		if blocks[i].ID == model.BlockID(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, nil, fmt.Errorf("NOT_FOUND: block %s", id)
	}

	out := append([]model.Block(nil), blocks...)
	b := &out[idx]

	if v, ok := p["recurrence"]; !ok || v == nil {
		b.Recurrence = nil
		b.Bump()
		return []string{fmt.Sprintf("block %s recurrence cleared", id)}, tasks, out, nil
	}

	var rec model.BlockRecurrence
	if err := decodeField(p, "recurrence", &rec); err != nil {
		return nil, nil, nil, err
	}
	switch rec.Type {
	case model.RecurDaily, model.RecurWeekly:
	default:
		return nil, nil, nil, fmt.Errorf("VALIDATION: recurrence type must be daily or weekly")
	}
	if rec.ID == "" {
		rec.ID = model.NewSeriesID()
	}
	b.Recurrence = &rec
	b.Bump()
	return []string{fmt.Sprintf("block %s recurrence set (%s)", id, rec.ID)}, tasks, out, nil
}

func tagNotFound(err error, kind, id string) error {
	if errors.Is(err, schedule.ErrNotFound) {
		return fmt.Errorf("NOT_FOUND: %s %s", kind, id)
	}
	return fmt.Errorf("VALIDATION: %v", err)
}

// Payload helpers. JSON numbers arrive as float64.

func getString(p map[string]any, key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("VALIDATION: missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("VALIDATION: field %q must be a string", key)
	}
	return s, nil
}

func getStringOr(p map[string]any, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

func getStringPtr(p map[string]any, key string) *string {
	if s, ok := p[key].(string); ok {
		return &s
	}
	return nil
}

func getIntPtr(p map[string]any, key string) *int {
	if f, ok := p[key].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func getStringSlice(p map[string]any, key string) []string {
	arr, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getTime(p map[string]any, key string, loc *time.Location) (time.Time, error) {
	s, err := getString(p, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("VALIDATION: field %q must be RFC 3339: %v", key, err)
	}
	return t.In(loc), nil
}

// decodeField re-marshals a nested payload value into out.
func decodeField(p map[string]any, key string, out any) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("VALIDATION: field %q: %v", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("VALIDATION: field %q: %v", key, err)
	}
	return nil
}
