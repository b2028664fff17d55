package store

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/recurrence"
)

// Repo is the engine's view of persisted state. Loading blocks runs the
// recurrence pass and persists the collection when it materialized or pruned
// anything, so every observer sees a populated horizon.
type Repo struct {
	blobs  *Blobs
	engine *recurrence.Engine
	log    *logrus.Logger
}

func NewRepo(blobs *Blobs, engine *recurrence.Engine, log *logrus.Logger) *Repo {
	if log == nil {
		log = logrus.New()
	}
	return &Repo{blobs: blobs, engine: engine, log: log}
}

func (r *Repo) LoadTasks() ([]model.Task, error) {
	if !r.blobs.Has(KeyTasks) {
		return []model.Task{}, nil
	}
	raw, err := r.blobs.Read(KeyTasks)
	if err != nil {
		return nil, err
	}
	return decodeLines[model.Task](raw, r.log, KeyTasks), nil
}

func (r *Repo) SaveTasks(tasks []model.Task) error {
	text, err := encodeLines(tasks)
	if err != nil {
		return err
	}
	return r.blobs.Write(KeyTasks, text)
}

// LoadBlocks reads the block collection and materializes recurrences across
// the horizon before anything else observes it.
func (r *Repo) LoadBlocks() ([]model.Block, error) {
	blocks := []model.Block{}
	if r.blobs.Has(KeyBlocks) {
		raw, err := r.blobs.Read(KeyBlocks)
		if err != nil {
			return nil, err
		}
		blocks = decodeLines[model.Block](raw, r.log, KeyBlocks)
	}

	if r.engine == nil {
		return blocks, nil
	}
	materialized, mutated := r.engine.Materialize(blocks)
	if mutated {
		r.log.WithField("blocks", len(materialized)).Debug("recurrence pass mutated collection")
		if err := r.SaveBlocks(materialized); err != nil {
			return nil, err
		}
	}
	return materialized, nil
}

func (r *Repo) SaveBlocks(blocks []model.Block) error {
	text, err := encodeLines(blocks)
	if err != nil {
		return err
	}
	return r.blobs.Write(KeyBlocks, text)
}

// ReadBatch returns the raw inbox text. Absence is an error the caller maps
// to READ_FAIL.
func (r *Repo) ReadBatch(name string) (string, error) {
	return r.blobs.Read(name)
}

// WriteResults writes one processing run's results under a fresh name,
// never overwriting prior results.
func (r *Repo) WriteResults(name, text string) error {
	return r.blobs.Write(name, text)
}

// LastSignature returns the signature of the last applied batch, or "".
func (r *Repo) LastSignature() string {
	if !r.blobs.Has(KeySignature) {
		return ""
	}
	sig, err := r.blobs.Read(KeySignature)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(sig)
}

func (r *Repo) SetSignature(sig string) error {
	return r.blobs.Write(KeySignature, sig)
}

// encodeLines renders one JSON object per line in collection order.
func encodeLines[T any](items []T) (string, error) {
	var sb strings.Builder
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// decodeLines parses JSON-Lines, logging and skipping lines that do not
// parse so one corrupt record cannot take the collection down.
func decodeLines[T any](raw string, log *logrus.Logger, key string) []T {
	out := []T{}
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.WithFields(logrus.Fields{"key": key, "line": i + 1}).
				WithError(err).Warn("skipping unparseable record")
			continue
		}
		out = append(out, item)
	}
	return out
}
