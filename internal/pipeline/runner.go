package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/store"
)

// Runner drives one full ingestion pass: read the inbox, dedup by batch
// signature, apply, persist both collections, append an outbox record.
type Runner struct {
	Repo    *store.Repo
	Applier *Applier
	Log     *logrus.Logger
	Now     func() time.Time
}

func NewRunner(repo *store.Repo, applier *Applier, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.New()
	}
	return &Runner{Repo: repo, Applier: applier, Log: log, Now: time.Now}
}

// Report summarizes one Run.
type Report struct {
	Skipped   bool
	Signature string
	Results   []model.Result
	OutboxKey string
}

// Run processes the named inbox blob once. An unchanged batch (same
// signature as the last applied one) is skipped entirely: zero commands
// applied, empty result, no outbox record.
func (r *Runner) Run(inboxKey string) (Report, error) {
	raw, err := r.Repo.ReadBatch(inboxKey)
	if err != nil {
		// The inbox being unreadable is itself a reportable outcome.
		res := []model.Result{{OK: false, Error: fmt.Sprintf("READ_FAIL: %v", err)}}
		key, werr := r.writeOutbox(res)
		if werr != nil {
			return Report{}, werr
		}
		r.Log.WithError(err).WithField("inbox", inboxKey).Warn("inbox unreadable")
		return Report{Results: res, OutboxKey: key}, nil
	}

	sig := Signature(raw)
	if sig == r.Repo.LastSignature() {
		r.Log.WithField("signature", sig).Debug("batch unchanged, skipping")
		return Report{Skipped: true, Signature: sig}, nil
	}

	envs, parseResults := ParseBatch(raw)

	tasks, err := r.Repo.LoadTasks()
	if err != nil {
		parseResults = append(parseResults, model.Result{OK: false, Error: fmt.Sprintf("READ_FAIL: tasks: %v", err)})
		tasks = []model.Task{}
	}
	blocks, err := r.Repo.LoadBlocks()
	if err != nil {
		parseResults = append(parseResults, model.Result{OK: false, Error: fmt.Sprintf("READ_FAIL: blocks: %v", err)})
		blocks = []model.Block{}
	}

	results, tasks, blocks := r.Applier.ApplyBatch(tasks, blocks, envs)
	results = append(parseResults, results...)

	if err := r.Repo.SaveTasks(tasks); err != nil {
		return Report{}, err
	}
	if err := r.Repo.SaveBlocks(blocks); err != nil {
		return Report{}, err
	}

	key, err := r.writeOutbox(results)
	if err != nil {
		return Report{}, err
	}
	if err := r.Repo.SetSignature(sig); err != nil {
		return Report{}, err
	}

	ok := 0
	for _, res := range results {
		if res.OK {
			ok++
		}
	}
	r.Log.WithFields(logrus.Fields{
		"applied": len(results),
		"ok":      ok,
		"outbox":  key,
	}).Info("batch applied")

	return Report{Signature: sig, Results: results, OutboxKey: key}, nil
}

func (r *Runner) writeOutbox(results []model.Result) (string, error) {
	now := r.Now().UTC()
	key := "outbox-" + now.Format("20060102T150405.000000000Z")
	var sb strings.Builder
	for _, res := range results {
		b, err := json.Marshal(res)
		if err != nil {
			return "", err
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	if err := r.Repo.WriteResults(key, sb.String()); err != nil {
		return "", err
	}
	return key, nil
}

// ParseBatch splits a JSON-Lines inbox into envelopes. Unparseable lines
// become failed results rather than aborting the batch.
func ParseBatch(raw string) ([]model.Envelope, []model.Result) {
	envs := []model.Envelope{}
	failures := []model.Result{}
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var env model.Envelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			failures = append(failures, model.Result{
				OK:    false,
				Error: fmt.Sprintf("VALIDATION: line %d: %v", i+1, err),
			})
			continue
		}
		envs = append(envs, env)
	}
	return envs, failures
}
