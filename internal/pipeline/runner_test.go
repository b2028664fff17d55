package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charles8li/weekly-calendar/internal/store"
)

func testRunner(t *testing.T) (*Runner, *store.Repo) {
	t.Helper()
	blobs, err := store.Open(t.TempDir())
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	repo := store.NewRepo(blobs, nil, log)
	runner := NewRunner(repo, testApplier(), log)
	runner.Now = func() time.Time { return time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC) }
	return runner, repo
}

const inboxBody = `{"id":"e1","actor":"agent","issued_at":"2024-01-15T07:59:00Z","command":{"type":"create_task","payload":{"id":"task_1","title":"plan week"}}}
{"id":"e2","actor":"agent","issued_at":"2024-01-15T07:59:01Z","command":{"type":"create_block","payload":{"id":"block_1","task_id":"task_1","start":"2024-01-15T09:00:00Z","end":"2024-01-15T10:00:00Z"}}}
`

func TestRun_AppliesAndRecords(t *testing.T) {
	runner, repo := testRunner(t)
	require.NoError(t, repo.WriteResults(store.KeyInbox, inboxBody))

	report, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].OK)
	assert.True(t, report.Results[1].OK)

	tasks, err := repo.LoadTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	blocks, err := repo.LoadBlocks()
	require.NoError(t, err)
	assert.Len(t, blocks, 1)

	// Results appended under a timestamped outbox key.
	assert.True(t, strings.HasPrefix(report.OutboxKey, "outbox-"))
	out, err := repo.ReadBatch(report.OutboxKey)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))

	assert.Equal(t, Signature(inboxBody), repo.LastSignature())
}

func TestRun_UnchangedBatchIsNoOp(t *testing.T) {
	runner, repo := testRunner(t)
	require.NoError(t, repo.WriteResults(store.KeyInbox, inboxBody))

	_, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)

	report, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Empty(t, report.Results)

	// Zero effects: collections unchanged.
	tasks, _ := repo.LoadTasks()
	assert.Len(t, tasks, 1)
	blocks, _ := repo.LoadBlocks()
	assert.Len(t, blocks, 1)
}

func TestRun_ChangedBatchReprocessesInFull(t *testing.T) {
	runner, repo := testRunner(t)
	require.NoError(t, repo.WriteResults(store.KeyInbox, inboxBody))
	_, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)

	extra := inboxBody + `{"id":"e3","actor":"agent","issued_at":"2024-01-15T08:01:00Z","command":{"type":"create_task","payload":{"id":"task_2","title":"retro"}}}` + "\n"
	require.NoError(t, repo.WriteResults(store.KeyInbox, extra))

	report, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Len(t, report.Results, 3)

	// Explicit ids keep the replayed creates idempotent.
	tasks, _ := repo.LoadTasks()
	assert.Len(t, tasks, 2)
}

func TestRun_MissingInboxIsReadFail(t *testing.T) {
	runner, _ := testRunner(t)

	report, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].OK)
	assert.True(t, strings.HasPrefix(report.Results[0].Error, "READ_FAIL:"), report.Results[0].Error)
}

func TestRun_MalformedLineDoesNotAbort(t *testing.T) {
	runner, repo := testRunner(t)
	body := "this is not json\n" + inboxBody
	require.NoError(t, repo.WriteResults(store.KeyInbox, body))

	report, err := runner.Run(store.KeyInbox)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.False(t, report.Results[0].OK)
	assert.True(t, strings.HasPrefix(report.Results[0].Error, "VALIDATION:"), report.Results[0].Error)
	assert.True(t, report.Results[1].OK)
	assert.True(t, report.Results[2].OK)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, Signature("abc"), Signature("abc"))
	assert.NotEqual(t, Signature("abc"), Signature("abd"))
	assert.True(t, strings.HasPrefix(Signature("abc"), "3:"))
}
