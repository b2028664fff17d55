// Package store persists the calendar as named text blobs: two JSON-Lines
// collections (tasks, blocks), a JSON-Lines command inbox, timestamped
// outbox records, and a single-value batch signature.
package store

import (
	"os"

	"github.com/peterbourgon/diskv/v3"
)

const (
	KeyTasks     = "tasks"
	KeyBlocks    = "blocks"
	KeyInbox     = "inbox"
	KeySignature = "signature"
)

// Blobs is the opaque key-value text store the engine talks to. Writes
// replace the whole blob; there is no partial write.
type Blobs struct {
	d *diskv.Diskv
}

// Open backs the blob store with a flat directory of files, one per key.
func Open(dataDir string) (*Blobs, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Blobs{
		d: diskv.New(diskv.Options{
			BasePath:     dataDir,
			Transform:    func(string) []string { return nil },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}, nil
}

func (b *Blobs) Read(key string) (string, error) {
	raw, err := b.d.Read(key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (b *Blobs) Write(key, text string) error {
	return b.d.Write(key, []byte(text))
}

func (b *Blobs) Has(key string) bool {
	return b.d.Has(key)
}

func (b *Blobs) Erase(key string) error {
	return b.d.Erase(key)
}
