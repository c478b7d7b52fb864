// Package persist mirrors store state to durable JSON snapshot files.
//
// Each store owns one snapshot record, rewritten wholesale after every
// state change. Writes go through a temp file + rename so readers never
// observe a partial snapshot, and a flock guard serializes writers across
// processes.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/untoldecay/flowai/internal/types"
)

// LockTimeout bounds how long a writer waits on the cross-process snapshot
// lock before giving up. The CLI overrides it from the lock-timeout config
// key at startup.
var LockTimeout = 30 * time.Second

// lockRetryDelay is the poll interval while waiting on the snapshot lock.
const lockRetryDelay = 50 * time.Millisecond

// SchemaVersion tags every snapshot so future readers can migrate or
// refuse explicitly instead of guessing compatibility.
const SchemaVersion = 1

// Snapshot file names under the workspace data directory.
const (
	TasksFile   = "tasks.json"
	TicketsFile = "tickets.json"
)

// ErrUnknownVersion is returned when a snapshot carries a schema version
// this build does not understand.
var ErrUnknownVersion = fmt.Errorf("unknown snapshot schema version")

// TaskSnapshot is the durable record owned by the task store.
type TaskSnapshot struct {
	Version    int               `json:"version"`
	Tasks      []types.Task      `json:"tasks"`
	InboxItems []types.InboxItem `json:"inbox_items"`
	ViewMode   types.ViewMode    `json:"view_mode,omitempty"`
}

// TicketSnapshot is the durable record owned by the ticket store.
type TicketSnapshot struct {
	Version int            `json:"version"`
	Tickets []types.Ticket `json:"tickets"`
}

// LoadTasks reads the task snapshot at path. A missing file is a first
// run, not an error: it returns (nil, nil).
func LoadTasks(path string) (*TaskSnapshot, error) {
	var snap TaskSnapshot
	found, err := load(path, &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if snap.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d in %s", ErrUnknownVersion, snap.Version, path)
	}
	return &snap, nil
}

// SaveTasks rewrites the task snapshot wholesale.
func SaveTasks(path string, snap *TaskSnapshot) error {
	snap.Version = SchemaVersion
	return save(path, snap)
}

// LoadTickets reads the ticket snapshot at path; (nil, nil) on first run.
func LoadTickets(path string) (*TicketSnapshot, error) {
	var snap TicketSnapshot
	found, err := load(path, &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if snap.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d in %s", ErrUnknownVersion, snap.Version, path)
	}
	return &snap, nil
}

// SaveTickets rewrites the ticket snapshot wholesale.
func SaveTickets(path string, snap *TicketSnapshot) error {
	snap.Version = SchemaVersion
	return save(path, snap)
}

func load(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return true, nil
}

// save writes v to path atomically. The last writer wins; within one
// process all writes already serialize through the owning store's lock.
func save(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("snapshot lock held by another process: %s", path)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
