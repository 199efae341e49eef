package todo

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"docket/internal/storage"
)

const (
	keyTasks   = "tasks"
	keyFolders = "folders"
	keySeq     = "task_seq"
)

type Options struct {
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
	// ReminderMinutes is the lead time given to new tasks that do not set one.
	ReminderMinutes int
	// OnPersistError is called, outside the engine lock, after a write fails.
	OnPersistError func(error)
}

// Engine owns the folder and task collections. Every mutation runs under a
// single lock and replaces the collection it touches with a new slice, so a
// reader always observes a whole pre- or post-mutation state.
//
// Other processes may write the same backend. Before each mutation the engine
// reloads any key whose stored bytes differ from what it last read or wrote,
// so its write never replaces their changes with a stale copy.
//
// The tasks slice is kept in manual order: tasks[i].Order == i.
type Engine struct {
	mu      sync.Mutex
	backend *storage.Tracked
	now     func() time.Time
	log     *slog.Logger

	reminderMinutes int
	onPersistError  func(error)

	folders []Folder
	tasks   []Task
	seq     int
}

// Open loads the persisted collections from backend, seeding the default
// folders on first run and repairing any broken invariants found on disk.
// A missing or corrupt value never fails Open.
func Open(backend storage.Backend, opts Options) *Engine {
	e := &Engine{
		backend:         storage.Track(backend),
		now:             opts.Now,
		log:             opts.Logger,
		reminderMinutes: opts.ReminderMinutes,
		onPersistError:  opts.OnPersistError,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.reminderMinutes <= 0 {
		e.reminderMinutes = DefaultReminderMinutes
	}

	e.mu.Lock()
	var perr error
	if dirty := e.loadLocked(); len(dirty) > 0 {
		perr = e.persistLocked(dirty)
	}
	e.mu.Unlock()
	e.report(perr, e.onPersistError)
	return e
}

// loadLocked replaces the collections with the stored ones and repairs them.
// A key that is missing or unreadable keeps its in-memory value. It returns
// the keys whose repaired value differs from what is stored.
func (e *Engine) loadLocked() []string {
	folders, err := storage.Load(e.backend, keyFolders, e.folders)
	if err != nil {
		e.log.Warn("load folders", "err", err)
	}
	tasks, err := storage.Load(e.backend, keyTasks, e.tasks)
	if err != nil {
		e.log.Warn("load tasks", "err", err)
	}
	seq, err := storage.Load(e.backend, keySeq, e.seq)
	if err != nil {
		e.log.Warn("load task sequence", "err", err)
	}

	var dirty []string
	if folders == nil {
		folders = DefaultFolders()
		dirty = append(dirty, keyFolders)
	}
	folders, fixedFolders := repairFolders(folders)
	if fixedFolders {
		dirty = append(dirty, keyFolders)
	}
	tasks, fixedTasks := repairTasks(tasks, folders)
	if fixedTasks {
		dirty = append(dirty, keyTasks)
	}
	// Ids are never reused, even when this engine allocated one whose
	// sequence write failed.
	if e.seq > seq {
		seq = e.seq
	}
	for _, t := range tasks {
		if t.ID > seq {
			seq = t.ID
		}
	}

	e.folders = folders
	e.tasks = tasks
	e.seq = seq
	return dirty
}

// reloadLocked calls loadLocked when another writer changed any key since
// this engine last touched it.
func (e *Engine) reloadLocked() []string {
	stale := false
	for _, k := range []string{keyFolders, keyTasks, keySeq} {
		changed, err := e.backend.Changed(k)
		if err != nil {
			e.log.Warn("check stored value", "key", k, "err", err)
			continue
		}
		stale = stale || changed
	}
	if !stale {
		return nil
	}
	e.log.Debug("reloading values written by another process")
	return e.loadLocked()
}

// Reload picks up values written to the backend by another process.
func (e *Engine) Reload() {
	e.mu.Lock()
	var perr error
	if dirty := e.reloadLocked(); len(dirty) > 0 {
		perr = e.persistLocked(dirty)
	}
	hook := e.onPersistError
	e.mu.Unlock()
	e.report(perr, hook)
}

func repairFolders(in []Folder) ([]Folder, bool) {
	out := make([]Folder, 0, len(in)+1)
	changed := false
	seen := map[string]bool{}
	hasDefault := false
	for _, f := range in {
		if f.ID == "" || seen[f.ID] {
			changed = true
			continue
		}
		seen[f.ID] = true
		if f.IsDefault {
			if hasDefault {
				f.IsDefault = false
				changed = true
			}
			hasDefault = true
		}
		out = append(out, f)
	}
	if hasDefault {
		return out, changed
	}
	for i := range out {
		if out[i].ID == InboxID {
			out[i].IsDefault = true
			return out, true
		}
	}
	return append([]Folder{DefaultFolders()[0]}, out...), true
}

func repairTasks(in []Task, folders []Folder) ([]Task, bool) {
	inbox := defaultFolderID(folders)
	out := cloneTasks(in)
	changed := false
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		t := &out[i]
		if t.Order != i {
			t.Order = i
			changed = true
		}
		if !hasFolder(folders, t.FolderID) {
			t.FolderID = inbox
			changed = true
		}
		if !t.Priority.Valid() {
			t.Priority = PriorityMedium
			changed = true
		}
		if !t.Difficulty.Valid() {
			t.Difficulty = DifficultyMedium
			changed = true
		}
	}
	return out, changed
}

func defaultFolderID(folders []Folder) string {
	for _, f := range folders {
		if f.IsDefault {
			return f.ID
		}
	}
	return InboxID
}

func hasFolder(folders []Folder, id string) bool {
	for _, f := range folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

// mutate reloads stale values, then runs fn under the engine lock. fn
// returns the storage keys it changed; those are written before the lock is
// released.
func (e *Engine) mutate(fn func() ([]string, error)) error {
	e.mu.Lock()
	dirty := e.reloadLocked()
	keys, err := fn()
	var perr error
	if err == nil && len(keys) > 0 {
		perr = e.persistLocked(append(keys, dirty...))
	}
	hook := e.onPersistError
	e.mu.Unlock()
	e.report(perr, hook)
	return err
}

func (e *Engine) persistLocked(keys []string) error {
	var errs []error
	done := map[string]bool{}
	for _, k := range keys {
		if done[k] {
			continue
		}
		done[k] = true
		var err error
		switch k {
		case keyTasks:
			err = storage.Save(e.backend, keyTasks, e.tasks)
		case keyFolders:
			err = storage.Save(e.backend, keyFolders, e.folders)
		case keySeq:
			err = storage.Save(e.backend, keySeq, e.seq)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) report(err error, hook func(error)) {
	if err == nil {
		return
	}
	e.log.Warn("persist failed; in-memory state kept", "err", err)
	if hook != nil {
		hook(err)
	}
}

// SetPersistErrorHook replaces the hook installed through Options.
func (e *Engine) SetPersistErrorHook(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPersistError = fn
}

// Now reports the engine clock.
func (e *Engine) Now() time.Time { return e.now() }
