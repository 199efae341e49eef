package todo

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docket/internal/storage"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*Engine, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	e := Open(mem, Options{Now: func() time.Time { return t0 }})
	return e, mem
}

func mustCreate(t *testing.T, e *Engine, text string) Task {
	t.Helper()
	task, err := e.CreateTask(TaskInput{Text: text})
	require.NoError(t, err)
	return task
}

func requireDenseOrder(t *testing.T, e *Engine) {
	t.Helper()
	tasks := e.Tasks()
	orders := make([]int, len(tasks))
	for i, task := range tasks {
		orders[i] = task.Order
	}
	sort.Ints(orders)
	for i, o := range orders {
		require.Equal(t, i, o, "orders not dense: %v", orders)
	}
}

func TestOpen_SeedsFoldersAndPersists(t *testing.T) {
	e, mem := newEngine(t)

	folders := e.Folders()
	require.Len(t, folders, 3)
	assert.Equal(t, InboxID, folders[0].ID)
	assert.True(t, folders[0].IsDefault)
	assert.False(t, folders[1].IsDefault)
	assert.False(t, folders[2].IsDefault)

	stored, err := storage.Load[[]Folder](mem, keyFolders, nil)
	require.NoError(t, err)
	assert.Equal(t, folders, stored)
}

func TestOpen_ReloadsState(t *testing.T) {
	e, mem := newEngine(t)
	a := mustCreate(t, e, "a")
	mustCreate(t, e, "b")
	e.DeleteTask(a.ID)

	reopened := Open(mem, Options{Now: func() time.Time { return t0 }})
	tasks := reopened.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Text)

	c := mustCreate(t, reopened, "c")
	assert.Equal(t, 3, c.ID, "ids keep increasing across restarts")
}

func TestOpen_RepairsCorruptAndOrphanedState(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, storage.Save(mem, keyFolders, []Folder{{ID: "f_work", Name: "Work"}}))
	require.NoError(t, storage.Save(mem, keyTasks, []Task{
		{ID: 4, Text: "late", FolderID: "f_gone", Order: 7},
		{ID: 2, Text: "early", FolderID: "f_work", Order: 3, Priority: PriorityHigh},
	}))
	require.NoError(t, mem.Set(keySeq, []byte("garbage")))

	e := Open(mem, Options{})
	folders := e.Folders()
	require.Len(t, folders, 2)
	assert.Equal(t, InboxID, folders[0].ID)
	assert.True(t, folders[0].IsDefault)

	tasks := e.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "early", tasks[0].Text)
	assert.Equal(t, 0, tasks[0].Order)
	assert.Equal(t, "late", tasks[1].Text)
	assert.Equal(t, 1, tasks[1].Order)
	assert.Equal(t, InboxID, tasks[1].FolderID)
	assert.Equal(t, PriorityMedium, tasks[1].Priority)

	next := mustCreate(t, e, "next")
	assert.Equal(t, 5, next.ID)
}

func TestCreateTask_Defaults(t *testing.T) {
	e, _ := newEngine(t)
	mustCreate(t, e, "first")

	task, err := e.CreateTask(TaskInput{Text: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, InboxID, task.FolderID)
	assert.False(t, task.Completed)
	assert.False(t, task.Notified)
	assert.Equal(t, 1, task.Order)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, DifficultyMedium, task.Difficulty)
	assert.Equal(t, DefaultReminderMinutes, task.ReminderMinutesBefore)
	assert.Equal(t, t0, task.CreatedAt)
	assert.Empty(t, task.Subtasks)
}

func TestCreateTask_AllSelectorMeansInbox(t *testing.T) {
	e, _ := newEngine(t)
	task, err := e.CreateTask(TaskInput{Text: "x", FolderID: AllFolders})
	require.NoError(t, err)
	assert.Equal(t, InboxID, task.FolderID)
}

func TestCreateTask_Validation(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.CreateTask(TaskInput{Text: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.CreateTask(TaskInput{Text: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.CreateTask(TaskInput{Text: "x", FolderID: "f_missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, e.Tasks())
}

func TestCreateTask_WithSubtasks(t *testing.T) {
	e, _ := newEngine(t)
	task, err := e.CreateTask(TaskInput{Text: "trip", Subtasks: []string{"pack", " ", "book"}})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 2)
	assert.NotEmpty(t, task.Subtasks[0].ID)
	assert.NotEqual(t, task.Subtasks[0].ID, task.Subtasks[1].ID)
	done, total := task.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 2, total)
}

func TestUpdateTask(t *testing.T) {
	e, _ := newEngine(t)
	task := mustCreate(t, e, "draft")

	text := "final"
	high := PriorityHigh
	folder := "f_school"
	got, err := e.UpdateTask(task.ID, TaskPatch{Text: &text, Priority: &high, FolderID: &folder})
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, "f_school", got.FolderID)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)

	_, err = e.UpdateTask(999, TaskPatch{Text: &text})
	assert.ErrorIs(t, err, ErrNotFound)

	empty := ""
	_, err = e.UpdateTask(task.ID, TaskPatch{Text: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	stored, _ := e.Task(task.ID)
	assert.Equal(t, "final", stored.Text)
}

func TestUpdateTask_DueChangeClearsNotified(t *testing.T) {
	e, _ := newEngine(t)
	due := t0.Add(10 * time.Minute)
	task, err := e.CreateTask(TaskInput{Text: "call", DueDate: &due, ReminderEnabled: true})
	require.NoError(t, err)

	marked := e.MarkNotified(func(Task) bool { return true })
	require.Len(t, marked, 1)

	desc := "notes"
	got, err := e.UpdateTask(task.ID, TaskPatch{Description: &desc})
	require.NoError(t, err)
	assert.True(t, got.Notified, "unrelated edits keep the flag")

	same := due
	got, err = e.UpdateTask(task.ID, TaskPatch{DueDate: &same})
	require.NoError(t, err)
	assert.True(t, got.Notified, "same due date keeps the flag")

	later := due.Add(time.Hour)
	got, err = e.UpdateTask(task.ID, TaskPatch{DueDate: &later})
	require.NoError(t, err)
	assert.False(t, got.Notified)

	e.MarkNotified(func(Task) bool { return true })
	got, err = e.UpdateTask(task.ID, TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.Notified)
}

func TestUpdateTask_ReplacesSubtasks(t *testing.T) {
	e, _ := newEngine(t)
	task, err := e.CreateTask(TaskInput{Text: "t", Subtasks: []string{"a", "b"}})
	require.NoError(t, err)

	subs := []Subtask{{Text: "only"}}
	got, err := e.UpdateTask(task.ID, TaskPatch{Subtasks: &subs})
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, "only", got.Subtasks[0].Text)
	assert.NotEmpty(t, got.Subtasks[0].ID)

	bad := []Subtask{{Text: " "}}
	_, err = e.UpdateTask(task.ID, TaskPatch{Subtasks: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTask_IdempotentAndDense(t *testing.T) {
	e, _ := newEngine(t)
	a := mustCreate(t, e, "a")
	mustCreate(t, e, "b")
	c := mustCreate(t, e, "c")

	assert.True(t, e.DeleteTask(a.ID))
	assert.False(t, e.DeleteTask(a.ID))
	requireDenseOrder(t, e)

	d := mustCreate(t, e, "d")
	assert.Equal(t, 2, d.Order)
	assert.Greater(t, d.ID, c.ID)
	requireDenseOrder(t, e)
}

func TestToggleTask_DoesNotCascade(t *testing.T) {
	e, _ := newEngine(t)
	task, err := e.CreateTask(TaskInput{Text: "t", Subtasks: []string{"a"}})
	require.NoError(t, err)

	got, err := e.ToggleTask(task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.False(t, got.Subtasks[0].Completed)

	e.ToggleSubtask(task.ID, got.Subtasks[0].ID)
	got, _ = e.Task(task.ID)
	assert.True(t, got.Subtasks[0].Completed)
	assert.True(t, got.Completed)

	e.ToggleSubtask(task.ID, got.Subtasks[0].ID)
	got, _ = e.Task(task.ID)
	assert.False(t, got.Subtasks[0].Completed)
	assert.True(t, got.Completed, "subtask toggles never touch the parent")

	_, err = e.ToggleTask(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleSubtask_UnknownIdsAreNoops(t *testing.T) {
	e, _ := newEngine(t)
	task, err := e.CreateTask(TaskInput{Text: "t", Subtasks: []string{"a"}})
	require.NoError(t, err)

	e.ToggleSubtask(404, task.Subtasks[0].ID)
	e.ToggleSubtask(task.ID, "nope")

	got, _ := e.Task(task.ID)
	assert.False(t, got.Subtasks[0].Completed)
}

func TestAddRemoveSubtask(t *testing.T) {
	e, _ := newEngine(t)
	task := mustCreate(t, e, "t")

	_, err := e.AddSubtask(task.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.AddSubtask(404, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	sub, err := e.AddSubtask(task.ID, "step")
	require.NoError(t, err)
	got, _ := e.Task(task.ID)
	require.Len(t, got.Subtasks, 1)

	require.NoError(t, e.RemoveSubtask(task.ID, "unknown"))
	require.NoError(t, e.RemoveSubtask(task.ID, sub.ID))
	got, _ = e.Task(task.ID)
	assert.Empty(t, got.Subtasks)

	assert.ErrorIs(t, e.RemoveSubtask(404, sub.ID), ErrNotFound)
}

func TestTasks_ReturnsCopies(t *testing.T) {
	e, _ := newEngine(t)
	due := t0.Add(time.Hour)
	task, err := e.CreateTask(TaskInput{Text: "t", DueDate: &due, Subtasks: []string{"a"}})
	require.NoError(t, err)

	snap := e.Tasks()
	snap[0].Text = "mutated"
	snap[0].Subtasks[0].Text = "mutated"
	*snap[0].DueDate = t0

	got, _ := e.Task(task.ID)
	assert.Equal(t, "t", got.Text)
	assert.Equal(t, "a", got.Subtasks[0].Text)
	assert.Equal(t, due, *got.DueDate)
}

type flakyBackend struct {
	*storage.Memory
	fail bool
}

func (f *flakyBackend) Set(key string, value []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(key, value)
}

func TestPersistFailure_KeepsMemoryAndReports(t *testing.T) {
	backend := &flakyBackend{Memory: storage.NewMemory()}
	var reported []error
	e := Open(backend, Options{OnPersistError: func(err error) { reported = append(reported, err) }})
	require.Empty(t, reported)

	backend.fail = true
	task, err := e.CreateTask(TaskInput{Text: "survives"})
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], storage.ErrPersistence)

	got, ok := e.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "survives", got.Text)

	backend.fail = false
	mustCreate(t, e, "later")
	reopened := Open(backend, Options{})
	assert.Len(t, reopened.Tasks(), 2, "the next successful write carries the earlier mutation")
}

func TestMarkNotified_SingleWriteOnlyWhenChanged(t *testing.T) {
	counter := &countingBackend{Memory: storage.NewMemory()}
	e := Open(counter, Options{})
	a := mustCreate(t, e, "a")
	mustCreate(t, e, "b")
	counter.writes = 0

	none := e.MarkNotified(func(Task) bool { return false })
	assert.Empty(t, none)
	assert.Equal(t, 0, counter.writes)

	marked := e.MarkNotified(func(Task) bool { return true })
	assert.Len(t, marked, 2)
	assert.Equal(t, 1, counter.writes)

	again := e.MarkNotified(func(Task) bool { return true })
	assert.Empty(t, again)
	assert.Equal(t, 1, counter.writes)

	got, _ := e.Task(a.ID)
	assert.True(t, got.Notified)
}

type countingBackend struct {
	*storage.Memory
	writes int
}

func (c *countingBackend) Set(key string, value []byte) error {
	c.writes++
	return c.Memory.Set(key, value)
}

func TestSharedBackend_WriterKeepsOtherEnginesTasks(t *testing.T) {
	mem := storage.NewMemory()
	watcher := Open(mem, Options{Now: func() time.Time { return t0 }})
	adder := Open(mem, Options{Now: func() time.Time { return t0 }})

	mustCreate(t, watcher, "first")
	second := mustCreate(t, adder, "second")
	assert.Equal(t, 2, second.ID, "ids continue from the other engine's sequence")

	marked := watcher.MarkNotified(func(task Task) bool { return task.ID == second.ID })
	require.Len(t, marked, 1, "tasks saved by another engine are visible to the next mutation")

	stored, err := storage.Load[[]Task](mem, keyTasks, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "first", stored[0].Text)
	assert.Equal(t, "second", stored[1].Text)
	assert.True(t, stored[1].Notified)

	third := mustCreate(t, adder, "third")
	assert.Equal(t, 3, third.ID)
	assert.True(t, adder.Tasks()[1].Notified)
	requireDenseOrder(t, adder)
}

func TestSharedBackend_DeletesAndFoldersPropagate(t *testing.T) {
	mem := storage.NewMemory()
	a := Open(mem, Options{})
	b := Open(mem, Options{})

	keep := mustCreate(t, a, "keep")
	gone := mustCreate(t, a, "gone")
	f, err := b.CreateFolder("Work", "", "")
	require.NoError(t, err)

	require.True(t, b.DeleteTask(gone.ID))
	_, err = a.UpdateTask(keep.ID, TaskPatch{FolderID: &f.ID})
	require.NoError(t, err, "a folder created by another engine resolves")

	stored, err := storage.Load[[]Task](mem, keyTasks, nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, f.ID, stored[0].FolderID)
}

func TestReload_PicksUpOutsideWrites(t *testing.T) {
	mem := storage.NewMemory()
	reader := Open(mem, Options{})
	writer := Open(mem, Options{})
	mustCreate(t, writer, "from elsewhere")

	assert.Empty(t, reader.Tasks())
	reader.Reload()
	require.Len(t, reader.Tasks(), 1)
	assert.Equal(t, "from elsewhere", reader.Tasks()[0].Text)
}

func TestMutation_DoesNotReloadOwnWrites(t *testing.T) {
	counter := &countingBackend{Memory: storage.NewMemory()}
	e := Open(counter, Options{})
	a := mustCreate(t, e, "a")
	counter.writes = 0

	_, err := e.ToggleTask(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.writes, "only the tasks key is written")
}
