package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Text        string
	Description string
	// FolderID may be empty or AllFolders, both meaning the inbox.
	FolderID              string
	Priority              Priority
	Difficulty            Difficulty
	DueDate               *time.Time
	ReminderEnabled       bool
	ReminderMinutesBefore int
	Subtasks              []string
}

// TaskPatch is a field-level edit. Nil fields are left alone. Subtasks, when
// set, replaces the whole list.
type TaskPatch struct {
	Text                  *string
	Description           *string
	FolderID              *string
	Priority              *Priority
	Difficulty            *Difficulty
	DueDate               *time.Time
	ClearDueDate          bool
	ReminderEnabled       *bool
	ReminderMinutesBefore *int
	Completed             *bool
	Subtasks              *[]Subtask
}

func (e *Engine) Tasks() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTasks(e.tasks)
}

func (e *Engine) Task(id int) (Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.taskIndex(id)
	if i < 0 {
		return Task{}, false
	}
	return e.tasks[i].clone(), true
}

func (e *Engine) taskIndex(id int) int {
	for i, t := range e.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// resolveFolderLocked maps the empty and "all" selectors to the inbox and
// rejects ids that name no folder.
func (e *Engine) resolveFolderLocked(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == AllFolders {
		return defaultFolderID(e.folders), nil
	}
	if e.folderIndex(id) < 0 {
		return "", fmt.Errorf("%w: folder %q", ErrNotFound, id)
	}
	return id, nil
}

func (e *Engine) CreateTask(in TaskInput) (Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Task{}, fmt.Errorf("%w: task text is empty", ErrValidation)
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	if !difficulty.Valid() {
		return Task{}, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, difficulty)
	}
	minutes := in.ReminderMinutesBefore
	if minutes <= 0 {
		minutes = e.reminderMinutes
	}
	subtasks := []Subtask{}
	for _, s := range in.Subtasks {
		if s = strings.TrimSpace(s); s != "" {
			subtasks = append(subtasks, Subtask{ID: uuid.NewString(), Text: s})
		}
	}

	var created Task
	err := e.mutate(func() ([]string, error) {
		folderID, err := e.resolveFolderLocked(in.FolderID)
		if err != nil {
			return nil, err
		}
		e.seq++
		t := Task{
			ID:                    e.seq,
			Text:                  text,
			Description:           strings.TrimSpace(in.Description),
			FolderID:              folderID,
			Priority:              priority,
			Difficulty:            difficulty,
			CreatedAt:             e.now(),
			ReminderEnabled:       in.ReminderEnabled,
			ReminderMinutesBefore: minutes,
			Subtasks:              subtasks,
			Order:                 len(e.tasks),
		}
		if in.DueDate != nil {
			d := *in.DueDate
			t.DueDate = &d
		}
		next := make([]Task, 0, len(e.tasks)+1)
		next = append(next, e.tasks...)
		e.tasks = append(next, t)
		created = t.clone()
		return []string{keyTasks, keySeq}, nil
	})
	return created, err
}

// UpdateTask merges patch into the task. Changing the due date re-arms the
// reminder by clearing Notified.
func (e *Engine) UpdateTask(id int, patch TaskPatch) (Task, error) {
	var updated Task
	err := e.mutate(func() ([]string, error) {
		i := e.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		t := e.tasks[i].clone()
		if patch.Text != nil {
			text := strings.TrimSpace(*patch.Text)
			if text == "" {
				return nil, fmt.Errorf("%w: task text is empty", ErrValidation)
			}
			t.Text = text
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.FolderID != nil {
			folderID, err := e.resolveFolderLocked(*patch.FolderID)
			if err != nil {
				return nil, err
			}
			t.FolderID = folderID
		}
		if patch.Priority != nil {
			if !patch.Priority.Valid() {
				return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
			}
			t.Priority = *patch.Priority
		}
		if patch.Difficulty != nil {
			if !patch.Difficulty.Valid() {
				return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, *patch.Difficulty)
			}
			t.Difficulty = *patch.Difficulty
		}
		if patch.ReminderEnabled != nil {
			t.ReminderEnabled = *patch.ReminderEnabled
		}
		if patch.ReminderMinutesBefore != nil {
			if *patch.ReminderMinutesBefore <= 0 {
				return nil, fmt.Errorf("%w: reminder lead time must be positive", ErrValidation)
			}
			t.ReminderMinutesBefore = *patch.ReminderMinutesBefore
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		if patch.Subtasks != nil {
			subs := make([]Subtask, 0, len(*patch.Subtasks))
			for _, s := range *patch.Subtasks {
				s.Text = strings.TrimSpace(s.Text)
				if s.Text == "" {
					return nil, fmt.Errorf("%w: subtask text is empty", ErrValidation)
				}
				if s.ID == "" {
					s.ID = uuid.NewString()
				}
				subs = append(subs, s)
			}
			t.Subtasks = subs
		}

		old := e.tasks[i].DueDate
		switch {
		case patch.ClearDueDate:
			t.DueDate = nil
		case patch.DueDate != nil:
			d := *patch.DueDate
			t.DueDate = &d
		}
		if !sameDue(old, t.DueDate) {
			t.Notified = false
		}

		e.tasks = replaceTask(e.tasks, i, t)
		updated = t.clone()
		return []string{keyTasks}, nil
	})
	return updated, err
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func replaceTask(tasks []Task, i int, t Task) []Task {
	next := make([]Task, len(tasks))
	copy(next, tasks)
	next[i] = t
	return next
}

// DeleteTask removes the task. Unknown ids are a no-op so repeated deletes
// are safe; it reports whether a task was removed.
func (e *Engine) DeleteTask(id int) bool {
	removed := false
	_ = e.mutate(func() ([]string, error) {
		i := e.taskIndex(id)
		if i < 0 {
			return nil, nil
		}
		next := make([]Task, 0, len(e.tasks)-1)
		next = append(next, e.tasks[:i]...)
		next = append(next, e.tasks[i+1:]...)
		e.tasks = renumber(next)
		removed = true
		return []string{keyTasks}, nil
	})
	return removed
}

// ToggleTask flips Completed. Subtasks are left as they are.
func (e *Engine) ToggleTask(id int) (Task, error) {
	var out Task
	err := e.mutate(func() ([]string, error) {
		i := e.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		t := e.tasks[i].clone()
		t.Completed = !t.Completed
		e.tasks = replaceTask(e.tasks, i, t)
		out = t.clone()
		return []string{keyTasks}, nil
	})
	return out, err
}

// ToggleSubtask flips one subtask. Unknown task or subtask ids are ignored.
func (e *Engine) ToggleSubtask(taskID int, subtaskID string) {
	_ = e.mutate(func() ([]string, error) {
		i := e.taskIndex(taskID)
		if i < 0 {
			return nil, nil
		}
		t := e.tasks[i].clone()
		found := false
		for j := range t.Subtasks {
			if t.Subtasks[j].ID == subtaskID {
				t.Subtasks[j].Completed = !t.Subtasks[j].Completed
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
		e.tasks = replaceTask(e.tasks, i, t)
		return []string{keyTasks}, nil
	})
}

func (e *Engine) AddSubtask(taskID int, text string) (Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Subtask{}, fmt.Errorf("%w: subtask text is empty", ErrValidation)
	}
	sub := Subtask{ID: uuid.NewString(), Text: text}
	err := e.mutate(func() ([]string, error) {
		i := e.taskIndex(taskID)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		t := e.tasks[i].clone()
		t.Subtasks = append(t.Subtasks, sub)
		e.tasks = replaceTask(e.tasks, i, t)
		return []string{keyTasks}, nil
	})
	return sub, err
}

// RemoveSubtask drops a subtask. An unknown subtask id is a no-op.
func (e *Engine) RemoveSubtask(taskID int, subtaskID string) error {
	return e.mutate(func() ([]string, error) {
		i := e.taskIndex(taskID)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		t := e.tasks[i].clone()
		subs := make([]Subtask, 0, len(t.Subtasks))
		for _, s := range t.Subtasks {
			if s.ID != subtaskID {
				subs = append(subs, s)
			}
		}
		if len(subs) == len(t.Subtasks) {
			return nil, nil
		}
		t.Subtasks = subs
		e.tasks = replaceTask(e.tasks, i, t)
		return []string{keyTasks}, nil
	})
}

// MarkNotified sets Notified on every task for which due reports true, as a
// single update with at most one write. It returns the tasks it marked.
// Tasks that are already notified are never offered to due.
func (e *Engine) MarkNotified(due func(Task) bool) []Task {
	var marked []Task
	_ = e.mutate(func() ([]string, error) {
		var next []Task
		for i, t := range e.tasks {
			if t.Notified || !due(t) {
				continue
			}
			if next == nil {
				next = make([]Task, len(e.tasks))
				copy(next, e.tasks)
			}
			t.Notified = true
			next[i] = t
			marked = append(marked, t.clone())
		}
		if next == nil {
			return nil, nil
		}
		e.tasks = next
		return []string{keyTasks}, nil
	})
	return marked
}
