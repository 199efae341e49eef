// Package todo holds the task and folder engine: the data model, the
// invariant-preserving mutations over it, and their persistence.
package todo

import (
	"fmt"
	"strings"
	"time"
)

const (
	// AllFolders is the pseudo-folder selector meaning "every folder".
	AllFolders = "all"
	// InboxID is the id of the seeded default folder.
	InboxID = "f_inbox"

	DefaultReminderMinutes = 15
)

type Priority string

const (
	PriorityVeryLow  Priority = "very-low"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very-high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityVeryLow, PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh}

// Rank orders priorities; very-high is 5, very-low is 1, anything unknown is 0.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i + 1
		}
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "very-easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very-hard"
)

var Difficulties = []Difficulty{DifficultyVeryEasy, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// ParsePriority accepts the canonical names plus a 1..5 shorthand.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		return Priorities[s[0]-'1'], nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
	}
	return p, nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DifficultyMedium, nil
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		return Difficulties[s[0]-'1'], nil
	}
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrValidation, s)
	}
	return d, nil
}

type Folder struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	Icon      string `json:"icon" yaml:"icon" toml:"icon"`
	Color     string `json:"color" yaml:"color" toml:"color"`
	IsDefault bool   `json:"isDefault,omitempty" yaml:"isDefault,omitempty" toml:"isDefault,omitempty"`
}

type Subtask struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Text      string `json:"text" yaml:"text" toml:"text"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

type Task struct {
	ID                    int        `json:"id" yaml:"id" toml:"id"`
	Text                  string     `json:"text" yaml:"text" toml:"text"`
	Description           string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Completed             bool       `json:"completed" yaml:"completed" toml:"completed"`
	FolderID              string     `json:"folderId" yaml:"folderId" toml:"folderId"`
	Priority              Priority   `json:"priority" yaml:"priority" toml:"priority"`
	Difficulty            Difficulty `json:"difficulty" yaml:"difficulty" toml:"difficulty"`
	DueDate               *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty" toml:"dueDate,omitempty"`
	CreatedAt             time.Time  `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
	ReminderEnabled       bool       `json:"reminderEnabled,omitempty" yaml:"reminderEnabled,omitempty" toml:"reminderEnabled,omitempty"`
	ReminderMinutesBefore int        `json:"reminderMinutesBefore,omitempty" yaml:"reminderMinutesBefore,omitempty" toml:"reminderMinutesBefore,omitempty"`
	Notified              bool       `json:"notified" yaml:"notified" toml:"notified"`
	Subtasks              []Subtask  `json:"subtasks" yaml:"subtasks" toml:"subtasks"`
	Order                 int        `json:"order" yaml:"order" toml:"order"`
}

// LeadTime is how long before the due date the reminder window opens.
func (t Task) LeadTime() time.Duration {
	m := t.ReminderMinutesBefore
	if m <= 0 {
		m = DefaultReminderMinutes
	}
	return time.Duration(m) * time.Minute
}

// Progress returns completed and total subtask counts.
func (t Task) Progress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

func (t Task) clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	return c
}

// DefaultFolders is the first-run folder set.
func DefaultFolders() []Folder {
	return []Folder{
		{ID: InboxID, Name: "Inbox", Icon: "Inbox", Color: "#6196ff", IsDefault: true},
		{ID: "f_school", Name: "School", Icon: "GraduationCap", Color: "#f97316"},
		{ID: "f_personal", Name: "Personal", Icon: "User", Color: "#10b981"},
	}
}

func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.clone()
	}
	return out
}
