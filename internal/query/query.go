// Package query derives the display list from the task collection: folder,
// status and text filters, then a sort, then optional due-date grouping.
// Everything here is a pure function of its arguments.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"docket/internal/todo"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

var Statuses = []Status{StatusAll, StatusPending, StatusCompleted}

func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusAll, nil
	}
	for _, v := range Statuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

type SortMode string

const (
	SortNewest   SortMode = "newest"
	SortPriority SortMode = "priority"
	SortDue      SortMode = "due"
	SortAlpha    SortMode = "alpha"
	SortManual   SortMode = "manual"
)

var SortModes = []SortMode{SortNewest, SortPriority, SortDue, SortAlpha, SortManual}

func ParseSort(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNewest, nil
	}
	for _, v := range SortModes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

type Options struct {
	// Folder is a folder id or todo.AllFolders. Empty means all.
	Folder string
	Status Status
	// Text is matched case-insensitively against task text only.
	Text string
	Sort SortMode
	// Now and Location anchor the calendar-day grouping.
	Now      time.Time
	Location *time.Location
	// Language drives alpha collation; the zero tag collates by root rules.
	Language language.Tag
}

type View struct {
	Tasks []todo.Task
	// Groups is set only in due-date sort mode.
	Groups []Group
}

// Run applies the full pipeline.
func Run(tasks []todo.Task, opts Options) View {
	sorted := Apply(tasks, opts)
	v := View{Tasks: sorted}
	if opts.Sort == SortDue {
		v.Groups = GroupByDue(sorted, opts.Now, opts.Location)
	}
	return v
}

// Apply filters and sorts tasks into a new slice.
func Apply(tasks []todo.Task, opts Options) []todo.Task {
	status := opts.Status
	if status == "" {
		status = StatusAll
	}
	mode := opts.Sort
	if mode == "" {
		mode = SortNewest
	}
	needle := strings.ToLower(opts.Text)

	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if opts.Folder != "" && opts.Folder != todo.AllFolders && t.FolderID != opts.Folder {
			continue
		}
		if status == StatusPending && t.Completed {
			continue
		}
		if status == StatusCompleted && !t.Completed {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		out = append(out, t)
	}

	primary := lessFunc(mode, opts.Language)
	sinkCompleted := status == StatusAll && mode != SortManual
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if sinkCompleted && a.Completed != b.Completed {
			return !a.Completed
		}
		return primary(a, b)
	})
	return out
}

func lessFunc(mode SortMode, tag language.Tag) func(a, b todo.Task) bool {
	switch mode {
	case SortPriority:
		return func(a, b todo.Task) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case SortDue:
		return func(a, b todo.Task) bool {
			if a.DueDate == nil {
				return false
			}
			if b.DueDate == nil {
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case SortAlpha:
		col := collate.New(tag)
		return func(a, b todo.Task) bool { return col.CompareString(a.Text, b.Text) < 0 }
	case SortManual:
		return func(a, b todo.Task) bool { return a.Order < b.Order }
	default:
		return func(a, b todo.Task) bool { return a.ID > b.ID }
	}
}
