package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"docket/internal/config"
	"docket/internal/notify"
	"docket/internal/query"
	"docket/internal/todo"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))

	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.PriorityVeryHigh: lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
		todo.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ea580c")),
		todo.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ca8a04")),
		todo.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		todo.PriorityVeryLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")),
	}

	toastStyles = map[notify.Severity]lipgloss.Style{
		notify.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6196ff")),
		notify.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		notify.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316")).Bold(true),
		notify.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Docket"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.renderFilters()))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		if m.search != "" {
			b.WriteString("No tasks match the search.")
		} else {
			b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
		}
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	switch {
	case m.meta != nil:
		b.WriteString("Task editor (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderMetaBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.meta.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode != modeList:
		b.WriteString(m.inputLabel())
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderMetadataPanel())
	}

	b.WriteString("\n\n")
	if m.toast != nil {
		style := toastStyles[m.toast.Severity]
		b.WriteString(style.Render(m.toast.Title + ": " + m.toast.Message))
		b.WriteString("\n")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) inputLabel() string {
	switch m.mode {
	case modeAdd:
		return "Add Task: "
	case modeSearch:
		return "Search: "
	case modeSubtask:
		return "Subtask: "
	case modeFolder:
		return "New Folder: "
	}
	return ""
}

func (m Model) renderFilters() string {
	parts := []string{
		"folder:" + m.folderLabel(m.folder),
		"show:" + string(m.filter),
		"sort:" + string(m.sort),
	}
	if m.search != "" {
		parts = append(parts, "search:"+strconv.Quote(m.search))
	}
	return strings.Join(parts, " • ")
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s detail • %s toggle • %s delete • %s edit • %s subtask • %s search • %s folder • %s filter • %s sort • %s grab • %s quit",
		k.Up, k.Down, k.Add, k.Detail, "space", k.Delete, k.Edit, k.Subtask, k.Search, k.NextFolder, k.NextFilter, k.NextSort, k.Grab, k.Quit)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	if m.groups == nil {
		for i, t := range m.tasks {
			b.WriteString(m.renderTaskLine(i, t))
			b.WriteString("\n")
		}
		return b.String()
	}
	i := 0
	for _, g := range m.groups {
		label := fmt.Sprintf("%s (%d)", g.Bucket, len(g.Tasks))
		if g.Bucket == query.BucketOverdue {
			b.WriteString(overdueStyle.Render(headerStyle.Render(label)))
		} else {
			b.WriteString(headerStyle.Render(label))
		}
		b.WriteString("\n")
		for _, t := range g.Tasks {
			b.WriteString(m.renderTaskLine(i, t))
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (m Model) renderTaskLine(i int, t todo.Task) string {
	cursor := " "
	if m.cursor == i && m.mode == modeList {
		cursor = ">"
	}
	if m.grabbed == t.ID {
		cursor = "*"
	}

	checkbox := "[ ]"
	if t.Completed {
		checkbox = "[x]"
	}

	extras := make([]string, 0, 4)
	if m.folder == todo.AllFolders {
		extras = append(extras, m.folderLabel(t.FolderID))
	}
	if t.DueDate != nil {
		extras = append(extras, "due "+formatDue(t.DueDate))
	}
	if done, total := t.Progress(); total > 0 {
		extras = append(extras, fmt.Sprintf("%d/%d", done, total))
	}
	if t.ReminderEnabled {
		extras = append(extras, fmt.Sprintf("remind %dm", t.ReminderMinutesBefore))
	}

	prio := priorityStyles[t.Priority].Render(priorityMark(t.Priority))
	title := t.Text
	if t.Completed {
		title = dimStyle.Render(title)
	}
	body := fmt.Sprintf("%s %s %s %s", cursor, checkbox, prio, title)
	if len(extras) > 0 {
		body += dimStyle.Render(" [" + strings.Join(extras, " | ") + "]")
	}
	return body
}

func priorityMark(p todo.Priority) string {
	n := p.Rank()
	if n <= 0 {
		return "     "
	}
	return strings.Repeat("!", n) + strings.Repeat(" ", len(todo.Priorities)-n)
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	fields := metaFields()
	values := m.meta.values()
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		val := values[i]
		if i == m.meta.index {
			val = m.input.Value()
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, emptyPlaceholder(val)))
	}
	return b.String()
}

func (m Model) renderMetadataPanel() string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString("Task\n")
	b.WriteString(fmt.Sprintf("Text       : %s\n", t.Text))
	b.WriteString(fmt.Sprintf("Done       : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Folder     : %s\n", m.folderLabel(t.FolderID)))
	b.WriteString(fmt.Sprintf("Priority   : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Difficulty : %s\n", t.Difficulty))
	b.WriteString(fmt.Sprintf("Due        : %s\n", emptyPlaceholder(formatDue(t.DueDate))))
	reminder := onOff(t.ReminderEnabled)
	if t.ReminderEnabled {
		reminder += fmt.Sprintf(", %d min before", t.ReminderMinutesBefore)
		if t.Notified {
			reminder += ", sent"
		}
	}
	b.WriteString(fmt.Sprintf("Reminder   : %s\n", reminder))
	if t.Description != "" {
		b.WriteString(fmt.Sprintf("Notes      : %s\n", t.Description))
	}
	for i, s := range t.Subtasks {
		box := "[ ]"
		if s.Completed {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %d %s %s\n", i+1, box, s.Text))
	}
	return b.String()
}

func parseDue(v string) (*time.Time, error) {
	return todo.ParseDue(v, time.Local)
}

func formatDue(t *time.Time) string {
	return todo.FormatDue(t, time.Local)
}

func endOfDay(t time.Time) time.Time {
	return todo.EndOfDay(t, time.Local)
}

func parseMinutes(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return todo.DefaultReminderMinutes, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func parseYN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes" || v == "true" || v == "1"
}

func boolToYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
