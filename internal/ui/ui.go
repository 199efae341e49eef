package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docket/internal/config"
	"docket/internal/notify"
	"docket/internal/query"
	"docket/internal/reminder"
	"docket/internal/todo"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeMetadata
	modeSearch
	modeSubtask
	modeFolder
)

type toastMsg notify.Toast

type persistErrMsg struct{ err error }

type metaState struct {
	taskID      int
	text        string
	description string
	folder      string
	priority    string
	difficulty  string
	due         string
	reminder    string
	minutes     string
	index       int
}

type Model struct {
	engine *todo.Engine
	cfg    config.Config
	now    func() time.Time

	folders []todo.Folder
	tasks   []todo.Task
	groups  []query.Group

	folder string
	filter query.Status
	sort   query.SortMode
	search string

	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	toast      *notify.Toast
	confirmDel bool
	pendingDel *todo.Task
	pendingDir *todo.Folder
	grabbed    int
	meta       *metaState
}

// Run opens the task view and owns the reminder loop for as long as the view
// is up.
func Run(engine *todo.Engine, cfg config.Config, notifier notify.Notifier, log *slog.Logger) error {
	m := newModel(engine, cfg, time.Now)
	program := tea.NewProgram(m)

	toaster := notify.ToastFunc(func(title, message string, sev notify.Severity) {
		program.Send(toastMsg{Title: title, Message: message, Severity: sev})
	})
	engine.SetPersistErrorHook(func(err error) {
		go program.Send(persistErrMsg{err: err})
	})
	defer engine.SetPersistErrorHook(nil)

	sched := reminder.New(engine, notifier, toaster, reminder.Options{
		Interval: cfg.Interval(),
		Logger:   log,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	defer sched.Stop()

	_, err := program.Run()
	return err
}

func newModel(engine *todo.Engine, cfg config.Config, now func() time.Time) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	filter, err := query.ParseStatus(cfg.DefaultFilter)
	if err != nil {
		filter = query.StatusAll
	}
	sortMode, err := query.ParseSort(cfg.DefaultSort)
	if err != nil {
		sortMode = query.SortNewest
	}

	m := Model{
		engine: engine,
		cfg:    cfg,
		now:    now,
		folder: todo.AllFolders,
		filter: filter,
		sort:   sortMode,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.meta != nil {
			return m.updateMetadataMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	case toastMsg:
		t := notify.Toast(msg)
		m.toast = &t
		m.refresh()
	case persistErrMsg:
		m.toast = &notify.Toast{Title: "Save failed", Message: msg.err.Error(), Severity: notify.SeverityError}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	case modeSubtask:
		return m.updateSubtaskMode(key, msg)
	case modeFolder:
		return m.updateFolderMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m *Model) refresh() {
	m.engine.Reload()
	m.folders = m.engine.Folders()
	if m.folder != todo.AllFolders && !folderExists(m.folders, m.folder) {
		m.folder = todo.AllFolders
	}
	v := query.Run(m.engine.Tasks(), query.Options{
		Folder:   m.folder,
		Status:   m.filter,
		Text:     m.search,
		Sort:     m.sort,
		Now:      m.now(),
		Location: time.Local,
	})
	m.groups = v.Groups
	if v.Groups == nil {
		m.tasks = v.Tasks
	} else {
		m.tasks = m.tasks[:0:0]
		for _, g := range v.Groups {
			m.tasks = append(m.tasks, g.Tasks...)
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *Model) selectTask(id int) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (todo.Task, bool) {
	if len(m.tasks) == 0 {
		return todo.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m *Model) openInput(next mode, placeholder, value string) {
	m.mode = next
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.input.SetValue("")
	m.input.Blur()
	m.mode = modeList
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.closeInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		task, err := m.engine.CreateTask(todo.TaskInput{
			Text:                  title,
			FolderID:              m.folder,
			ReminderMinutesBefore: m.cfg.ReminderMinutes,
		})
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.selectTask(task.ID)
		m.toast = &notify.Toast{Title: "Task Created", Message: "New task added to list", Severity: notify.SeveritySuccess}
		m.status = "Added task"
		m.closeInput()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.search = ""
		m.closeInput()
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.search = strings.TrimSpace(m.input.Value())
		m.closeInput()
		m.refresh()
		m.status = fmt.Sprintf("%d matching tasks", len(m.tasks))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.search = m.input.Value()
		m.refresh()
		return m, cmd
	}
}

func (m Model) updateSubtaskMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.closeInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		task, ok := m.current()
		if !ok {
			m.closeInput()
			return m, nil
		}
		if _, err := m.engine.AddSubtask(task.ID, m.input.Value()); err != nil {
			m.status = fmt.Sprintf("subtask failed: %v", err)
			return m, nil
		}
		m.closeInput()
		m.refresh()
		m.selectTask(task.ID)
		m.status = "Added subtask"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateFolderMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.closeInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		f, err := m.engine.CreateFolder(m.input.Value(), "", "")
		if err != nil {
			m.status = fmt.Sprintf("folder failed: %v", err)
			return m, nil
		}
		m.closeInput()
		m.folder = f.ID
		m.refresh()
		m.toast = &notify.Toast{Title: "Folder Created", Message: fmt.Sprintf("Created %q", f.Name), Severity: notify.SeveritySuccess}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case k.Add:
		m.openInput(modeAdd, "Task title", "")
		m.status = "Add mode: type a title and press Enter"
	case k.Search:
		m.openInput(modeSearch, "Search tasks", m.search)
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case k.Subtask:
		if _, ok := m.current(); !ok {
			return m, nil
		}
		m.openInput(modeSubtask, "Subtask", "")
		m.status = "New subtask: type and press Enter"
	case k.NewFolder:
		m.openInput(modeFolder, "Folder name", "")
		m.status = "New folder: type a name and press Enter"
	case k.DeleteFolder:
		f, ok := m.selectedFolder()
		if !ok {
			m.status = "Select a folder first"
			return m, nil
		}
		if f.IsDefault {
			m.status = fmt.Sprintf("%q cannot be deleted", f.Name)
			return m, nil
		}
		m.confirmDel = true
		m.pendingDir = &f
		m.status = fmt.Sprintf("Delete folder %q? Tasks move to the inbox. y/n", f.Name)
	case k.NextFolder:
		m.folder = m.nextFolder()
		m.cursor = 0
		m.refresh()
		m.status = "Folder: " + m.folderLabel(m.folder)
	case k.NextFilter:
		m.filter = nextStatus(m.filter)
		m.cursor = 0
		m.refresh()
		m.status = "Filter: " + string(m.filter)
	case k.NextSort:
		m.sort = nextSort(m.sort)
		m.grabbed = 0
		m.refresh()
		m.status = "Sort: " + string(m.sort)
	case k.Toggle:
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		if _, err := m.engine.ToggleTask(task.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = "Toggled task"
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		n := int(key[0] - '1')
		if n >= len(task.Subtasks) {
			return m, nil
		}
		m.engine.ToggleSubtask(task.ID, task.Subtasks[n].ID)
		m.refresh()
		m.selectTask(task.ID)
		m.status = fmt.Sprintf("Toggled subtask %q", task.Subtasks[n].Text)
	case k.Delete:
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &task
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", task.Text)
	case k.Detail:
		task, ok := m.current()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.status = m.describe(task)
	case k.Edit:
		task, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetadataEdit(task)
	case k.Grab:
		return m.grabOrDrop()
	case k.MoveUp, k.MoveDown:
		return m.moveBy(key == k.MoveDown)
	case k.PriorityUp, k.PriorityDown:
		return m.shiftPriority(key == k.PriorityUp)
	case k.DueForward, k.DueBack:
		return m.shiftDue(key == k.DueForward)
	case k.Remind:
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		on := !task.ReminderEnabled
		if _, err := m.engine.UpdateTask(task.ID, todo.TaskPatch{ReminderEnabled: &on}); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.selectTask(task.ID)
		m.status = "Reminder " + onOff(on)
	}
	return m, nil
}

// grabOrDrop is the keyboard form of drag-and-drop: the first press picks
// the task under the cursor, the second drops it onto the task under the
// cursor.
func (m Model) grabOrDrop() (tea.Model, tea.Cmd) {
	if m.sort != query.SortManual {
		m.status = "Switch to manual sort to reorder"
		return m, nil
	}
	task, ok := m.current()
	if !ok {
		return m, nil
	}
	if m.grabbed == 0 {
		m.grabbed = task.ID
		m.status = fmt.Sprintf("Moving %q: pick a target and press %s", task.Text, m.cfg.Keys.Grab)
		return m, nil
	}
	src := m.grabbed
	m.grabbed = 0
	if !m.engine.Reorder(src, task.ID) {
		m.status = "Move cancelled"
		return m, nil
	}
	m.refresh()
	m.selectTask(src)
	m.status = "Moved task"
	return m, nil
}

func (m Model) moveBy(down bool) (tea.Model, tea.Cmd) {
	if m.sort != query.SortManual {
		m.status = "Switch to manual sort to reorder"
		return m, nil
	}
	task, ok := m.current()
	if !ok {
		return m, nil
	}
	target := m.cursor - 1
	if down {
		target = m.cursor + 1
	}
	if target < 0 || target >= len(m.tasks) {
		return m, nil
	}
	m.engine.Reorder(task.ID, m.tasks[target].ID)
	m.refresh()
	m.selectTask(task.ID)
	m.status = "Moved task"
	return m, nil
}

func (m Model) shiftPriority(up bool) (tea.Model, tea.Cmd) {
	task, ok := m.current()
	if !ok {
		return m, nil
	}
	rank := task.Priority.Rank()
	if up {
		rank++
	} else {
		rank--
	}
	if rank < 1 || rank > len(todo.Priorities) {
		return m, nil
	}
	p := todo.Priorities[rank-1]
	if _, err := m.engine.UpdateTask(task.ID, todo.TaskPatch{Priority: &p}); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.refresh()
	m.selectTask(task.ID)
	m.status = "Priority: " + string(p)
	return m, nil
}

func (m Model) shiftDue(forward bool) (tea.Model, tea.Cmd) {
	task, ok := m.current()
	if !ok {
		return m, nil
	}
	var due time.Time
	switch {
	case task.DueDate != nil && forward:
		due = task.DueDate.AddDate(0, 0, 1)
	case task.DueDate != nil:
		due = task.DueDate.AddDate(0, 0, -1)
	default:
		due = endOfDay(m.now())
	}
	if _, err := m.engine.UpdateTask(task.ID, todo.TaskPatch{DueDate: &due}); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.refresh()
	m.selectTask(task.ID)
	m.status = "Due: " + formatDue(&due)
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.clearPending()
		return m, nil
	case "y", "Y":
		switch {
		case m.pendingDir != nil:
			f := *m.pendingDir
			moved, err := m.engine.DeleteFolder(f.ID)
			m.clearPending()
			if err != nil {
				m.status = fmt.Sprintf("delete failed: %v", err)
				return m, nil
			}
			m.refresh()
			m.toast = &notify.Toast{Title: "Folder Deleted", Message: "Tasks moved to Inbox", Severity: notify.SeverityInfo}
			m.status = fmt.Sprintf("Deleted folder %q, moved %d tasks", f.Name, moved)
		case m.pendingDel != nil:
			m.engine.DeleteTask(m.pendingDel.ID)
			m.clearPending()
			m.refresh()
			m.status = "Deleted task"
		default:
			m.status = "Nothing to delete"
			m.clearPending()
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) clearPending() {
	m.confirmDel = false
	m.pendingDel = nil
	m.pendingDir = nil
}

func (m Model) startMetadataEdit(t todo.Task) (tea.Model, tea.Cmd) {
	m.meta = &metaState{
		taskID:      t.ID,
		text:        t.Text,
		description: t.Description,
		folder:      t.FolderID,
		priority:    string(t.Priority),
		difficulty:  string(t.Difficulty),
		due:         formatDue(t.DueDate),
		reminder:    boolToYN(t.ReminderEnabled),
		minutes:     fmt.Sprintf("%d", t.ReminderMinutesBefore),
		index:       0,
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeMetadata
	m.status = "Edit task: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index+1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case "shift+tab", "up":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index-1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.meta.index++
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	if m.meta == nil {
		return m, nil
	}
	ms := m.meta
	priority, err := todo.ParsePriority(ms.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		return m, nil
	}
	difficulty, err := todo.ParseDifficulty(ms.difficulty)
	if err != nil {
		m.status = fmt.Sprintf("difficulty invalid: %v", err)
		return m, nil
	}
	due, err := parseDue(ms.due)
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		return m, nil
	}
	minutes, err := parseMinutes(ms.minutes)
	if err != nil {
		m.status = fmt.Sprintf("reminder minutes invalid: %v", err)
		return m, nil
	}
	remind := parseYN(ms.reminder)
	folder := m.resolveFolderInput(ms.folder)

	patch := todo.TaskPatch{
		Text:                  &ms.text,
		Description:           &ms.description,
		FolderID:              &folder,
		Priority:              &priority,
		Difficulty:            &difficulty,
		ReminderEnabled:       &remind,
		ReminderMinutesBefore: &minutes,
	}
	if due == nil {
		patch.ClearDueDate = true
	} else {
		patch.DueDate = due
	}
	if _, err := m.engine.UpdateTask(ms.taskID, patch); err != nil {
		if errors.Is(err, todo.ErrValidation) || errors.Is(err, todo.ErrNotFound) {
			m.status = fmt.Sprintf("cannot save: %v", err)
		} else {
			m.status = fmt.Sprintf("save failed: %v", err)
		}
		return m, nil
	}
	m.meta = nil
	m.mode = modeList
	m.input.Blur()
	m.refresh()
	m.selectTask(ms.taskID)
	m.toast = &notify.Toast{Title: "Task Updated", Message: "Changes saved successfully", Severity: notify.SeveritySuccess}
	m.status = "Task saved"
	return m, nil
}

// resolveFolderInput accepts a folder id or a case-insensitive folder name.
func (m Model) resolveFolderInput(v string) string {
	v = strings.TrimSpace(v)
	for _, f := range m.folders {
		if f.ID == v || strings.EqualFold(f.Name, v) {
			return f.ID
		}
	}
	return v
}

func (m Model) selectedFolder() (todo.Folder, bool) {
	for _, f := range m.folders {
		if f.ID == m.folder {
			return f, true
		}
	}
	return todo.Folder{}, false
}

func (m Model) nextFolder() string {
	ids := []string{todo.AllFolders}
	for _, f := range m.folders {
		ids = append(ids, f.ID)
	}
	for i, id := range ids {
		if id == m.folder {
			return ids[wrapIndex(i+1, len(ids))]
		}
	}
	return todo.AllFolders
}

func (m Model) folderLabel(id string) string {
	if id == todo.AllFolders {
		return "All"
	}
	for _, f := range m.folders {
		if f.ID == id {
			return f.Name
		}
	}
	return id
}

func folderExists(folders []todo.Folder, id string) bool {
	for _, f := range folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

func nextStatus(s query.Status) query.Status {
	for i, v := range query.Statuses {
		if v == s {
			return query.Statuses[wrapIndex(i+1, len(query.Statuses))]
		}
	}
	return query.StatusAll
}

func nextSort(s query.SortMode) query.SortMode {
	for i, v := range query.SortModes {
		if v == s {
			return query.SortModes[wrapIndex(i+1, len(query.SortModes))]
		}
	}
	return query.SortNewest
}

func (m Model) describe(t todo.Task) string {
	info := fmt.Sprintf("Task #%d • %s • %s • %s", t.ID, t.Text, humanDone(t.Completed), m.folderLabel(t.FolderID))
	info += fmt.Sprintf(" • priority:%s • difficulty:%s", t.Priority, t.Difficulty)
	if t.DueDate != nil {
		info += " • due:" + formatDue(t.DueDate)
	}
	if t.ReminderEnabled {
		info += fmt.Sprintf(" • remind %dm before", t.ReminderMinutesBefore)
		if t.Notified {
			info += " (sent)"
		}
	}
	if done, total := t.Progress(); total > 0 {
		info += fmt.Sprintf(" • subtasks %d/%d", done, total)
	}
	if t.Description != "" {
		info += " • " + t.Description
	}
	return info
}

func metaFields() []string {
	return []string{"text", "description", "folder", "priority", "difficulty", "due (YYYY-MM-DD [HH:MM])", "reminder (y/n)", "minutes before"}
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) values() []string {
	return []string{ms.text, ms.description, ms.folder, ms.priority, ms.difficulty, ms.due, ms.reminder, ms.minutes}
}

func (ms metaState) currentValue() string {
	vals := ms.values()
	if ms.index < 0 || ms.index >= len(vals) {
		return ""
	}
	return vals[ms.index]
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.text = v
	case 1:
		ms.description = v
	case 2:
		ms.folder = v
	case 3:
		ms.priority = v
	case 4:
		ms.difficulty = v
	case 5:
		ms.due = v
	case 6:
		ms.reminder = v
	case 7:
		ms.minutes = v
	}
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
