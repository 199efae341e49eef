package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"docket/internal/query"
	"docket/internal/todo"
)

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("folder", todo.AllFolders, "Folder id or name")
	cmd.Flags().String("status", "", "all, pending or completed (default from config)")
	cmd.Flags().String("sort", "", "newest, priority, due, alpha or manual (default from config)")
	cmd.Flags().StringP("query", "q", "", "Only tasks whose text contains this")
	cmd.RunE = a.run(a.runList)
	return cmd
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	folderFlag, _ := cmd.Flags().GetString("folder")
	statusFlag, _ := cmd.Flags().GetString("status")
	sortFlag, _ := cmd.Flags().GetString("sort")
	text, _ := cmd.Flags().GetString("query")

	folder, err := a.resolveFolder(folderFlag)
	if err != nil {
		return err
	}
	if statusFlag == "" {
		statusFlag = a.cfg.DefaultFilter
	}
	status, err := query.ParseStatus(statusFlag)
	if err != nil {
		return err
	}
	if sortFlag == "" {
		sortFlag = a.cfg.DefaultSort
	}
	sortMode, err := query.ParseSort(sortFlag)
	if err != nil {
		return err
	}

	view := query.Run(a.engine.Tasks(), query.Options{
		Folder:   folder,
		Status:   status,
		Text:     text,
		Sort:     sortMode,
		Now:      a.engine.Now(),
		Location: time.Local,
	})

	out := cmd.OutOrStdout()
	if len(view.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if view.Groups == nil {
		for _, t := range view.Tasks {
			a.writeTaskRow(tw, t)
		}
		return tw.Flush()
	}
	for _, g := range view.Groups {
		fmt.Fprintf(tw, "%s (%d)\n", g.Bucket, len(g.Tasks))
		for _, t := range g.Tasks {
			a.writeTaskRow(tw, t)
		}
	}
	return tw.Flush()
}

func (a *app) writeTaskRow(w io.Writer, t todo.Task) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	extras := make([]string, 0, 3)
	if t.DueDate != nil {
		extras = append(extras, "due "+todo.FormatDue(t.DueDate, time.Local))
	}
	if done, total := t.Progress(); total > 0 {
		extras = append(extras, fmt.Sprintf("%d/%d", done, total))
	}
	if t.ReminderEnabled {
		extras = append(extras, fmt.Sprintf("remind %dm", t.ReminderMinutesBefore))
	}
	fmt.Fprintf(w, "  #%d\t%s %s\t%s\t%s\t%s\n",
		t.ID, box, t.Text, t.Priority, a.folderName(t.FolderID), strings.Join(extras, ", "))
}

func (a *app) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().String("folder", "", "Folder id or name (default Inbox)")
	cmd.Flags().StringP("priority", "p", "", "very-low..very-high or 1-5")
	cmd.Flags().String("difficulty", "", "very-easy..very-hard or 1-5")
	cmd.Flags().String("description", "", "Longer notes")
	cmd.Flags().String("due", "", `Due date, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD"`)
	cmd.Flags().Int("remind", 0, "Remind this many minutes before the due date")
	cmd.Flags().StringSlice("subtask", nil, "Subtask text (repeatable)")
	cmd.RunE = a.run(a.runAdd)
	return cmd
}

func (a *app) runAdd(cmd *cobra.Command, args []string) error {
	folderFlag, _ := cmd.Flags().GetString("folder")
	priorityFlag, _ := cmd.Flags().GetString("priority")
	difficultyFlag, _ := cmd.Flags().GetString("difficulty")
	description, _ := cmd.Flags().GetString("description")
	dueFlag, _ := cmd.Flags().GetString("due")
	remind, _ := cmd.Flags().GetInt("remind")
	subtasks, _ := cmd.Flags().GetStringSlice("subtask")

	in := todo.TaskInput{
		Text:        strings.Join(args, " "),
		Description: description,
		Subtasks:    subtasks,
	}
	var err error
	if in.FolderID, err = a.resolveFolder(folderFlag); err != nil {
		return err
	}
	if in.Priority, err = todo.ParsePriority(priorityFlag); err != nil {
		return err
	}
	if in.Difficulty, err = todo.ParseDifficulty(difficultyFlag); err != nil {
		return err
	}
	if in.DueDate, err = todo.ParseDue(dueFlag, time.Local); err != nil {
		return err
	}
	if remind < 0 {
		return fmt.Errorf("%w: --remind must be positive", todo.ErrValidation)
	}
	if remind > 0 {
		if in.DueDate == nil {
			return fmt.Errorf("%w: --remind needs --due", todo.ErrValidation)
		}
		in.ReminderEnabled = true
		in.ReminderMinutesBefore = remind
	}

	t, err := a.engine.CreateTask(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", t.ID, t.Text)
	return nil
}

func (a *app) doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().Bool("undo", false, "Mark the task pending again")
	cmd.RunE = a.run(a.runDone)
	return cmd
}

func (a *app) runDone(cmd *cobra.Command, args []string) error {
	undo, _ := cmd.Flags().GetBool("undo")
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	completed := !undo
	t, err := a.engine.UpdateTask(id, todo.TaskPatch{Completed: &completed})
	if err != nil {
		return err
	}
	state := "done"
	if !t.Completed {
		state = "pending"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %s\n", t.ID, t.Text, state)
	return nil
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if !a.engine.DeleteTask(id) {
				return fmt.Errorf("%w: task %d", todo.ErrNotFound, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		}),
	}
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <target-id>",
		Short: "Move a task to the manual position of another task",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			src, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dst, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			if !a.engine.Reorder(src, dst) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing moved.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved #%d\n", src)
			return nil
		}),
	}
}

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: task id %q", todo.ErrValidation, s)
	}
	return id, nil
}
