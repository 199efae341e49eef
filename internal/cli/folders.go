package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docket/internal/todo"
)

func (a *app) folderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List folders with their task counts",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.runFolderList),
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.run(a.runFolderAdd),
	}
	addCmd.Flags().String("icon", "", "Icon name")
	addCmd.Flags().String("color", "", "Hex color, e.g. #6196ff")

	renameCmd := &cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE:  a.run(a.runFolderRename),
	}

	rmCmd := &cobra.Command{
		Use:   "rm <folder>",
		Short: "Delete a folder, moving its tasks to the inbox",
		Args:  cobra.ExactArgs(1),
		RunE:  a.run(a.runFolderRm),
	}

	cmd.AddCommand(listCmd, addCmd, renameCmd, rmCmd)
	return cmd
}

func (a *app) runFolderList(cmd *cobra.Command, args []string) error {
	counts := map[string]int{}
	for _, t := range a.engine.Tasks() {
		counts[t.FolderID]++
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, f := range a.engine.Folders() {
		mark := ""
		if f.IsDefault {
			mark = "default"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.ID, f.Name, counts[f.ID], mark)
	}
	return tw.Flush()
}

func (a *app) runFolderAdd(cmd *cobra.Command, args []string) error {
	icon, _ := cmd.Flags().GetString("icon")
	color, _ := cmd.Flags().GetString("color")
	f, err := a.engine.CreateFolder(strings.Join(args, " "), icon, color)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", f.Name, f.ID)
	return nil
}

func (a *app) runFolderRename(cmd *cobra.Command, args []string) error {
	id, err := a.resolveFolder(args[0])
	if err != nil {
		return err
	}
	if id == todo.AllFolders {
		return fmt.Errorf("%w: %q is not a folder", todo.ErrValidation, args[0])
	}
	name := strings.Join(args[1:], " ")
	f, err := a.engine.UpdateFolder(id, todo.FolderPatch{Name: &name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", f.ID, f.Name)
	return nil
}

func (a *app) runFolderRm(cmd *cobra.Command, args []string) error {
	id, err := a.resolveFolder(args[0])
	if err != nil {
		return err
	}
	if id == todo.AllFolders {
		return fmt.Errorf("%w: %q is not a folder", todo.ErrValidation, args[0])
	}
	moved, err := a.engine.DeleteFolder(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s, %d task(s) moved to %s\n", id, moved, a.folderName(a.engine.InboxID()))
	return nil
}

// resolveFolder accepts a folder id, a case-insensitive folder name, or
// "all". Empty means all.
func (a *app) resolveFolder(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, todo.AllFolders) {
		return todo.AllFolders, nil
	}
	if _, ok := a.engine.Folder(v); ok {
		return v, nil
	}
	for _, f := range a.engine.Folders() {
		if strings.EqualFold(f.Name, v) {
			return f.ID, nil
		}
	}
	return "", fmt.Errorf("%w: folder %q", todo.ErrNotFound, v)
}

func (a *app) folderName(id string) string {
	if f, ok := a.engine.Folder(id); ok {
		return f.Name
	}
	return id
}
