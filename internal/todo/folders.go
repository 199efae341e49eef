package todo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultFolderIcon  = "Folder"
	defaultFolderColor = "#6196ff"
)

type FolderPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (e *Engine) Folders() []Folder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Folder(nil), e.folders...)
}

func (e *Engine) Folder(id string) (Folder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.folderIndex(id)
	if i < 0 {
		return Folder{}, false
	}
	return e.folders[i], true
}

// InboxID returns the id of the default folder.
func (e *Engine) InboxID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return defaultFolderID(e.folders)
}

func (e *Engine) folderIndex(id string) int {
	for i, f := range e.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) CreateFolder(name, icon, color string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, fmt.Errorf("%w: folder name is empty", ErrValidation)
	}
	if strings.TrimSpace(icon) == "" {
		icon = defaultFolderIcon
	}
	if strings.TrimSpace(color) == "" {
		color = defaultFolderColor
	}
	f := Folder{
		ID:    "f_" + uuid.NewString(),
		Name:  name,
		Icon:  icon,
		Color: color,
	}
	err := e.mutate(func() ([]string, error) {
		next := make([]Folder, 0, len(e.folders)+1)
		next = append(next, e.folders...)
		e.folders = append(next, f)
		return []string{keyFolders}, nil
	})
	return f, err
}

// UpdateFolder merges the non-nil patch fields. The default flag is not
// patchable.
func (e *Engine) UpdateFolder(id string, patch FolderPatch) (Folder, error) {
	var out Folder
	err := e.mutate(func() ([]string, error) {
		i := e.folderIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: folder %q", ErrNotFound, id)
		}
		f := e.folders[i]
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return nil, fmt.Errorf("%w: folder name is empty", ErrValidation)
			}
			f.Name = name
		}
		if patch.Icon != nil && strings.TrimSpace(*patch.Icon) != "" {
			f.Icon = *patch.Icon
		}
		if patch.Color != nil && strings.TrimSpace(*patch.Color) != "" {
			f.Color = *patch.Color
		}
		next := append([]Folder(nil), e.folders...)
		next[i] = f
		e.folders = next
		out = f
		return []string{keyFolders}, nil
	})
	return out, err
}

// DeleteFolder removes a non-default folder and moves its tasks to the inbox
// in the same critical section. It returns how many tasks were moved.
func (e *Engine) DeleteFolder(id string) (int, error) {
	moved := 0
	err := e.mutate(func() ([]string, error) {
		i := e.folderIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: folder %q", ErrNotFound, id)
		}
		if e.folders[i].IsDefault {
			return nil, fmt.Errorf("%w: folder %q is the default folder", ErrProtected, id)
		}
		inbox := defaultFolderID(e.folders)

		folders := make([]Folder, 0, len(e.folders)-1)
		folders = append(folders, e.folders[:i]...)
		folders = append(folders, e.folders[i+1:]...)

		tasks := make([]Task, len(e.tasks))
		for j, t := range e.tasks {
			if t.FolderID == id {
				t.FolderID = inbox
				moved++
			}
			tasks[j] = t
		}

		e.folders = folders
		e.tasks = tasks
		keys := []string{keyFolders}
		if moved > 0 {
			keys = append(keys, keyTasks)
		}
		return keys, nil
	})
	return moved, err
}
