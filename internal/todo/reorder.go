package todo

// Reorder moves the task with id src to the index the task with id dst
// currently occupies, then renumbers Order densely. It returns a new slice and
// reports whether anything moved; a drop onto itself or an unknown id leaves
// tasks untouched.
func Reorder(tasks []Task, src, dst int) ([]Task, bool) {
	if src == dst {
		return tasks, false
	}
	from, to := -1, -1
	for i, t := range tasks {
		switch t.ID {
		case src:
			from = i
		case dst:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return tasks, false
	}

	next := make([]Task, 0, len(tasks))
	next = append(next, tasks[:from]...)
	next = append(next, tasks[from+1:]...)
	moved := tasks[from]
	next = append(next[:to], append([]Task{moved}, next[to:]...)...)
	return renumber(next), true
}

func renumber(tasks []Task) []Task {
	for i := range tasks {
		tasks[i].Order = i
	}
	return tasks
}

// Reorder applies the drag-and-drop move and persists it. It reports whether
// the order changed.
func (e *Engine) Reorder(src, dst int) bool {
	changed := false
	_ = e.mutate(func() ([]string, error) {
		next, ok := Reorder(e.tasks, src, dst)
		if !ok {
			return nil, nil
		}
		e.tasks = next
		changed = true
		return []string{keyTasks}, nil
	})
	return changed
}
