package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"docket/internal/todo"
)

var now = time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func ids(tasks []todo.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sample() []todo.Task {
	return []todo.Task{
		{ID: 1, Text: "Write report", FolderID: "f_inbox", Priority: todo.PriorityLow, Order: 0, DueDate: at(48 * time.Hour)},
		{ID: 2, Text: "buy milk", FolderID: "f_personal", Priority: todo.PriorityVeryHigh, Order: 1, Completed: true},
		{ID: 3, Text: "Call mom", FolderID: "f_personal", Priority: todo.PriorityHigh, Order: 2, DueDate: at(2 * time.Hour)},
		{ID: 4, Text: "apply for visa", FolderID: "f_inbox", Priority: todo.PriorityHigh, Order: 3},
	}
}

func TestApply_FolderFilter(t *testing.T) {
	got := Apply(sample(), Options{Folder: "f_personal"})
	assert.ElementsMatch(t, []int{2, 3}, ids(got))

	got = Apply(sample(), Options{Folder: todo.AllFolders})
	assert.Len(t, got, 4)
}

func TestApply_StatusFilter(t *testing.T) {
	assert.Equal(t, []int{4, 3, 1}, ids(Apply(sample(), Options{Status: StatusPending})))
	assert.Equal(t, []int{2}, ids(Apply(sample(), Options{Status: StatusCompleted})))
}

func TestApply_TextFilterIgnoresDescription(t *testing.T) {
	tasks := sample()
	tasks[0].Description = "milk run"
	got := Apply(tasks, Options{Text: "MILK"})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApply_NewestSinksCompleted(t *testing.T) {
	assert.Equal(t, []int{4, 3, 1, 2}, ids(Apply(sample(), Options{Sort: SortNewest})))
}

func TestApply_PriorityStableForTies(t *testing.T) {
	got := Apply(sample(), Options{Sort: SortPriority, Status: StatusAll})
	// 3 and 4 are both high; input order is kept.
	assert.Equal(t, []int{3, 4, 1, 2}, ids(got))

	got = Apply(sample(), Options{Sort: SortPriority, Status: StatusCompleted})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApply_DueNoDateLast(t *testing.T) {
	got := Apply(sample(), Options{Sort: SortDue, Status: StatusPending})
	assert.Equal(t, []int{3, 1, 4}, ids(got))
}

func TestApply_AlphaCollates(t *testing.T) {
	got := Apply(sample(), Options{Sort: SortAlpha, Status: StatusPending, Language: language.English})
	assert.Equal(t, []int{4, 3, 1}, ids(got), "case does not dominate the comparison")
}

func TestApply_ManualIgnoresCompletion(t *testing.T) {
	tasks := sample()
	tasks[0].Order, tasks[3].Order = 3, 0
	got := Apply(tasks, Options{Sort: SortManual})
	assert.Equal(t, []int{4, 2, 3, 1}, ids(got))
}

func TestApply_IsPure(t *testing.T) {
	in := sample()
	opts := Options{Sort: SortDue, Text: "a", Now: now, Location: time.UTC}
	first := Run(in, opts)
	second := Run(in, opts)
	assert.Equal(t, first, second)
	assert.Equal(t, sample(), in, "input is untouched")

	for _, task := range first.Tasks {
		assert.Contains(t, task.Text, "a")
	}
}

func TestGroup_DueBuckets(t *testing.T) {
	loc := time.UTC
	tasks := []todo.Task{
		{ID: 1, Text: "none"},
		{ID: 2, Text: "plus5", DueDate: at(5 * 24 * time.Hour)},
		{ID: 3, Text: "tomorrow", DueDate: at(24 * time.Hour)},
		{ID: 4, Text: "today", DueDate: at(time.Hour)},
		{ID: 5, Text: "yesterday", DueDate: at(-24 * time.Hour)},
	}
	v := Run(tasks, Options{Sort: SortDue, Now: now, Location: loc})
	require.Len(t, v.Groups, 5)

	var buckets []Bucket
	for _, g := range v.Groups {
		buckets = append(buckets, g.Bucket)
		require.Len(t, g.Tasks, 1)
	}
	assert.Equal(t, []Bucket{BucketOverdue, BucketToday, BucketTomorrow, BucketUpcoming, BucketNoDate}, buckets)
	assert.Equal(t, "yesterday", v.Groups[0].Tasks[0].Text)
	assert.Equal(t, "today", v.Groups[1].Tasks[0].Text)
	assert.Equal(t, "tomorrow", v.Groups[2].Tasks[0].Text)
	assert.Equal(t, "plus5", v.Groups[3].Tasks[0].Text)
	assert.Equal(t, "none", v.Groups[4].Tasks[0].Text)
}

func TestGroup_CompletedRegardlessOfDate(t *testing.T) {
	tasks := []todo.Task{
		{ID: 1, Completed: true, DueDate: at(-72 * time.Hour)},
		{ID: 2, Completed: true},
	}
	groups := GroupByDue(tasks, now, time.UTC)
	require.Len(t, groups, 1)
	assert.Equal(t, BucketCompleted, groups[0].Bucket)
	assert.Len(t, groups[0].Tasks, 2)
}

func TestGroup_EarlierTodayIsNotOverdue(t *testing.T) {
	task := todo.Task{DueDate: at(-3 * time.Hour)}
	assert.Equal(t, BucketToday, BucketOf(task, now, time.UTC))
}

func TestRun_NoGroupsOutsideDueMode(t *testing.T) {
	v := Run(sample(), Options{Sort: SortPriority, Now: now})
	assert.Nil(t, v.Groups)
}

func TestParse(t *testing.T) {
	s, err := ParseSort("Manual")
	require.NoError(t, err)
	assert.Equal(t, SortManual, s)
	_, err = ParseSort("random")
	assert.Error(t, err)

	st, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, st)
	_, err = ParseStatus("archived")
	assert.Error(t, err)

	assert.Equal(t, "No Date", BucketNoDate.String())
}
