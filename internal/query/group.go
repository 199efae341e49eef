package query

import (
	"time"

	"docket/internal/todo"
)

// Bucket is a calendar-relative due group. The constant order is the
// display order.
type Bucket int

const (
	BucketOverdue Bucket = iota
	BucketToday
	BucketTomorrow
	BucketUpcoming
	BucketNoDate
	BucketCompleted
)

var Buckets = []Bucket{BucketOverdue, BucketToday, BucketTomorrow, BucketUpcoming, BucketNoDate, BucketCompleted}

func (b Bucket) String() string {
	switch b {
	case BucketOverdue:
		return "Overdue"
	case BucketToday:
		return "Today"
	case BucketTomorrow:
		return "Tomorrow"
	case BucketUpcoming:
		return "Upcoming"
	case BucketNoDate:
		return "No Date"
	case BucketCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

type Group struct {
	Bucket Bucket
	Tasks  []todo.Task
}

// BucketOf classifies a task against the local calendar day containing now.
func BucketOf(t todo.Task, now time.Time, loc *time.Location) Bucket {
	if t.Completed {
		return BucketCompleted
	}
	if t.DueDate == nil {
		return BucketNoDate
	}
	if loc == nil {
		loc = time.Local
	}
	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	day := startOfDay(*t.DueDate, loc)
	switch {
	case day.Before(today):
		return BucketOverdue
	case day.Equal(today):
		return BucketToday
	case day.Equal(tomorrow):
		return BucketTomorrow
	default:
		return BucketUpcoming
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// GroupByDue buckets already-sorted tasks, keeping their relative order inside
// each bucket and omitting empty buckets.
func GroupByDue(tasks []todo.Task, now time.Time, loc *time.Location) []Group {
	byBucket := make([][]todo.Task, len(Buckets))
	for _, t := range tasks {
		b := BucketOf(t, now, loc)
		byBucket[b] = append(byBucket[b], t)
	}
	var out []Group
	for _, b := range Buckets {
		if len(byBucket[b]) == 0 {
			continue
		}
		out = append(out, Group{Bucket: b, Tasks: byBucket[b]})
	}
	return out
}
