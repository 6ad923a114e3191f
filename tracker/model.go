package tracker

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/jonwraymond/dashcache/datasource"
)

// Collection names in the document store.
const (
	CollectionProjects    = "projects"
	CollectionTasks       = "tasks"
	CollectionSubtasks    = "subtasks"
	CollectionUsers       = "users"
	CollectionRelateWorks = "relateWorks"
)

// Project is a top-level unit of work.
type Project struct {
	ID   string
	Name string
	Abbr string

	// Attributes holds every stored field, including Name and Abbr.
	Attributes map[string]any
}

// Task belongs to a project.
type Task struct {
	ID        string
	ProjectID string
	Name      string

	Attributes map[string]any
}

// Subtask belongs to a task.
type Subtask struct {
	ID     string
	TaskID string
	Name   string

	Attributes map[string]any
}

// User is a dashboard user.
type User struct {
	ID    string
	Name  string
	Email string

	Attributes map[string]any
}

// RelateWork is one selectable related-work option of an activity.
type RelateWork struct {
	Value string
	Label string
}

// Dataset is the dashboard's full working set.
type Dataset struct {
	Projects []Project

	// Tasks maps a project id to its tasks.
	Tasks map[string][]Task

	// Subtasks maps a task id to its subtasks.
	Subtasks map[string][]Subtask
}

// TaskCount returns the number of tasks across all projects.
func (d Dataset) TaskCount() int {
	n := 0
	for _, tasks := range d.Tasks {
		n += len(tasks)
	}
	return n
}

// SubtaskCount returns the number of subtasks across all tasks.
func (d Dataset) SubtaskCount() int {
	n := 0
	for _, subtasks := range d.Subtasks {
		n += len(subtasks)
	}
	return n
}

func projectFromDocument(d datasource.Document) Project {
	return Project{
		ID:         d.ID,
		Name:       d.String("name"),
		Abbr:       d.String("abbr"),
		Attributes: maps.Clone(d.Fields),
	}
}

func taskFromDocument(d datasource.Document) Task {
	return Task{
		ID:         d.ID,
		ProjectID:  d.String("projectId"),
		Name:       d.String("taskName"),
		Attributes: maps.Clone(d.Fields),
	}
}

func subtaskFromDocument(d datasource.Document) Subtask {
	return Subtask{
		ID:         d.ID,
		TaskID:     d.String("taskId"),
		Name:       d.String("subTaskName"),
		Attributes: maps.Clone(d.Fields),
	}
}

// User documents use capitalised field names; lower-case ones are accepted
// as a fallback.
func userFromDocument(d datasource.Document) User {
	return User{
		ID:         d.ID,
		Name:       cmp.Or(d.String("Name"), d.String("name")),
		Email:      cmp.Or(d.String("Email"), d.String("email")),
		Attributes: maps.Clone(d.Fields),
	}
}

// relateWorksFromDocuments reads the relatedWorks field of the first document
// and returns its values as options sorted by label. The field may be an
// object (values are used) or an array.
func relateWorksFromDocuments(docs []datasource.Document) []RelateWork {
	out := make([]RelateWork, 0)
	if len(docs) == 0 {
		return out
	}

	var values []any
	switch works := docs[0].Fields["relatedWorks"].(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(works)) {
			values = append(values, works[k])
		}
	case []any:
		values = works
	case []string:
		for _, w := range works {
			values = append(values, w)
		}
	}

	for _, v := range values {
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		out = append(out, RelateWork{Value: s, Label: s})
	}
	slices.SortStableFunc(out, func(a, b RelateWork) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

func mapDocuments[T any](docs []datasource.Document, conv func(datasource.Document) T) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, conv(d))
	}
	return out
}
