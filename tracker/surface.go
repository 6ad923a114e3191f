package tracker

import "github.com/jonwraymond/dashcache/surface"

// Surface holds the last value fetched for every resource. List topics for
// projects and users use the empty key; keyed topics use the parent id or
// activity name.
//
// Only Service accessors publish. Invalidation does not clear published
// values; the next read replaces them.
type Surface struct {
	Projects    *surface.Topic[[]Project]
	Project     *surface.Topic[Project]
	Tasks       *surface.Topic[[]Task]
	Subtasks    *surface.Topic[[]Subtask]
	Users       *surface.Topic[[]User]
	RelateWorks *surface.Topic[[]RelateWork]
}

// NewSurface creates a surface with empty topics.
func NewSurface() *Surface {
	return &Surface{
		Projects:    surface.NewTopic[[]Project]("projects"),
		Project:     surface.NewTopic[Project]("project"),
		Tasks:       surface.NewTopic[[]Task]("tasks"),
		Subtasks:    surface.NewTopic[[]Subtask]("subtasks"),
		Users:       surface.NewTopic[[]User]("users"),
		RelateWorks: surface.NewTopic[[]RelateWork]("relateWorks"),
	}
}
