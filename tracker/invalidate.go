package tracker

import "github.com/jonwraymond/dashcache/cache"

// InvalidateProject drops the cached project, its task list and the project
// list. It returns the number of entries removed.
func (s *Service) InvalidateProject(id string) int {
	e := s.rt.Engine()
	return e.InvalidatePrefix(ProjectKey(id)) +
		e.InvalidatePrefix(TasksKey(id)) +
		e.InvalidatePrefix(ProjectsKey())
}

// InvalidateTask drops the cached subtasks of taskID and the task list of
// projectID. An empty projectID drops every cached task list.
func (s *Service) InvalidateTask(projectID, taskID string) int {
	e := s.rt.Engine()
	n := e.InvalidatePrefix(SubtasksKey(taskID))
	if projectID == "" {
		return n + e.InvalidatePrefix(cache.ResourcePrefix(resourceTasks))
	}
	return n + e.InvalidatePrefix(TasksKey(projectID))
}

// InvalidateUsers drops the cached user list.
func (s *Service) InvalidateUsers() int {
	return s.rt.Engine().InvalidatePrefix(UsersKey())
}

// InvalidateAll empties the cache. Published surface values are kept.
func (s *Service) InvalidateAll() {
	s.rt.Engine().Clear()
}
