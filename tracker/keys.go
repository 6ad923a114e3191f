package tracker

import "github.com/jonwraymond/dashcache/cache"

// Cache resource names. Single-project keys use their own resource so that
// invalidating the project list leaves point lookups alone.
const (
	resourceProjects    = "projects"
	resourceProject     = "project"
	resourceTasks       = "tasks"
	resourceSubtasks    = "subtasks"
	resourceUsers       = "users"
	resourceRelateWorks = "relateWorks"
)

// ProjectsKey is the cache key of the project list.
func ProjectsKey() string {
	return cache.BuildKey(resourceProjects, nil)
}

// ProjectKey is the cache key of one project.
func ProjectKey(id string) string {
	return cache.ParamKey(resourceProject, "id", id)
}

// TasksKey is the cache key of a project's tasks.
func TasksKey(projectID string) string {
	return cache.ParamKey(resourceTasks, "projectId", projectID)
}

// SubtasksKey is the cache key of a task's subtasks.
func SubtasksKey(taskID string) string {
	return cache.ParamKey(resourceSubtasks, "taskId", taskID)
}

// UsersKey is the cache key of the user list.
func UsersKey() string {
	return cache.BuildKey(resourceUsers, nil)
}

// RelateWorksKey is the cache key of an activity's related-work options.
func RelateWorksKey(activityName string) string {
	return cache.ParamKey(resourceRelateWorks, "activityName", activityName)
}
