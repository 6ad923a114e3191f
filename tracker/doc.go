// Package tracker exposes the project-tracking dashboard's read-through
// accessors.
//
// A Service answers each read from the cache when a fresh entry exists and
// otherwise queries the document store, stores the result and returns it.
// Every successful read is published to a Surface so views observing a
// resource see the value most recently fetched for it, whether it came from
// the cache or from the store.
//
// Collections and the cache keys they map to:
//
//	projects            projects|
//	projects/{id}       project|id={id}|
//	tasks by project    tasks|projectId={id}|
//	subtasks by task    subtasks|taskId={id}|
//	users               users|
//	relateWorks         relateWorks|activityName={name}|
package tracker
