package tracker_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/tracker"
)

func ExampleService_TasksForProject() {
	src := datasource.NewMemorySource()
	src.Put(tracker.CollectionTasks,
		datasource.Document{ID: "T1", Fields: map[string]any{"projectId": "P1", "taskName": "Layout"}},
		datasource.Document{ID: "T2", Fields: map[string]any{"projectId": "P1", "taskName": "Review"}},
	)

	engine, _ := cache.New(cache.DefaultConfig())
	rt, _ := cache.NewReadThrough(engine)
	svc, _ := tracker.NewService(rt, src)
	ctx := context.Background()

	tasks, _ := svc.TasksForProject(ctx, "P1", false)
	_, _ = svc.TasksForProject(ctx, "P1", false)
	fmt.Println(len(tasks), "tasks,", src.Calls(tracker.CollectionTasks), "query")

	_, _ = svc.TasksForProject(ctx, "P1", true)
	fmt.Println(src.Calls(tracker.CollectionTasks), "queries after refresh")
	// Output:
	// 2 tasks, 1 query
	// 2 queries after refresh
}

func ExampleSurface() {
	src := datasource.NewMemorySource()
	src.Put(tracker.CollectionProjects,
		datasource.Document{ID: "P1", Fields: map[string]any{"name": "Tower A"}},
	)
	engine, _ := cache.New(cache.DefaultConfig())
	rt, _ := cache.NewReadThrough(engine)
	svc, _ := tracker.NewService(rt, src)

	cancel := svc.Surface().Projects.Subscribe(func(_ string, projects []tracker.Project) {
		fmt.Println("projects:", projects[0].Name)
	})
	defer cancel()

	_, _ = svc.Projects(context.Background(), false)
	// Output:
	// projects: Tower A
}
