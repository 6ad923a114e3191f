package tracker

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoadAll reads projects, then the tasks of every project, then the subtasks
// of every task. Reads within a level run concurrently, at most WithFanout at
// a time. The first error cancels the remaining reads and is returned.
func (s *Service) LoadAll(ctx context.Context, force bool) (Dataset, error) {
	projects, err := s.Projects(ctx, force)
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{
		Projects: projects,
		Tasks:    make(map[string][]Task, len(projects)),
		Subtasks: make(map[string][]Subtask),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for _, p := range projects {
		g.Go(func() error {
			tasks, err := s.TasksForProject(gctx, p.ID, force)
			if err != nil {
				return err
			}
			mu.Lock()
			ds.Tasks[p.ID] = tasks
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for _, p := range projects {
		for _, t := range ds.Tasks[p.ID] {
			g.Go(func() error {
				subtasks, err := s.SubtasksForTask(gctx, t.ID, force)
				if err != nil {
					return err
				}
				mu.Lock()
				ds.Subtasks[t.ID] = subtasks
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}
