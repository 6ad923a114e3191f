package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/dashcache/tracker"
)

// fetch runs read --repeat times, forcing the first call when --refresh is
// set, and renders the last result.
func fetch[T any](ctx context.Context, c *cli, read func(ctx context.Context, force bool) (T, error), render func(io.Writer, T)) error {
	before := c.app.engine.Stats()

	var last T
	for i := range c.repeat {
		v, err := read(ctx, c.refresh && i == 0)
		if err != nil {
			return err
		}
		last = v
	}
	render(c.stdout, last)

	if c.repeat > 1 {
		after := c.app.engine.Stats()
		fmt.Fprintf(c.stderr, "%d fetches: %d hits, %d misses\n",
			c.repeat, after.Hits-before.Hits, after.Misses-before.Misses)
	}
	return nil
}

func table(w io.Writer, header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func (c *cli) newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fetch(cmd.Context(), c, c.app.svc.Projects, func(w io.Writer, projects []tracker.Project) {
				table(w, "ID\tABBR\tNAME", func(tw io.Writer) {
					for _, p := range projects {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Abbr, p.Name)
					}
				})
			})
		},
	}
}

func (c *cli) newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project PROJECT_ID",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := func(ctx context.Context, force bool) (tracker.Project, error) {
				return c.app.svc.Project(ctx, args[0], force)
			}
			return fetch(cmd.Context(), c, read, func(w io.Writer, p tracker.Project) {
				fmt.Fprintf(w, "%s\t%s (%s)\n", p.ID, p.Name, p.Abbr)
			})
		},
	}
}

func (c *cli) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks PROJECT_ID",
		Short: "List the tasks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := func(ctx context.Context, force bool) ([]tracker.Task, error) {
				return c.app.svc.TasksForProject(ctx, args[0], force)
			}
			return fetch(cmd.Context(), c, read, func(w io.Writer, tasks []tracker.Task) {
				table(w, "ID\tPROJECT\tNAME", func(tw io.Writer) {
					for _, t := range tasks {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.ProjectID, t.Name)
					}
				})
			})
		},
	}
}

func (c *cli) newSubtasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks TASK_ID",
		Short: "List the subtasks of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := func(ctx context.Context, force bool) ([]tracker.Subtask, error) {
				return c.app.svc.SubtasksForTask(ctx, args[0], force)
			}
			return fetch(cmd.Context(), c, read, func(w io.Writer, subtasks []tracker.Subtask) {
				table(w, "ID\tTASK\tNAME", func(tw io.Writer) {
					for _, s := range subtasks {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.TaskID, s.Name)
					}
				})
			})
		},
	}
}

func (c *cli) newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fetch(cmd.Context(), c, c.app.svc.Users, func(w io.Writer, users []tracker.User) {
				table(w, "ID\tNAME\tEMAIL", func(tw io.Writer) {
					for _, u := range users {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
					}
				})
			})
		},
	}
}

func (c *cli) newRelateWorksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relate-works ACTIVITY",
		Short: "List the related-work options of an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := func(ctx context.Context, force bool) ([]tracker.RelateWork, error) {
				return c.app.svc.RelateWorks(ctx, args[0], force)
			}
			return fetch(cmd.Context(), c, read, func(w io.Writer, works []tracker.RelateWork) {
				for _, rw := range works {
					fmt.Fprintln(w, rw.Label)
				}
			})
		},
	}
}

func (c *cli) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load every project with its tasks and subtasks",
		Long: `Load reads the project list, then the tasks of every project, then the
subtasks of every task, the way the dashboard fills its working set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fetch(cmd.Context(), c, c.app.svc.LoadAll, func(w io.Writer, ds tracker.Dataset) {
				fmt.Fprintf(w, "%s projects, %s tasks, %s subtasks\n",
					humanize.Comma(int64(len(ds.Projects))),
					humanize.Comma(int64(ds.TaskCount())),
					humanize.Comma(int64(ds.SubtaskCount())),
				)
			})
		},
	}
}
