package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/dashcache/config"
)

// cli carries global flags and the stack built for the running command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	refresh    bool
	repeat     int
	stats      bool

	app *app
}

// executeCLI runs the command tree with args. cobra skips PersistentPostRunE
// when a command fails, so teardown runs here on that path.
func executeCLI(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		if closeErr := c.teardown(); closeErr != nil {
			return errors.Join(err, closeErr)
		}
	}
	return err
}

func (c *cli) newRootCmd() *cobra.Command {
	stdout, stderr := c.stdout, c.stderr

	root := &cobra.Command{
		Use:   "dashcache",
		Short: "Inspect the dashboard read-through cache",
		Long: `dashcache runs dashboard reads through the client cache and prints the
results, so cache behaviour can be observed against a live document store or
the built-in demo data.

Without store.base_url in the config file, reads go to the demo data.`,
		Example: `  dashcache projects
  dashcache tasks P1 --repeat 3 --stats
  dashcache load --refresh
  dashcache serve --config dashcache.yaml`,
		Version:           versionString(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.teardown()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "path to the YAML config file")
	pf.StringVar(&c.logLevel, "log-level", "", "override observe.logging.level (debug|info|warn|error)")
	pf.BoolVarP(&c.refresh, "refresh", "r", false, "bypass the cache on the first fetch")
	pf.IntVarP(&c.repeat, "repeat", "n", 1, "fetch N times to observe cache hits")
	pf.BoolVar(&c.stats, "stats", false, "print cache entries and counters after the command")

	root.AddCommand(
		c.newProjectsCmd(),
		c.newProjectCmd(),
		c.newTasksCmd(),
		c.newSubtasksCmd(),
		c.newUsersCmd(),
		c.newRelateWorksCmd(),
		c.newLoadCmd(),
		c.newServeCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.repeat < 1 {
		return errors.New("--repeat must be at least 1")
	}

	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Observe.Logging.Level = c.logLevel
	}
	if cmd.Name() == "serve" && !cfg.Observe.Metrics.Enabled {
		cfg.Observe.Metrics.Enabled = true
		cfg.Observe.Metrics.Exporter = "prometheus"
	}

	c.app, err = newApp(cmd.Context(), cfg, c.stderr)
	return err
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	if c.stats {
		c.app.printStats(c.stdout)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.app.close(ctx)
	c.app = nil
	return err
}
