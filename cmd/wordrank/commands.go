package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordrank/internal/cli"
	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// newRootCmd builds the command tree. The root runs the server when no subcommand is given.
func newRootCmd() *cobra.Command {
	a := &app{}
	var metricsAddr string

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Frequency ranked prefix completion over MessagePack IPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupDefault(a.debug)
			a.metrics = metrics.New()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, metricsAddr)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config.toml (default: user config dir)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Toggle debug mode")
	root.PersistentFlags().StringSliceVar(&a.dataPaths, "data", nil, "Dictionary files or directories, overrides dict.paths")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Index backend: trie or patricia, overrides dict.backend")
	root.PersistentFlags().IntVar(&a.maxWords, "words", 0, "Maximum number of words to load (0 keeps dict.max_words)")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	root.AddCommand(
		newServeCmd(a),
		newCliCmd(a),
		newQueryCmd(a),
		newBuildCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MessagePack IPC server on stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// runServe loads the dictionary and serves requests until stdin closes or a signal arrives.
func (a *app) runServe(cmd *cobra.Command, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.loadConfig(a.dictOverrides); err != nil {
		return err
	}
	completer, err := a.buildCompleter(ctx)
	if err != nil {
		return err
	}

	srv := server.NewServer(completer, a.config.Server, a.metrics, cmd.InOrStdin(), cmd.OutOrStdout())

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(bgCtx)
	if a.activePath != "" {
		g.Go(func() error {
			return config.Watch(gctx, a.activePath, func(c *config.Config) {
				srv.UpdateConfig(c.Server)
			})
		})
	}
	if metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, metricsAddr, a.metrics)
		})
	}

	showStartupInfo(a.config.Dict.Paths, completer.Stats().TotalWords)

	// Start blocks on stdin, which no context can interrupt, so it runs outside the group.
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err = <-done:
	case <-gctx.Done():
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "\nExiting...\n")
		}
	}
	cancel()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	return err
}

func newCliCmd(a *app) *cobra.Command {
	var (
		limit, minPrefix, maxPrefix int
		noFilter                    bool
	)
	defaults := config.DefaultConfig().CLI

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Interactive prompt for testing and debugging completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(func(c *config.Config) {
				a.dictOverrides(c)
				flags := cmd.Flags()
				if flags.Changed("limit") {
					c.CLI.DefaultLimit = limit
				}
				if flags.Changed("prmin") {
					c.CLI.MinPrefix = minPrefix
				}
				if flags.Changed("prmax") {
					c.CLI.MaxPrefix = maxPrefix
				}
				if flags.Changed("no-filter") {
					c.CLI.NoFilter = noFilter
				}
			}); err != nil {
				return err
			}

			completer, err := a.buildCompleter(cmd.Context())
			if err != nil {
				return err
			}
			c := a.config.CLI
			log.Debug("Input info:",
				"minPrefix", c.MinPrefix,
				"maxPrefix", c.MaxPrefix,
				"limit", c.DefaultLimit,
				"noFilter", c.NoFilter)

			handler := cli.NewInputHandler(completer, c.MinPrefix, c.MaxPrefix, c.DefaultLimit, c.NoFilter, a.config.Dict.Lowercase)
			handler.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
			return handler.Start()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaults.DefaultLimit, "Number of suggestions to return")
	cmd.Flags().IntVar(&minPrefix, "prmin", defaults.MinPrefix, "Minimum prefix length for suggestions")
	cmd.Flags().IntVar(&maxPrefix, "prmax", defaults.MaxPrefix, "Maximum prefix length for suggestions")
	cmd.Flags().BoolVar(&noFilter, "no-filter", defaults.NoFilter, "Disable input filtering (numbers, symbols, repeated letters)")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "query <prefix>",
		Short: "Print the top suggestions for one prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(a.dictOverrides); err != nil {
				return err
			}
			completer, err := a.buildCompleter(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.config.CLI.DefaultLimit
			}
			// length checks stay with the interactive prompt; a one-shot query takes any prefix
			handler := cli.NewInputHandler(completer, 0, a.config.CLI.MaxPrefix, limit, true, a.config.Dict.Lowercase)
			handler.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
			handler.HandleInput(args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", config.DefaultConfig().CLI.DefaultLimit, "Number of suggestions to return")
	return cmd
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		outDir    string
		chunkSize int
	)
	cmd := &cobra.Command{
		Use:   "build <input>...",
		Short: "Convert text dictionaries into binary chunk files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(func(c *config.Config) {
				a.dictOverrides(c)
				c.Dict.Paths = args
			}); err != nil {
				return err
			}
			result, err := a.loadEntries(cmd.Context())
			if err != nil {
				return err
			}
			paths, err := dictionary.WriteChunks(outDir, result.Entries, chunkSize)
			if err != nil {
				return err
			}
			out := logger.Printer(cmd.OutOrStdout(), "")
			out.Printf("Wrote %d words to %d chunks in %s (%d lines skipped)",
				len(result.Entries), len(paths), outDir, result.Stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "data", "Directory for dict_NNNN.bin files")
	cmd.Flags().IntVar(&chunkSize, "chunk", 10000, "Words per chunk file")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the active config path, or rewrite it with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := logger.Printer(cmd.OutOrStdout(), "")
			if rebuild {
				path, err := config.RebuildConfigFile(a.configPath)
				if err != nil {
					return fmt.Errorf("failed to rebuild config: %w", err)
				}
				out.Printf("Wrote default config to %s", path)
				return nil
			}
			if err := a.loadConfig(nil); err != nil {
				return err
			}
			out.Print(config.GetActiveConfigPath(a.activePath))
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Overwrite the config file with default values")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	out := log.NewWithOptions(w, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	out.SetStyles(styles)

	out.Print("")
	out.Print("[ wordrank ] Frequency ranked word completions")
	out.Print("", "version", Version)
	out.Print("")
	out.Print("use -h or --help to see available options")
	out.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(paths []string, words int) {
	info := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
	info.Print("===========")
	info.Print(" wordrank ")
	info.Print("===========")
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("dictionary: %v", paths)
	info.Infof("words: %d", words)
	info.Info("status: ready")
	info.Print("===========")
}
