package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/quantik/automatic"
	"github.com/domino14/quantik/cache"
	"github.com/domino14/quantik/config"
	"github.com/domino14/quantik/gameanalysis"
	"github.com/domino14/quantik/qfen"
	"github.com/domino14/quantik/shell"
	"github.com/domino14/quantik/store"
	"github.com/domino14/quantik/symmetry"
	"github.com/domino14/quantik/validator"
)

var (
	GitVersion string
	cfg        = &config.Config{}
)

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

var rootCmd = &cobra.Command{
	Use:   "quantik",
	Short: "Quantik position tools: symmetry reduction, validation and game tree analysis",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.LoadFlagSet(cmd.Flags()); err != nil {
			return err
		}
		setupLogging(cfg.GetBool(config.ConfigDebug))
		return nil
	},
	SilenceUsage: true,
	RunE:         runShell,
}

var shellCmd = &cobra.Command{
	Use:   "shell [command]",
	Short: "Start the interactive shell, or run one shell command",
	RunE:  runShell,
}

var canonCmd = &cobra.Command{
	Use:   "canon <qfen>...",
	Short: "Print the canonical form of each position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tb := symmetry.DefaultTable()
		for _, a := range args {
			bb, err := qfen.Parse(a, false)
			if err != nil {
				return err
			}
			c, t := tb.Canonical(bb)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", bb.QFEN(), c.QFEN(), t)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <qfen>...",
	Short: "Check whether each position is a legal Quantik state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			bb, err := qfen.Parse(a, false)
			if err != nil {
				return err
			}
			next, res := validator.Validate(bb)
			if res == validator.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tplayer %d to move\n", bb.QFEN(), res, next)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", bb.QFEN(), res)
			}
		}
		return nil
	},
}

var (
	analyzeYAML      string
	analyzeHistogram int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Enumerate the game tree with symmetry reduction",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(cfg.GetString(config.ConfigStoreBackend), cfg.GetString(config.ConfigStorePath))
		if err != nil {
			return err
		}
		if s != nil {
			defer s.Close()
		}
		tb := symmetry.DefaultTable()
		capacity := cache.CapacityFromMemory(cfg.GetFloat64(config.ConfigCacheMemoryFraction), 96)
		a, err := gameanalysis.New(&gameanalysis.AnalysisConfig{
			MaxDepth: cfg.GetInt(config.ConfigAnalysisMaxDepth),
			Threads:  cfg.GetInt(config.ConfigAnalysisThreads),
			Finder:   symmetry.NewCachedFinder(tb.NoSwap(), cfg.GetInt(config.ConfigCacheShards), capacity),
			Store:    s,
		})
		if err != nil {
			return err
		}
		if err := a.Run(ctx); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, a.Table(true))
		if analyzeHistogram > 0 {
			fmt.Fprintf(out, "\nClass multiplicities at depth %d:\n", analyzeHistogram)
			if err := a.WriteHistogram(out, analyzeHistogram, 10, 60); err != nil {
				return err
			}
		}
		if analyzeYAML != "" {
			bts, err := a.Report().YAML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(analyzeYAML, bts, 0o644); err != nil {
				return err
			}
			log.Info().Str("file", analyzeYAML).Msg("wrote-report")
		}
		return nil
	},
}

var autoplayFile string

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Play random games and report how often each side wins",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		var summary *automatic.Summary
		var err error
		games := cfg.GetInt(config.ConfigAutoplayGames)
		threads := cfg.GetInt(config.ConfigAnalysisThreads)
		if autoplayFile != "" {
			f, ferr := os.Create(autoplayFile)
			if ferr != nil {
				return ferr
			}
			defer f.Close()
			summary, err = automatic.PlayRandomGames(ctx, games, threads, f)
		} else {
			summary, err = automatic.PlayRandomGames(ctx, games, threads, nil)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

func runShell(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		sc, err := shell.NewShellController(cfg)
		if err != nil {
			return err
		}
		defer sc.Close()
		resp, err := sc.Execute(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	}
	sc, err := shell.NewShellController(cfg)
	if err != nil {
		return err
	}
	fmt.Println("quantik", GitVersion)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go sc.Loop(sig)
	<-sig
	log.Info().Msg("got quit signal...")
	return nil
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	analyzeCmd.Flags().StringVar(&analyzeYAML, "yaml", "", "also write the report as YAML to this file")
	analyzeCmd.Flags().IntVar(&analyzeHistogram, "histogram", 0, "print a histogram of class multiplicities at this depth")
	autoplayCmd.Flags().StringVar(&autoplayFile, "file", "", "write a CSV log with one line per game")
	rootCmd.AddCommand(shellCmd, canonCmd, validateCmd, analyzeCmd, autoplayCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
