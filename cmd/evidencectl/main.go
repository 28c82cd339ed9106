// Command evidencectl validates audit evidence documents against the rule
// set: one-shot validation, inbox watch mode, run history, and rule linting.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wudi/evidencekit/config"
	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/observability"
	"github.com/wudi/evidencekit/ocr"
	"github.com/wudi/evidencekit/ocr/tesseract"
	"github.com/wudi/evidencekit/pipeline"
	"github.com/wudi/evidencekit/rules"
	"github.com/wudi/evidencekit/store"
	"github.com/wudi/evidencekit/watch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errChecksFailed) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// errChecksFailed distinguishes "document failed validation" from program
// errors in the exit code.
var errChecksFailed = errors.New("document failed validation")

type app struct {
	cfg    config.Config
	log    observability.Logger
	noOCR  bool
	asJSON bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "evidencectl",
		Short:         "Validate audit evidence documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = observability.NewTextLogger(os.Stderr, logLevel(cfg.LogLevel))
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.noOCR, "no-ocr", false, "disable OCR (screenshot checks will not match)")
	root.AddCommand(newValidateCmd(a), newWatchCmd(a), newRunsCmd(a), newRulesCmd(a))
	return root
}

func logLevel(name string) observability.Level {
	switch name {
	case "debug":
		return observability.LevelDebug
	case "warn":
		return observability.LevelWarn
	case "error":
		return observability.LevelError
	}
	return observability.LevelInfo
}

func (a *app) ruleSet() (rules.Set, error) {
	if a.cfg.RulesPath == "" {
		return rules.Default(), nil
	}
	return rules.Load(a.cfg.RulesPath)
}

func (a *app) engine() ocr.Engine {
	if a.noOCR {
		return nil
	}
	return tesseract.New(tesseract.WithDefaultLanguages(a.cfg.OCRLanguages...))
}

func (a *app) buildPipeline() (*pipeline.Pipeline, error) {
	set, err := a.ruleSet()
	if err != nil {
		return nil, err
	}
	return pipeline.New(set, pipeline.Options{
		Engine:           a.engine(),
		DefaultThreshold: a.cfg.DefaultThreshold,
		Workers:          a.cfg.OCRWorkers,
		Languages:        a.cfg.OCRLanguages,
		Logger:           a.log,
	})
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate one document and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := a.buildPipeline()
			if err != nil {
				return err
			}
			path := args[0]
			format, err := evidence.ParseFormat(filepath.Ext(path))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			doc := evidence.NewDocument("", format, data)
			rep, err := pipe.Run(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if a.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), renderReport(path, rep, pipe.Rules()))
			}
			if !rep.OverallPass {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "emit the report as JSON")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox directory and validate documents as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := a.buildPipeline()
			if err != nil {
				return err
			}
			db, err := store.Open(a.cfg.StorePath)
			if err != nil {
				return err
			}
			defer db.Close()
			watcher, err := watch.New(a.cfg.InboxDir, pipe, db, watch.WithLogger(a.log))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.log.Info("watching inbox", observability.String("dir", a.cfg.InboxDir))
			return watcher.Run(ctx)
		},
	}
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent validation runs from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(a.cfg.StorePath)
			if err != nil {
				return err
			}
			defer db.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			runs, err := db.List(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule set",
	}
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "lint [FILE]",
		Short: "Validate a rule file (defaults to the configured rule set)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var set rules.Set
			var err error
			switch {
			case len(args) == 1:
				set, err = rules.Load(args[0])
			default:
				set, err = a.ruleSet()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rules (%d checklist, %d text, %d screenshot)\n",
				len(set),
				len(set.OfKind(rules.KindChecklist)),
				len(set.OfKind(rules.KindText)),
				len(set.OfKind(rules.KindScreenshot)))
			return nil
		},
	})
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.ruleSet()
			if err != nil {
				return err
			}
			for _, r := range set {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-10s %s\n", r.ID, r.Kind, r.Label)
			}
			return nil
		},
	})
	return rulesCmd
}
