package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/logging"
	"github.com/conneroisu/typetour/internal/watcher"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"c", "lint"},
	Short:   "Check a content file for problems",
	Long: `Parse and lint a tour content file. Blank titles and empty documents are
errors; duplicate titles, empty code samples, and unbalanced body markup are
warnings. With --watch the file is checked again every time it is saved.

Examples:
  typetour check --content tour.yml
  typetour check --content tour.yml --watch
  typetour check                         # Check the built-in tour`,
	RunE: runCheck,
}

var (
	checkWatch    bool
	checkDebounce time.Duration
)

// errCheckFailed is returned when the checked content has errors.
var errCheckFailed = errors.New("content check failed")

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-check the file whenever it changes")
	checkCmd.Flags().DurationVar(&checkDebounce, "debounce", 300*time.Millisecond, "Quiet period before re-checking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Content.Path
	out := cmd.OutOrStdout()

	if !checkWatch {
		return checkContent(out, path)
	}
	if path == "" {
		return errors.New("--watch needs a content file (--content)")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchContent(ctx, out, path, checkDebounce, logger)
}

// checkContent prints every diagnostic for the document at path and
// returns errCheckFailed when any of them is an error.
func checkContent(w io.Writer, path string) error {
	var (
		doc *catalog.Document
		err error
	)
	if path == "" {
		doc, err = catalog.ParseBuiltin()
	} else {
		doc, err = catalog.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return errCheckFailed
	}

	diags := catalog.Lint(doc)
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}

	if catalog.HasErrors(diags) {
		return errCheckFailed
	}

	// Lint passes, so this only fails on problems it does not look for,
	// such as broken markdown.
	tour, err := doc.Build()
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return errCheckFailed
	}

	fmt.Fprintf(w, "%s: %d pages OK (%d notes)\n", displayName(doc.Source), tour.Len(), len(diags))
	return nil
}

func displayName(source string) string {
	if source == catalog.BuiltinSource {
		return "built-in tour"
	}
	return source
}

// watchContent checks path once, then again after every burst of changes,
// until ctx is done.
func watchContent(ctx context.Context, w io.Writer, path string, debounce time.Duration, logger logging.Logger) error {
	fw, err := watcher.NewFileWatcher(debounce, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.YAMLFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, ev := range events {
			logger.Debug(ctx, "Content changed", "path", ev.Path, "type", ev.Type.String())
		}
		fmt.Fprintf(w, "\n--- %s changed, checking again\n", path)
		if err := checkContent(w, path); err != nil && !errors.Is(err, errCheckFailed) {
			return err
		}
		return nil
	})
	if err := fw.WatchFile(path); err != nil {
		return err
	}

	// A failing first check keeps watching so the author can fix it.
	_ = checkContent(w, path)
	fmt.Fprintf(w, "Watching %s for changes (Ctrl+C to stop)\n", path)

	if err := fw.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
