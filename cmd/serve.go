package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
	"github.com/conneroisu/typetour/internal/logging"
	"github.com/conneroisu/typetour/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the tour in the browser",
	Long: `Start the tour server. Every browser gets its own session: edits made in
the code editor are kept while the reader moves between pages.

Examples:
  typetour serve                        # Built-in TypeScript tour on :8080
  typetour serve --content go-tour.yml  # Your own pages
  typetour serve -p 3000 --open         # Other port, open the browser`,
	RunE: runServe,
}

var serveFlags *StandardFlags

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.NoOpen {
		cfg.Server.Open = false
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	op := logging.StartOperation(logger, "load_content")
	tour, err := openCatalog(cfg.Content.Path)
	if err != nil {
		return err
	}
	op.End(context.Background(), "pages", tour.Len(), "language", tour.Language())

	srv := server.New(cfg, tour, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := "http://" + cfg.Address()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d pages at %s\n", tour.Len(), address)

	if cfg.Server.Open {
		go openBrowser(ctx, logger, address)
	}

	if err := srv.Start(ctx); err != nil {
		if strings.Contains(err.Error(), "address already in use") || strings.Contains(err.Error(), "bind") {
			return tourerrors.NewEnhancedError(
				fmt.Sprintf("Failed to start server on port %d", cfg.Server.Port),
				err,
				tourerrors.ServerStartError(cfg.Server.Port),
			)
		}
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info(ctx, "Shut down cleanly")
	return nil
}

func openBrowser(ctx context.Context, logger logging.Logger, address string) {
	// Give the listener a moment to come up.
	select {
	case <-ctx.Done():
		return
	case <-time.After(200 * time.Millisecond):
	}

	u, err := url.Parse(address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		logger.Warn(ctx, err, "Refusing to open browser for invalid URL", "url", address)
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", u.String())
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String())
	case "darwin":
		cmd = exec.Command("open", u.String())
	default:
		logger.Warn(ctx, nil, "Cannot open a browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		logger.Warn(ctx, err, "Failed to open browser")
	}
}
