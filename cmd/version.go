package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/typetour/internal/version"
)

var versionFormat string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the typetour version, commit, build time, Go version, and platform.

Examples:
  typetour version
  typetour version --format json`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	AddFlagValidation(versionCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"text", "json"})
	})
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		return outputVersionJSON(out, info)
	case "text":
		return outputVersionText(out, info)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}

func outputVersionText(w io.Writer, info version.BuildInfo) error {
	fmt.Fprintln(w, info.Short())
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(w, "Built: %s\n", info.BuildTime.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)
	return nil
}

func outputVersionJSON(w io.Writer, info version.BuildInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		version.BuildInfo
		IsRelease bool `json:"is_release"`
	}{info, info.IsRelease()})
}
