package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/typetour/internal/catalog"
)

var pagesCmd = &cobra.Command{
	Use:     "pages",
	Aliases: []string{"p", "ls"},
	Short:   "List the pages of the tour",
	Long: `List every page of the tour in order with its position, title, and the
size of its code sample.

Examples:
  typetour pages                        # Built-in tour as a table
  typetour pages -o json                # As JSON
  typetour pages --content tour.yml -o yaml`,
	RunE: runPages,
}

var pagesFlags *StandardFlags

func init() {
	rootCmd.AddCommand(pagesCmd)
	pagesFlags = AddStandardFlags(pagesCmd, "output")
}

// PageSummary is one row of `typetour pages`.
type PageSummary struct {
	Position  string `json:"position" yaml:"position"`
	Title     string `json:"title" yaml:"title"`
	CodeLines int    `json:"code_lines" yaml:"code_lines"`
	HasBody   bool   `json:"has_body" yaml:"has_body"`
}

// PagesOutput is the document printed by `typetour pages -o json|yaml`.
type PagesOutput struct {
	Language string        `json:"language" yaml:"language"`
	Pages    []PageSummary `json:"pages" yaml:"pages"`
}

func runPages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tour, err := openCatalog(cfg.Content.Path)
	if err != nil {
		return err
	}

	if pagesFlags.Quiet {
		return nil
	}

	out := summarize(tour)
	w := cmd.OutOrStdout()

	switch strings.ToLower(pagesFlags.OutputFormat) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(out)
	case "table", "":
		return outputPagesTable(w, out)
	default:
		return fmt.Errorf("unsupported format: %s", pagesFlags.OutputFormat)
	}
}

func summarize(tour *catalog.Catalog) PagesOutput {
	pages := tour.Pages()
	out := PagesOutput{
		Language: tour.Language(),
		Pages:    make([]PageSummary, len(pages)),
	}
	for i, page := range pages {
		out.Pages[i] = PageSummary{
			Position:  fmt.Sprintf("%d / %d", i+1, len(pages)),
			Title:     page.Title,
			CodeLines: countLines(page.Code),
			HasBody:   page.Body != "",
		}
	}
	return out
}

func countLines(code string) int {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return 0
	}
	return strings.Count(code, "\n") + 1
}

func outputPagesTable(w io.Writer, out PagesOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tLINES\tBODY")
	for _, page := range out.Pages {
		body := "-"
		if page.HasBody {
			body = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", page.Position, page.Title, page.CodeLines, body)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if out.Language != "" {
		fmt.Fprintf(w, "\n%d pages, language %s\n", len(out.Pages), out.Language)
	} else {
		fmt.Fprintf(w, "\n%d pages\n", len(out.Pages))
	}
	return nil
}
