package errors

import (
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// SuggestionContext provides context for generating suggestions
type SuggestionContext struct {
	ConfigPath  string
	ContentPath string
}

// ContentError generates suggestions for a content file that failed to load.
func ContentError(err error, ctx *SuggestionContext) []ErrorSuggestion {
	var suggestions []ErrorSuggestion

	switch GetCode(err) {
	case ErrCodeFileNotFound:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check the content path",
			Description: "The content file could not be opened",
			Command:     "ls -la " + ctx.ContentPath,
		}, ErrorSuggestion{
			Title:       "Use the built-in tour",
			Description: "Leave content.path empty to serve the embedded TypeScript pages",
			Command:     "typetour serve",
		})
	case ErrCodeContentSyntax:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix the YAML syntax",
			Description: "Each page needs a title and usually a code block",
			Example:     "pages:\n  - title: Basic Syntax\n    code: |\n      const a: number = 1;",
		})
	case ErrCodeContentEmpty:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Add at least one page",
			Description: "A tour needs one or more pages to navigate",
		})
	case ErrCodeTitleMissing:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Give every page a title",
			Description: "Titles are shown as the page heading and cannot be blank",
		})
	}

	suggestions = append(suggestions, ErrorSuggestion{
		Title:       "Lint the content file",
		Description: "Report every problem in the file at once",
		Command:     "typetour check --content " + ctx.ContentPath,
	})

	return suggestions
}

// ConfigurationError generates suggestions for configuration errors
func ConfigurationError(issue string, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Review the configuration file",
			Description: issue,
			Command:     "cat " + ctx.ConfigPath,
		},
	}

	lower := strings.ToLower(issue)
	if strings.Contains(lower, "port") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Use a port between 0 and 65535",
			Command: "typetour serve --port 8080",
		})
	}
	if strings.Contains(lower, "editor") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Check editor options",
			Example: "editor:\n  height: 600\n  font_size: 21\n  theme: vs-light",
		})
	}
	if strings.Contains(lower, "log") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check log settings",
			Description: "log.format must be text or json",
		})
	}

	return suggestions
}

// ServerStartError generates suggestions for a server that could not bind.
func ServerStartError(port int) []ErrorSuggestion {
	return []ErrorSuggestion{
		{
			Title:       "Port may already be in use",
			Description: fmt.Sprintf("Another process may be listening on port %d", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		},
		{
			Title:   "Try a different port",
			Command: fmt.Sprintf("typetour serve --port %d", port+1),
		},
	}
}

// FormatSuggestions formats suggestions for display
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	title := e.Title
	if e.OriginalError != nil {
		title += ": " + e.OriginalError.Error()
	}
	return FormatSuggestions(title, e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}
