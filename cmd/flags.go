package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/typetour/internal/config"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port   int
	Host   string
	Open   bool
	NoOpen bool

	// Output flags
	OutputFormat string
	Quiet        bool
}

// Output formats accepted by --output.
var outputFormats = []string{"table", "json", "yaml"}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", config.DefaultPort, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", config.DefaultHost, "Host to bind to")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the tour in a browser")
	cmd.Flags().BoolVar(&flags.NoOpen, "no-open", false, "Never open a browser, even if the config says so")

	AddFlagValidation(cmd, "port", ValidatePort)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	AddFlagValidation(cmd, "output", func(format string) error {
		return ValidateFormat(format, outputFormats)
	})
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a --port value.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// ValidateFormat checks format against the allowed values, case-insensitively.
func ValidateFormat(format string, allowed []string) error {
	for _, candidate := range allowed {
		if strings.EqualFold(format, candidate) {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q, must be one of: %s", format, strings.Join(allowed, ", "))
}
