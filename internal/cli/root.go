// Package cli implements the ifsaudit command tree. Each command loads
// the working draft, runs one engine operation, and saves the draft
// back; the only files that leave the workstation are exported
// packages.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/config"
	"github.com/ifs-audit/actionplan/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Draft      string

	// Actor identity; flags override the config file.
	Name string
	Role string

	// Engine allows tests to inject deterministic time and IDs.
	// If nil, commands build one from the loaded config.
	Engine *engine.Engine

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ifsaudit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ifsaudit",
		Short: "IFS audit action-plan workflow",
		Long: `ifsaudit moves an audit action plan between auditor, site, and
reviewer as a single portable package file. Import findings from the
audit spreadsheet, work on a local draft, and export a versioned
package to hand to the next party.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Draft, "draft", "plan.ifsdraft", "path to the working draft")
	cmd.PersistentFlags().StringVar(&opts.Name, "name", "", "acting user name (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Role, "role", "", "acting role: Auditeur|Site|Reviewer (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewCommentCommand(opts))
	cmd.AddCommand(NewEvidenceCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewFinalizeCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for a command invocation.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// actor resolves the acting identity from flags and config. The role is
// required for every command; the name requirement is enforced by the
// engine per operation.
func (opts *RootOptions) actor() (audit.Actor, error) {
	name := opts.Name
	roleStr := opts.Role
	if opts.cfg != nil {
		if name == "" {
			name = opts.cfg.Actor.Name
		}
		if roleStr == "" {
			roleStr = opts.cfg.Actor.Role
		}
	}
	if roleStr == "" {
		return audit.Actor{}, NewExitError(ExitCommandError, "no role given: set --role or actor.role in the config file")
	}
	role, err := audit.ParseRole(roleStr)
	if err != nil {
		return audit.Actor{}, WrapExitError(ExitCommandError, "bad role", err)
	}
	return audit.Actor{Name: name, Role: role}, nil
}

// engine returns the injected engine or builds one from config limits.
func (opts *RootOptions) engine() *engine.Engine {
	if opts.Engine != nil {
		return opts.Engine
	}
	e := engine.New()
	if opts.cfg != nil {
		if mb := opts.cfg.Limits.MaxEvidenceMB; mb > 0 {
			e.MaxEvidenceBytes = mb * 1024 * 1024
		}
		if mb := opts.cfg.Limits.WarnPackageMB; mb > 0 {
			e.WarnPackageBytes = mb * 1024 * 1024
		}
		e.EnforcePackageLimit = opts.cfg.Limits.EnforcePackage
	}
	return e
}
