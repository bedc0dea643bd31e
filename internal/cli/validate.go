package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrolog/internal/config"
	"github.com/roach88/pyrolog/internal/engine"
	"github.com/roach88/pyrolog/internal/reader"
)

// Error codes reported by validate.
const (
	ErrCodeRead   = "E_READ"
	ErrCodeSyntax = "E_SYNTAX"
	ErrCodeClause = "E_CLAUSE"
	ErrCodeConfig = "E_CONFIG"
)

// ValidationError is one problem found in a file.
type ValidationError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FileValidation is the result for a single file.
type FileValidation struct {
	File       string            `json:"file"`
	Valid      bool              `json:"valid"`
	Clauses    int               `json:"clauses"`
	Predicates int               `json:"predicates"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check program and config files without running them",
		Long: `Parse Prolog program files and load their clauses into a scratch
database without running any directive. Reports syntax errors, clauses
that redefine builtins and non-callable heads.

Files ending in .cue are checked against the engine config schema instead.

Exit codes:
  0 - All files are valid
  1 - At least one file has errors
  2 - Command error

Examples:
  pyrolog validate family.pl lists.pl
  pyrolog validate --format json engine.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, path := range files {
		f.VerboseLog("Validating %s", path)
		var v FileValidation
		if strings.EqualFold(filepath.Ext(path), ".cue") {
			v = validateConfig(path)
		} else {
			v = validateProgram(path)
		}
		if !v.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, v)
	}

	if f.JSON() {
		if result.Valid {
			return f.Success(result)
		}
		if err := f.Failure(result, "E_INVALID", "validation failed"); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	w := cmd.OutOrStdout()
	for _, v := range result.Files {
		if v.Valid {
			fmt.Fprintf(w, "✓ %s (%d clauses, %d predicates)\n", v.File, v.Clauses, v.Predicates)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", v.File)
		for _, e := range v.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "  %d:%d [%s] %s\n", e.Line, e.Col, e.Code, e.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", e.Code, e.Message)
			}
		}
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateProgram parses path and adds every clause to a scratch engine.
// Directives are skipped, never run.
func validateProgram(path string) FileValidation {
	v := FileValidation{File: path, Valid: true, Errors: []ValidationError{}}
	fail := func(e ValidationError) {
		v.Valid = false
		v.Errors = append(v.Errors, e)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fail(ValidationError{Code: ErrCodeRead, Message: err.Error()})
		return v
	}

	eng := engine.New(engine.WithLogger(slog.Default()))
	clauses, err := eng.Reader().ParseProgram(string(src))
	if err != nil {
		var se *reader.SyntaxError
		if errors.As(err, &se) {
			fail(ValidationError{Line: se.Pos.Line, Col: se.Pos.Col, Code: ErrCodeSyntax, Message: se.Message})
		} else {
			fail(ValidationError{Code: ErrCodeSyntax, Message: err.Error()})
		}
		return v
	}

	for _, c := range clauses {
		if _, ok := engine.Directive(c.Term); ok {
			continue
		}
		v.Clauses++
		if err := eng.AddRule(c.Term, true); err != nil {
			fail(ValidationError{Line: c.Pos.Line, Col: c.Pos.Col, Code: ErrCodeClause, Message: err.Error()})
		}
	}
	v.Predicates = eng.Database().Len()
	return v
}

func validateConfig(path string) FileValidation {
	v := FileValidation{File: path, Valid: true, Errors: []ValidationError{}}
	if _, err := config.Load(path); err != nil {
		v.Valid = false
		v.Errors = append(v.Errors, ValidationError{Code: ErrCodeConfig, Message: err.Error()})
	}
	return v
}
