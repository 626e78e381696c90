package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	crmsync "github.com/Werneck0live/pipeline-crm/internal/sync"
)

// Exit codes for crmctl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2 // bad flags or arguments, validation failures
	ExitConflict     = 3 // record changed since it was loaded
	ExitNotFound     = 4
	ExitTransport    = 5 // API unreachable or 5xx
)

// ExitError carries an explicit exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps an error to the process exit code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, models.ErrConflict), errors.Is(err, crmsync.ErrStaleEdit), errors.Is(err, crmsync.ErrCommitInFlight):
		return ExitConflict
	case errors.Is(err, models.ErrNotFound), errors.Is(err, crmsync.ErrStalePosition):
		return ExitNotFound
	case errors.Is(err, models.ErrValidation):
		return ExitCommandError
	case errors.Is(err, models.ErrTransport):
		return ExitTransport
	}
	return ExitFailure
}

func errorCode(err error) string {
	switch GetExitCode(err) {
	case ExitCommandError:
		return "invalid"
	case ExitConflict:
		return "conflict"
	case ExitNotFound:
		return "not_found"
	case ExitTransport:
		return "transport"
	}
	return "failed"
}

func errorDetails(err error) any {
	var ce *models.ConflictError
	if errors.As(err, &ce) {
		return map[string]int64{"expectedRevision": ce.ExpectedRevision, "currentRevision": ce.CurrentRevision}
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return map[string]string{"field": ve.Field}
	}
	return nil
}

// CLIResponse is the JSON envelope of every --format json result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter handles JSON vs text output.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data as a JSON envelope, or runs text against a tab
// aligned writer.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

func emit(cmd *cobra.Command, opts *RootOptions, data any, text func(w io.Writer)) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(data, text)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
