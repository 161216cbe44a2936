package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/sheetorders/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The run started but failed
	ExitCommandError = 2 // Bad flags, configuration, or source setup
)

// ExitError represents an error with a specific exit code.
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

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs a mapped error in the configured format.
func (f *OutputFormatter) Error(err error, runID string) error {
	msg := core.MapError(err)

	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    msg.Code,
				Message: msg.Message,
				Action:  msg.Action,
				RunID:   runID,
			},
		})
	}

	_, werr := fmt.Fprintf(f.Writer, "Error: %s\n", core.FormatUserError(err))
	return werr
}

// Summary renders a run result as the end-of-run text report.
type Summary struct {
	*core.RunResult
}

// MarshalJSON emits the underlying result.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.RunResult)
}

func (s Summary) String() string {
	var b strings.Builder
	r := s.RunResult

	fmt.Fprintln(&b, "=== SUMMARY ===")
	fmt.Fprintf(&b, "Run: %s (%s)\n", r.RunID, r.Timestamp)
	fmt.Fprintf(&b, "Rows examined: %d\n", r.RowsExamined)
	fmt.Fprintf(&b, "Mock orders created: %d\n", r.OrdersStaged())
	fmt.Fprintf(&b, "Duplicates skipped: %d\n", r.Duplicates)
	fmt.Fprintf(&b, "Status not new: %d\n", r.SkippedStatus)
	fmt.Fprintf(&b, "Rows with errors: %d\n", len(r.RowErrors))
	for _, e := range r.RowErrors {
		codes := make([]string, len(e.Codes))
		for i, c := range e.Codes {
			codes[i] = string(c)
		}
		fmt.Fprintf(&b, "  row %d: %s\n", e.Row, strings.Join(codes, ", "))
	}
	fmt.Fprintf(&b, "Markers written: %d", r.MarkersWritten)

	return b.String()
}
