package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"lifegrid/internal/sequencer"
	"lifegrid/pkg/sims/life"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failed after it started
	ExitCommandError = 2 // Bad flags, unreadable scene, missing database
)

// ExitError carries the process exit code for a failed command.
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
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
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope written for every result.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a result. Text output uses fmt's default formatting, so
// values implementing fmt.Stringer control their own rendering.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprint(f.Writer, data)
	return err
}

// Error outputs an error in the configured format. JSON goes to Writer so
// that every response shares one stream; text goes to ErrWriter.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.ErrWriter, "Error [%s]: %s\n", code, message)
	return err
}

// ErrorCode names the exit code of err for error responses.
func ErrorCode(err error) string {
	switch GetExitCode(err) {
	case ExitSuccess:
		return "ok"
	case ExitCommandError:
		return "command_error"
	default:
		return "run_failed"
	}
}

// frameView renders a frame as a header line followed by the 0/1 grid.
type frameView sequencer.Frame

func (v frameView) String() string {
	g := life.New()
	if err := g.Set(uint16(v.Rows), uint16(v.Cols)); err != nil {
		return fmt.Sprintf("gen %d: %v\n", v.Gen, err)
	}
	cells := make([]bool, len(v.Cells))
	for i, c := range v.Cells {
		cells[i] = c != 0
	}
	if err := g.Load(cells...); err != nil {
		return fmt.Sprintf("gen %d: %v\n", v.Gen, err)
	}
	return fmt.Sprintf("gen %d alive %d\n%s", v.Gen, v.Alive, g)
}

// MarshalJSON writes cells as a list of 0/1 numbers instead of base64.
func (v frameView) MarshalJSON() ([]byte, error) {
	cells := make([]int, len(v.Cells))
	for i, c := range v.Cells {
		cells[i] = int(c)
	}
	return json.Marshal(struct {
		Gen   int   `json:"gen"`
		Rows  int   `json:"rows"`
		Cols  int   `json:"cols"`
		Alive int   `json:"alive"`
		Cells []int `json:"cells"`
	}{v.Gen, v.Rows, v.Cols, v.Alive, cells})
}
