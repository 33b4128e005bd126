package errors

import (
	"encoding/json"
	"fmt"

	goerrors "errors"

	"github.com/morel-lang/morelc/internal/ast"
)

// Report is the canonical structured error type every phase returns.
// All error builders return *Report, wrapped as a ReportError so the
// structure survives a plain error return and errors.As unwrapping.
type Report struct {
	Schema  string         `json:"schema"` // always "morelc.error/v1"
	Code    string         `json:"code"`
	Kind    Kind           `json:"kind"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     *ast.Pos       `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	if e.Rep.Pos != nil {
		return fmt.Sprintf("%s: %s: %s", e.Rep.Pos, e.Rep.Code, e.Rep.Message)
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if goerrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// New builds a Report and wraps it as an error in one step.
func New(phase string, kind Kind, code string, pos ast.Pos, msg string, data map[string]any) error {
	return &ReportError{Rep: &Report{
		Schema:  "morelc.error/v1",
		Code:    code,
		Kind:    kind,
		Phase:   phase,
		Message: msg,
		Pos:     &pos,
		Data:    data,
	}}
}

// ToJSON renders a Report as deterministic JSON.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
