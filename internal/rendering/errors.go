// Package rendering turns a composed interview report into a file on disk.
package rendering

import "fmt"

// TemplateError is returned when the embedded report template cannot be parsed or executed.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error { return e.Cause }

// RenderError is returned when an artifact cannot be produced or written. Kind names the
// renderer (pdf, chrome, html) when known.
type RenderError struct {
	Kind    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	prefix := "render error"
	if e.Kind != "" {
		prefix = fmt.Sprintf("render error (%s)", e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *RenderError) Unwrap() error { return e.Cause }
