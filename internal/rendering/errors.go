// Package rendering renders decision packets (summary, memo and letter) as
// Markdown and HTML.
package rendering

import "fmt"

// Stage names the rendering step that failed.
type Stage string

// Rendering stages, in order.
const (
	StageMarkdown Stage = "markdown"
	StageConvert  Stage = "convert"
	StagePage     Stage = "page"
)

// RenderError reports a failed rendering stage for one packet.
type RenderError struct {
	Stage        Stage
	Organization string
	Cause        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s for %q: %v", e.Stage, e.Organization, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
