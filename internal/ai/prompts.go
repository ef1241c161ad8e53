package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/resume_tailor.md
var resumeTailorPromptRaw string

// ResumeTailorTemplate is the parsed prompt template for resume tailoring.
// Parsed once at package init; reused on every Tailor call.
var ResumeTailorTemplate = template.Must(template.New("resume_tailor").Parse(resumeTailorPromptRaw))
