package ai

import (
	"context"

	"github.com/amishk599/jobhunter/internal/model"
)

// NopTailor is used when ai.enabled is false. It returns the resume
// unchanged with no LLM calls.
type NopTailor struct{}

// NewNopTailor returns a NopTailor.
func NewNopTailor() *NopTailor {
	return &NopTailor{}
}

// Tailor returns the resume unchanged.
func (n *NopTailor) Tailor(_ context.Context, resume string, _ model.Job) (model.TailoredResume, error) {
	return model.TailoredResume{
		Markdown: resume,
		Changes:  []string{"AI tailoring is disabled; resume copied unchanged."},
	}, nil
}
