package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/jobhunter/internal/model"
)

// maxChanges caps the change list shown to the user.
const maxChanges = 8

// ResumeTailor rewrites a resume for one job using an LLM.
type ResumeTailor struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewResumeTailor creates a tailor that renders tmpl and sends it to provider.
func NewResumeTailor(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *ResumeTailor {
	return &ResumeTailor{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Tailor returns resume rewritten for job.
func (t *ResumeTailor) Tailor(ctx context.Context, resume string, job model.Job) (model.TailoredResume, error) {
	if strings.TrimSpace(resume) == "" {
		return model.TailoredResume{}, fmt.Errorf("resume is empty")
	}

	var promptBuf bytes.Buffer
	if err := t.tmpl.Execute(&promptBuf, struct {
		Job    model.Job
		Resume string
	}{Job: job, Resume: resume}); err != nil {
		return model.TailoredResume{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := t.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return model.TailoredResume{}, fmt.Errorf("llm complete: %w", err)
	}

	out, err := parseTailored(raw)
	if err != nil {
		return model.TailoredResume{}, fmt.Errorf("parse tailored resume: %w", err)
	}
	if t.logger != nil {
		t.logger.Debug("resume tailored", "company", job.Company, "title", job.Title, "match_score", out.MatchScore)
	}
	return out, nil
}

func parseTailored(raw string) (model.TailoredResume, error) {
	var to tailoredOutput
	if err := json.Unmarshal([]byte(raw), &to); err != nil {
		return model.TailoredResume{}, fmt.Errorf("unmarshal tailored JSON: %w", err)
	}
	if strings.TrimSpace(to.ResumeMarkdown) == "" {
		return model.TailoredResume{}, fmt.Errorf("llm returned an empty resume")
	}

	out := model.TailoredResume{
		Markdown:   to.ResumeMarkdown,
		Changes:    to.Changes,
		MatchScore: min(max(to.MatchScore, 0), 100),
	}
	if len(out.Changes) > maxChanges {
		out.Changes = out.Changes[:maxChanges]
	}
	return out, nil
}
