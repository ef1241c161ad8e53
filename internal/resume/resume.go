// Package resume writes job-specific copies of the user's resume.
package resume

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobhunter/internal/model"
)

// maxResumeBytes rejects files that are clearly not a resume.
const maxResumeBytes = 1 << 20

// Tailorer rewrites a resume for one job.
type Tailorer interface {
	Tailor(ctx context.Context, resume string, job model.Job) (model.TailoredResume, error)
}

// Optimizer tailors the resume at a path for jobs and writes each result to
// its own Markdown file under the output directory.
type Optimizer struct {
	tailor         Tailorer
	outputDir      string
	maxConcurrency int
	logger         *slog.Logger
	now            func() time.Time
	newID          func() string
}

// NewOptimizer creates an Optimizer. maxConcurrency bounds parallel LLM
// calls in OptimizeAll.
func NewOptimizer(tailor Tailorer, outputDir string, maxConcurrency int, logger *slog.Logger) *Optimizer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Optimizer{
		tailor:         tailor,
		outputDir:      outputDir,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		now:            time.Now,
		newID:          func() string { return uuid.NewString()[:8] },
	}
}

// Optimize tailors the resume at resumePath for job. The returned record has
// no ID or JobID beyond what job carries; the caller persists it.
func (o *Optimizer) Optimize(ctx context.Context, resumePath string, job model.Job) (model.OptimizedResume, error) {
	text, err := ReadResume(resumePath)
	if err != nil {
		return model.OptimizedResume{}, err
	}
	return o.optimize(ctx, resumePath, text, job)
}

// OptimizeAll tailors the resume for every job concurrently. Results keep
// the order of jobs. The first failure cancels the rest.
func (o *Optimizer) OptimizeAll(ctx context.Context, resumePath string, jobs []model.Job) ([]model.OptimizedResume, error) {
	text, err := ReadResume(resumePath)
	if err != nil {
		return nil, err
	}

	results := make([]model.OptimizedResume, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			r, err := o.optimize(gctx, resumePath, text, job)
			if err != nil {
				return fmt.Errorf("tailoring resume for %q at %s: %w", job.Title, job.Company, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Optimizer) optimize(ctx context.Context, resumePath, text string, job model.Job) (model.OptimizedResume, error) {
	tailored, err := o.tailor.Tailor(ctx, text, job)
	if err != nil {
		return model.OptimizedResume{}, err
	}

	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return model.OptimizedResume{}, fmt.Errorf("creating resume output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.md", o.now().Format("20060102_150405"), o.newID())
	outPath := filepath.Join(o.outputDir, name)
	if err := os.WriteFile(outPath, []byte(render(job, tailored)), 0o644); err != nil {
		return model.OptimizedResume{}, fmt.Errorf("writing tailored resume: %w", err)
	}

	o.logger.Info("resume tailored", "company", job.Company, "title", job.Title, "path", outPath)
	return model.OptimizedResume{
		JobID:         job.ID,
		OriginalPath:  resumePath,
		OptimizedPath: outPath,
		Notes:         notes(tailored),
	}, nil
}

// ReadResume loads a plain text or Markdown resume.
func ReadResume(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("no resume path set")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("resume path %s is a directory", path)
	}
	if info.Size() > maxResumeBytes {
		return "", fmt.Errorf("resume %s is larger than %d bytes", path, maxResumeBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("resume %s is empty", path)
	}
	return text, nil
}

func render(job model.Job, t model.TailoredResume) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- Tailored for %s at %s", job.Title, job.Company)
	if job.URL != "" {
		fmt.Fprintf(&b, " (%s)", job.URL)
	}
	b.WriteString(" -->\n\n")
	b.WriteString(strings.TrimSpace(t.Markdown))
	b.WriteString("\n")
	return b.String()
}

func notes(t model.TailoredResume) string {
	var parts []string
	if t.MatchScore > 0 {
		parts = append(parts, fmt.Sprintf("Match score: %d/100", t.MatchScore))
	}
	parts = append(parts, t.Changes...)
	return strings.Join(parts, "; ")
}
