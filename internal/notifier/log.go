// Package notifier delivers new saved-search matches.
package notifier

import (
	"log/slog"

	"github.com/amishk599/jobhunter/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes each new job to a logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per job. It never fails.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"title", j.Title, "company", j.Company, "location", j.Location, "url", j.URL}
		if j.SalaryRange != "" {
			args = append(args, "salary", j.SalaryRange)
		}
		if j.PostedAt != nil {
			args = append(args, "posted_at", j.PostedAt.Format("2006-01-02"))
		} else if j.PostedText != "" && j.PostedText != model.UnknownPosted {
			args = append(args, "posted", j.PostedText)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
