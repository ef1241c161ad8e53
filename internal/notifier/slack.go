package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

// messageGap spaces out webhook posts to stay under Slack's rate limit.
const messageGap = 500 * time.Millisecond

// SlackNotifier posts job alerts to a Slack Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	sleep      func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts one Block Kit message per job.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Notify sends each job as its own message. It fails only if every message
// fails; individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 {
			s.sleep(messageGap)
		}
		if err := s.send(buildPayload(j)); err != nil {
			s.logger.Error("slack notification failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}
	if failures == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(jobs)-failures, "failed", failures)
	return nil
}

// send posts one payload, retrying once after a 429.
func (s *SlackNotifier) send(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		s.sleep(retryAfter)
		if status, _, err = s.post(body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}
	if status != http.StatusOK {
		return &model.HTTPError{StatusCode: status, Err: fmt.Errorf("slack webhook returned %d", status)}
	}
	return nil
}

func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	wait := time.Second
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		wait = time.Duration(secs) * time.Second
	}
	return resp.StatusCode, wait, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

// SendTestMessage sends a sample job to verify the notifier is wired up.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	return n.Notify([]model.Job{{
		ExternalID: "test-001",
		Title:      "Test Notification: Integration Verified",
		Company:    "Job Hunter",
		Location:   "Everywhere",
		URL:        "https://www.linkedin.com/jobs/",
		PostedText: "just now",
		PostedAt:   &now,
		Source:     model.SourceLinkedIn,
	}})
}

func mrkdwn(label, value string) slackText {
	return slackText{Type: "mrkdwn", Text: "*" + label + ":*\n" + value}
}

func buildPayload(j model.Job) slackPayload {
	posted := j.PostedText
	if j.PostedAt != nil {
		posted = j.PostedAt.Format("Mon, 02 Jan 2006")
	}
	if posted == "" {
		posted = model.UnknownPosted
	}

	details := []slackText{mrkdwn("Posted", posted)}
	if j.SalaryRange != "" {
		details = append(details, mrkdwn("Salary", j.SalaryRange))
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "💼 " + j.Company + ": " + j.Title},
		},
		{
			Type:   "section",
			Fields: []slackText{mrkdwn("Company", j.Company), mrkdwn("Location", j.Location)},
		},
		{
			Type:   "section",
			Fields: details,
		},
		{
			Type: "actions",
			Elements: []slackElement{{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "View on LinkedIn"},
				URL:   j.URL,
				Style: "primary",
			}},
		},
		{Type: "divider"},
	}
	return slackPayload{Blocks: blocks}
}
