package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/config"
)

const userAgent = "storyreel/0.1.0"

// Service defines the notification surface used by the pipeline.
type Service interface {
	NotifyEpisodeCompleted(ctx context.Context, episode int, elapsed time.Duration) error
	NotifyEpisodeFailed(ctx context.Context, episode int, stage string, err error) error
	NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error
	TestNotification(ctx context.Context) error
}

// BatchSummary describes a finished batch.
type BatchSummary struct {
	Start       int
	End         int
	Succeeded   int
	Failed      []int
	Duration    time.Duration
	Interrupted bool
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		episodeSuccess: cfg.Notifications.EpisodeSuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	episodeSuccess bool
}

func (n *ntfyService) NotifyEpisodeCompleted(ctx context.Context, episode int, elapsed time.Duration) error {
	if !n.episodeSuccess {
		return nil
	}
	data := payload{
		title:   "storyreel - Episode Complete",
		message: fmt.Sprintf("🎬 Episode %d rendered in %s", episode, roundDuration(elapsed)),
		tags:    []string{"storyreel", "episode", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodeFailed(ctx context.Context, episode int, stage string, err error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "❌ Episode %d failed", episode)
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" in ")
		builder.WriteString(stage)
		builder.WriteString(" stage")
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "storyreel - Episode Failed",
		message:  builder.String(),
		tags:     []string{"storyreel", "episode", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	durationText := roundDuration(summary.Duration)

	title := "storyreel - Batch Complete"
	message := fmt.Sprintf("Episodes %d-%d complete: %d rendered in %s", summary.Start, summary.End, summary.Succeeded, durationText)
	if len(summary.Failed) > 0 {
		title = "storyreel - Batch Complete (with errors)"
		failed := make([]string, len(summary.Failed))
		for i, ep := range summary.Failed {
			failed[i] = fmt.Sprint(ep)
		}
		message = fmt.Sprintf("Episodes %d-%d complete: %d succeeded, %d failed (%s) in %s",
			summary.Start, summary.End, summary.Succeeded, len(summary.Failed), strings.Join(failed, ", "), durationText)
	}
	if summary.Interrupted {
		title = "storyreel - Batch Interrupted"
		message += "; remaining episodes were not attempted"
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"storyreel", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "storyreel - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"storyreel", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func roundDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyEpisodeCompleted(context.Context, int, time.Duration) error { return nil }
func (noopService) NotifyEpisodeFailed(context.Context, int, string, error) error    { return nil }
func (noopService) NotifyBatchCompleted(context.Context, BatchSummary) error         { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
