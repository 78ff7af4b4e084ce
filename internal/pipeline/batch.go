package pipeline

import (
	"context"
	"fmt"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/notifications"
	"storyreel/internal/services"
)

// Summary collects the outcome of a batch.
type Summary struct {
	Successful []int
	Failed     []int
	Results    []Result
	// Interrupted is set when cancellation stopped the batch before end.
	Interrupted bool
}

// Total is the number of episodes attempted.
func (s Summary) Total() int {
	return len(s.Results)
}

// RunBatch processes episodes start..end inclusive, one at a time. A failed
// episode is recorded and the batch moves on to the next number. progress,
// when non-nil, is called after each episode.
func (p *Pipeline) RunBatch(ctx context.Context, start, end int, opts Options, progress func(Result)) (Summary, error) {
	if start <= 0 || end < start {
		return Summary{}, services.Wrap(services.ErrValidation, "batch", "validate range",
			fmt.Sprintf("invalid episode range %d-%d", start, end), nil)
	}

	logger := p.logger
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("start", start),
		logging.Int("end", end),
	)

	began := time.Now()
	var summary Summary
	for number := start; number <= end; number++ {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		result := p.ProcessEpisode(ctx, number, opts)
		summary.Results = append(summary.Results, result)
		if result.Succeeded() {
			summary.Successful = append(summary.Successful, number)
		} else {
			summary.Failed = append(summary.Failed, number)
		}
		if progress != nil {
			progress(result)
		}
	}

	logger.Info("batch complete",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("successful", len(summary.Successful)),
		logging.Int("failed", len(summary.Failed)),
		logging.Bool("interrupted", summary.Interrupted),
	)

	if p.notifier != nil {
		if err := p.notifier.NotifyBatchCompleted(context.WithoutCancel(ctx), notifications.BatchSummary{
			Start:       start,
			End:         end,
			Succeeded:   len(summary.Successful),
			Failed:      summary.Failed,
			Duration:    time.Since(began),
			Interrupted: summary.Interrupted,
		}); err != nil {
			logger.Warn("batch notification failed", logging.Error(err),
				logging.String(logging.FieldEventType, "notification_failed"))
		}
	}
	return summary, nil
}
