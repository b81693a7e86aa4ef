package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// QueueLister is the part of the engine the sweep reads.
type QueueLister interface {
	ListActiveLines(ctx context.Context, f service.QueueFilter) ([]service.QueueLine, error)
}

// OverdueSweepJob periodically scans the production queue and publishes one
// line.overdue event for each line the first time it is seen urgent.
type OverdueSweepJob struct {
	queue     QueueLister
	publisher service.Publisher
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	alerted map[uuid.UUID]struct{}
}

func NewOverdueSweepJob(queue QueueLister, publisher service.Publisher, schedule string, logger *slog.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{
		queue:     queue,
		publisher: publisher,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger.With("component", "overdue_sweep_job"),
		now:       time.Now,
		alerted:   make(map[uuid.UUID]struct{}),
	}
}

// Start registers the sweep on its schedule and starts the scheduler.
func (j *OverdueSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := j.Sweep(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule overdue sweep %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("Overdue sweep job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *OverdueSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Overdue sweep job stopped")
}

// Sweep publishes line.overdue for every newly urgent line and returns how
// many alerts were sent. Lines that left the queue are forgotten.
func (j *OverdueSweepJob) Sweep(ctx context.Context) (int, error) {
	lines, err := j.queue.ListActiveLines(ctx, service.QueueFilter{})
	if err != nil {
		return 0, fmt.Errorf("list active lines: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	active := make(map[uuid.UUID]struct{}, len(lines))
	sent := 0
	for _, l := range lines {
		active[l.LineID] = struct{}{}
		if !l.Urgent {
			continue
		}
		if _, done := j.alerted[l.LineID]; done {
			continue
		}

		ev := service.Event{
			Type:     enum.EventLineOverdue,
			RecordID: l.LineID,
			OrderID:  l.OrderID,
			TableID:  l.TableID,
			At:       j.now(),
		}
		if err := j.publisher.Publish(ctx, ev); err != nil {
			// retried on the next sweep
			j.logger.WarnContext(ctx, "Publish overdue alert failed", "line_id", l.LineID, "error", err)
			continue
		}
		j.alerted[l.LineID] = struct{}{}
		sent++
	}

	for id := range j.alerted {
		if _, ok := active[id]; !ok {
			delete(j.alerted, id)
		}
	}

	if sent > 0 {
		j.logger.InfoContext(ctx, "Overdue lines alerted", "count", sent)
	}
	return sent, nil
}
