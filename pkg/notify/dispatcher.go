package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/pkg/jobs"
)

const jobType = "notification"

// Outcome labels reported to DispatcherConfig.OnResult.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// DispatcherConfig tunes the background delivery pool.
type DispatcherConfig struct {
	Workers     int
	BufferSize  int
	Retries     int
	RetryDelay  time.Duration
	SendTimeout time.Duration
	Logger      *zap.Logger
	OnResult    func(outcome string)
}

// Dispatcher delivers messages in the background. Callers never wait on
// the transport and never see its errors.
type Dispatcher struct {
	queue    *jobs.Queue
	logger   *zap.Logger
	onResult func(string)
}

// NewDispatcher builds a dispatcher in front of sender. Call Start before use.
func NewDispatcher(sender Sender, cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	d := &Dispatcher{logger: cfg.Logger, onResult: cfg.OnResult}
	d.queue = jobs.NewQueue(jobType, func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return nil
		}
		return sender.Send(ctx, msg)
	}, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: cfg.SendTimeout,
		Logger:     cfg.Logger,
		OnDone: func(job jobs.Job, err error) {
			if err != nil {
				d.report(OutcomeFailed)
				return
			}
			d.report(OutcomeSent)
		},
	})
	return d
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for in-flight deliveries to end.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch queues msg for delivery. A full or stopped queue drops it.
func (d *Dispatcher) Dispatch(msg Message) {
	job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: msg}
	if err := d.queue.TryEnqueue(job); err != nil {
		d.logger.Warn("notification dropped", zap.String("subject", msg.Subject), zap.Error(err))
		d.report(OutcomeDropped)
	}
}

func (d *Dispatcher) report(outcome string) {
	if d.onResult != nil {
		d.onResult(outcome)
	}
}
