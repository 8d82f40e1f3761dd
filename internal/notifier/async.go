package notifier

import (
	"context"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/worker"
)

// AsyncNotifier hands instant alerts to a bounded worker pool and reports
// them as queued. Digests are always sent inline.
type AsyncNotifier struct {
	*Notifier
	workers *worker.WorkerManager
}

func NewAsync(n *Notifier, buffer, workers int) *AsyncNotifier {
	a := &AsyncNotifier{
		Notifier: n,
		workers:  worker.NewWorkerManager(buffer, workers),
	}
	a.workers.SetWorker(a.handle)
	return a
}

// Start runs the pool until ctx is canceled. Jobs already queued are sent
// before the pool stops.
func (a *AsyncNotifier) Start(ctx context.Context) {
	a.workers.Start(context.WithoutCancel(ctx))
	go func() {
		<-ctx.Done()
		a.workers.Stop()
	}()
}

// Stop drains the queue and waits for the workers.
func (a *AsyncNotifier) Stop() {
	a.workers.Stop()
}

func (a *AsyncNotifier) NotifyInquiry(_ context.Context, inq *model.Inquiry) model.NotificationResult {
	job := *inq
	if err := a.workers.Enqueue(&job); err != nil {
		logger.Error("could not queue inquiry notification", "inquiry_id", inq.ID, "error", err)
		return model.NotificationResult{
			Status:   model.NotificationFailed,
			Provider: a.mailer.Name(),
			Error:    err.Error(),
		}
	}
	return model.NotificationResult{
		Status:   model.NotificationQueued,
		Provider: a.mailer.Name(),
	}
}

func (a *AsyncNotifier) handle(ctx context.Context, workerIndex int, job interface{}) {
	inq, ok := job.(*model.Inquiry)
	if !ok {
		logger.Warn("unexpected notifier job", "worker", workerIndex)
		return
	}
	a.Notifier.NotifyInquiry(ctx, inq)
}
