package worker

import (
	"context"
	"errors"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

var ErrUnknownJobSource = errors.New("unknown job source")

// JobHandler executes one admitted job through its acquisition path and
// returns the final transcript. Handlers own the uploading -> processing
// transition; the scheduler owns admission and the terminal states.
type JobHandler interface {
	Handle(ctx context.Context, job *domain.Job, log *logger.Logger) (string, error)
}

type Dispatcher struct {
	handlers map[domain.JobSource]JobHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[domain.JobSource]JobHandler),
	}
}

func (d *Dispatcher) Register(source domain.JobSource, handler JobHandler) {
	d.handlers[source] = handler
}

func (d *Dispatcher) Dispatch(ctx context.Context, job *domain.Job, log *logger.Logger) (string, error) {
	handler, ok := d.handlers[job.Source]
	if !ok {
		return "", ErrUnknownJobSource
	}
	return handler.Handle(ctx, job, log)
}
