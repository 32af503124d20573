package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/source"
)

// DefaultTimeout is the gather budget when the request does not set one.
const DefaultTimeout = 30 * time.Second

// Coordinator fans a request out to the enabled source adapters under
// one shared deadline and collects a frozen outcome set. A slow or
// failing source degrades its own outcome; it never blocks or aborts
// the others.
type Coordinator struct {
	adapters map[source.Kind]source.Adapter
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator over the given adapters.
func NewCoordinator(adapters []source.Adapter, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	byKind := make(map[source.Kind]source.Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &Coordinator{adapters: byKind, logger: logger}
}

// Gather runs every enabled source concurrently and returns one outcome
// per source kind, in stable kind order. The result set is frozen when
// the shared deadline fires: a source that has not answered by then is
// marked timeout and its late answer is discarded.
func (c *Coordinator) Gather(ctx context.Context, req *Request) []RetrievalOutcome {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	kinds := source.Kinds()
	channels := make(map[source.Kind]chan RetrievalOutcome, len(kinds))

	for _, kind := range kinds {
		settings, ok := req.Sources[kind]
		if !ok || !settings.Enabled {
			continue
		}

		// Buffered so a late source can finish and exit after the
		// outcome set is frozen.
		ch := make(chan RetrievalOutcome, 1)
		channels[kind] = ch

		go c.retrieveOne(ctx, kind, settings, req.SourceQuery(), ch)
	}

	outcomes := make([]RetrievalOutcome, 0, len(kinds))
	for _, kind := range kinds {
		ch, enabled := channels[kind]
		if !enabled {
			outcomes = append(outcomes, RetrievalOutcome{Kind: kind, Status: StatusDisabled})
			continue
		}

		select {
		case outcome := <-ch:
			outcomes = append(outcomes, outcome)
		case <-ctx.Done():
			// Deadline fired before this source answered. Drain without
			// blocking in case it finished in the same instant.
			select {
			case outcome := <-ch:
				outcomes = append(outcomes, outcome)
			default:
				c.logger.Warn("source missed deadline", "source", kind, "timeout", timeout)
				outcomes = append(outcomes, RetrievalOutcome{
					Kind:    kind,
					Status:  StatusTimeout,
					Err:     qerrors.SourceTimeout(string(kind)),
					Elapsed: timeout,
				})
			}
		}
	}

	return outcomes
}

func (c *Coordinator) retrieveOne(ctx context.Context, kind source.Kind, settings SourceSettings, q *source.Query, ch chan<- RetrievalOutcome) {
	start := time.Now()

	adapter, ok := c.adapters[kind]
	if !ok {
		ch <- RetrievalOutcome{
			Kind:   kind,
			Status: StatusError,
			Err:    qerrors.New(qerrors.ErrCodeSourceUnavailable, "no adapter registered for source "+string(kind), nil),
		}
		return
	}

	candidates, err := adapter.Retrieve(ctx, q, settings.TopK)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		c.logger.Debug("source retrieval ok", "source", kind, "hits", len(candidates), "elapsed", elapsed)
		ch <- RetrievalOutcome{Kind: kind, Status: StatusOK, Candidates: candidates, Elapsed: elapsed}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		ch <- RetrievalOutcome{
			Kind:    kind,
			Status:  StatusTimeout,
			Err:     qerrors.SourceTimeout(string(kind)),
			Elapsed: elapsed,
		}
	default:
		c.logger.Warn("source retrieval failed", "source", kind, "error", err, "elapsed", elapsed)
		ch <- RetrievalOutcome{Kind: kind, Status: StatusError, Err: err, Elapsed: elapsed}
	}
}
