package classify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/avivsinai/thread-triage/internal/logx"
)

// DefaultCallTimeout bounds a single Classify call.
const DefaultCallTimeout = 60 * time.Second

// NewLimiter spaces calls at least interval apart. The first call is not
// delayed. interval <= 0 disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Result describes one finished thread.
type Result struct {
	Index          int
	Classification format.Classification
	Err            error // nil unless the fallback was used
	Elapsed        time.Duration
}

// Runner classifies threads sequentially, in order, once each.
type Runner struct {
	Classifier Classifier
	Limiter    *rate.Limiter // nil means no pacing
	Timeout    time.Duration // per call; DefaultCallTimeout when zero
	Logger     *zap.Logger
	OnResult   func(Result)
}

// Run returns one classification per thread, in input order. It fails only
// when ctx is cancelled; per-thread failures become fallback records.
func (r *Runner) Run(ctx context.Context, threads []format.Thread) ([]format.Classification, error) {
	logger := logx.OrNop(r.Logger)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	results := make([]format.Classification, 0, len(threads))
	for i, thread := range threads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, err
			}
		}

		start := time.Now()
		out, err := r.classifyOne(ctx, thread, timeout)
		elapsed := time.Since(start)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("classification failed; using fallback",
				zap.Int("index", i+1),
				zap.Int("total", len(threads)),
				zap.String("thread_id", thread.ThreadID),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			out = Fallback(thread.ThreadID, err)
		} else {
			logger.Info("classified thread",
				zap.Int("index", i+1),
				zap.Int("total", len(threads)),
				zap.String("thread_id", thread.ThreadID),
				zap.String("type", out.Type),
				zap.String("severity", out.Severity),
				zap.Duration("elapsed", elapsed))
		}
		results = append(results, out)
		if r.OnResult != nil {
			r.OnResult(Result{Index: i, Classification: out, Err: err, Elapsed: elapsed})
		}
	}
	return results, nil
}

func (r *Runner) classifyOne(ctx context.Context, thread format.Thread, timeout time.Duration) (format.Classification, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := r.Classifier.Classify(callCtx, thread)
	if err != nil {
		return format.Classification{}, err
	}
	out.ThreadID = thread.ThreadID
	out.Error = ""
	return out, nil
}
