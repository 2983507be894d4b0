package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avivsinai/thread-triage/internal/format"
)

type stubClassifier struct {
	calls map[string]int
	order []string
	fn    func(ctx context.Context, th format.Thread) (format.Classification, error)
}

func (s *stubClassifier) Classify(ctx context.Context, th format.Thread) (format.Classification, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[th.ThreadID]++
	s.order = append(s.order, th.ThreadID)
	return s.fn(ctx, th)
}

func TestRunnerOneCallPerThreadInOrder(t *testing.T) {
	stub := &stubClassifier{fn: func(_ context.Context, th format.Thread) (format.Classification, error) {
		if th.ThreadID == "B" {
			return format.Classification{}, &APIError{StatusCode: 500}
		}
		return format.Classification{Type: "Error", Severity: "Low", Error: "ignored"}, nil
	}}
	var seen []Result
	r := &Runner{Classifier: stub, OnResult: func(res Result) { seen = append(seen, res) }}

	threads := []format.Thread{testThread("A"), testThread("B"), testThread("C")}
	out, err := r.Run(context.Background(), threads)
	require.NoError(t, err)

	require.Equal(t, []string{"A", "B", "C"}, stub.order)
	require.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, stub.calls)
	require.Equal(t, []format.Classification{
		{ThreadID: "A", Type: "Error", Severity: "Low"},
		{ThreadID: "B", Error: "API request failed with status 500"},
		{ThreadID: "C", Type: "Error", Severity: "Low"},
	}, out)

	require.Len(t, seen, 3)
	require.NoError(t, seen[0].Err)
	require.Error(t, seen[1].Err)
	require.Equal(t, 1, seen[1].Index)
}

func TestRunnerPerCallTimeout(t *testing.T) {
	stub := &stubClassifier{fn: func(ctx context.Context, _ format.Thread) (format.Classification, error) {
		<-ctx.Done()
		return format.Classification{}, ctx.Err()
	}}
	r := &Runner{Classifier: stub, Timeout: 20 * time.Millisecond}
	out, err := r.Run(context.Background(), []format.Thread{testThread("slow")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "slow", out[0].ThreadID)
	require.Contains(t, out[0].Error, context.DeadlineExceeded.Error())
}

func TestRunnerCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubClassifier{fn: func(_ context.Context, th format.Thread) (format.Classification, error) {
		cancel()
		return format.Classification{}, errors.New("interrupted")
	}}
	r := &Runner{Classifier: stub}
	out, err := r.Run(ctx, []format.Thread{testThread("A"), testThread("B")})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, out)
	require.Equal(t, []string{"A"}, stub.order)
}

func TestRunnerPacing(t *testing.T) {
	var stamps []time.Time
	stub := &stubClassifier{fn: func(context.Context, format.Thread) (format.Classification, error) {
		stamps = append(stamps, time.Now())
		return format.Classification{Type: "Restart"}, nil
	}}
	interval := 50 * time.Millisecond
	r := &Runner{Classifier: stub, Limiter: NewLimiter(interval)}
	_, err := r.Run(context.Background(), []format.Thread{testThread("A"), testThread("B"), testThread("C")})
	require.NoError(t, err)
	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		// Allow a little slack for timer granularity.
		require.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), interval-10*time.Millisecond)
	}
}

func TestRunnerEmpty(t *testing.T) {
	r := &Runner{Classifier: &stubClassifier{}, Limiter: NewLimiter(0)}
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, out)
	require.NotNil(t, out)
}
