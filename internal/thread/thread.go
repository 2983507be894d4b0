package thread

import (
	"errors"
	"fmt"

	"github.com/avivsinai/thread-triage/internal/format"
)

// DefaultSentinel replaces every display name.
const DefaultSentinel = "XXXX"

// ErrMissingKey is returned in strict mode for a record without a
// conversation id.
var ErrMissingKey = errors.New("record has no conversation id")

// Options controls Group.
type Options struct {
	// KeepHTML leaves body.content untouched instead of reducing it to text.
	KeepHTML bool
	// SortByTime orders records by createdDateTime within each thread, and
	// threads by their first record.
	SortByTime bool
	// Strict aborts on the first record without a conversation id instead
	// of skipping it.
	Strict bool
	// Sentinel replaces display names; DefaultSentinel when empty.
	Sentinel string
	// MaskPaths lists additional gjson paths forced to the sentinel when
	// present, e.g. "from.user.id".
	MaskPaths []string
	// OnSkip is called for each record skipped for lacking a conversation id.
	OnSkip func(index int, rec format.Record)
}

func (o Options) sentinel() string {
	if o.Sentinel == "" {
		return DefaultSentinel
	}
	return o.Sentinel
}

// Group partitions records by conversation id and anonymizes each record.
func Group(records []format.Record, opts Options) ([]format.Thread, error) {
	var order []string
	groups := make(map[string][]format.Record)
	for i, rec := range records {
		key, ok := rec.ConversationID()
		if !ok {
			if opts.Strict {
				return nil, fmt.Errorf("%w: record %d (id %q)", ErrMissingKey, i, rec.ID())
			}
			if opts.OnSkip != nil {
				opts.OnSkip(i, rec)
			}
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	threads := make([]format.Thread, 0, len(order))
	for _, key := range order {
		members := groups[key]
		if opts.SortByTime {
			SortByCreated(members)
		}
		messages := make([]format.Record, 0, len(members))
		for _, rec := range members {
			anon, err := Anonymize(rec, opts)
			if err != nil {
				return nil, fmt.Errorf("anonymize record %q in thread %s: %w", rec.ID(), key, err)
			}
			messages = append(messages, anon)
		}
		threads = append(threads, format.Thread{ThreadID: key, Messages: messages})
	}
	if opts.SortByTime {
		sortThreads(threads)
	}
	return threads, nil
}

// Flatten turns threads back into records, restoring the conversation id
// from the thread id, so that grouping the result yields the same threads.
func Flatten(threads []format.Thread) ([]format.Record, error) {
	var records []format.Record
	for _, t := range threads {
		for _, msg := range t.Messages {
			rec, err := msg.With(format.PathConversationID, t.ThreadID)
			if err != nil {
				return nil, fmt.Errorf("flatten thread %s: %w", t.ThreadID, err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}
