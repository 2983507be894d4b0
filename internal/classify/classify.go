package classify

import (
	"context"
	"fmt"

	"github.com/avivsinai/thread-triage/internal/format"
)

// DefaultSystemPrompt asks for the four classification fields as JSON.
const DefaultSystemPrompt = "You are a classifier. Return ONLY JSON. " +
	"Extract these fields from the thread messages: " +
	"Incident Number (e.g., INC123456 or empty string if unknown), " +
	"Root Cause (short phrase), Type (Restart or Error), " +
	"Severity (High, Med, Low)."

// Completer sends one system+user prompt pair to a model and returns the
// raw completion text.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier classifies one thread.
type Classifier interface {
	Classify(ctx context.Context, thread format.Thread) (format.Classification, error)
}

// ModelClassifier classifies threads with a Completer.
type ModelClassifier struct {
	Completer    Completer
	SystemPrompt string // DefaultSystemPrompt when empty
}

func (c *ModelClassifier) Classify(ctx context.Context, thread format.Thread) (format.Classification, error) {
	user, err := UserPrompt(thread)
	if err != nil {
		return format.Classification{}, err
	}
	system := c.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	content, err := c.Completer.CompleteWithSystem(ctx, system, user)
	if err != nil {
		return format.Classification{}, err
	}
	out, err := ParseResponse(content)
	if err != nil {
		return format.Classification{}, err
	}
	out.ThreadID = thread.ThreadID
	return out, nil
}

// UserPrompt renders the thread as the user message.
func UserPrompt(thread format.Thread) (string, error) {
	messages := thread.Messages
	if messages == nil {
		messages = []format.Record{}
	}
	payload, err := format.MarshalCompact(format.Thread{ThreadID: thread.ThreadID, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode thread %s: %w", thread.ThreadID, err)
	}
	return "JSON input:\n" + string(payload), nil
}

// Fallback is the classification recorded when classifying a thread failed.
func Fallback(threadID string, err error) format.Classification {
	msg := "classification failed"
	if err != nil {
		msg = err.Error()
	}
	return format.Classification{ThreadID: threadID, Error: msg}
}
