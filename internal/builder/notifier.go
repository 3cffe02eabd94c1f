package builder

import (
	"context"

	"go-guildbuilder/internal/logging"
)

// Notifier receives human-readable progress lines during a build.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, text string) error

func (f NotifierFunc) Notify(ctx context.Context, text string) error { return f(ctx, text) }

// Recorder keeps every progress line, for tests and the CLI.
type Recorder struct {
	Lines []string
}

func (r *Recorder) Notify(ctx context.Context, text string) error {
	r.Lines = append(r.Lines, text)
	return nil
}

func notify(ctx context.Context, n Notifier, text string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, text); err != nil {
		logging.Debug("[BUILDER] progress note dropped: %v", err)
	}
}
