package auth

import (
	"context"
	"fmt"
)

// CodeDispatcher hands a plaintext one-time code to an out-of-band
// transport (email, SMS). The transport itself lives outside this module.
type CodeDispatcher interface {
	DispatchCode(ctx context.Context, destination, code string) error
}

// CodeDispatcherFunc adapts a function into a CodeDispatcher.
type CodeDispatcherFunc func(ctx context.Context, destination, code string) error

func (f CodeDispatcherFunc) DispatchCode(ctx context.Context, destination, code string) error {
	return f(ctx, destination, code)
}

// LogCodeDispatcher prints the code instead of sending it. Development
// fallback only.
type LogCodeDispatcher struct {
	Logger Logger
}

func (d LogCodeDispatcher) DispatchCode(_ context.Context, destination, code string) error {
	logger := d.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info(fmt.Sprintf("one-time code for %s: %s", destination, code))
	return nil
}
