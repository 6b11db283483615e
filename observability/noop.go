package observability

import "context"

// NoOpObserver discards all events. Used wherever an observer is optional.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
