package contract

import "context"

// Completer is the language-model boundary. It returns either free text or exactly
// one proposed call.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Proposal, error)
}

// Notifier receives reservation lifecycle events after they are persisted.
type Notifier interface {
	Notify(ctx context.Context, ev ReservationEvent) error
}
