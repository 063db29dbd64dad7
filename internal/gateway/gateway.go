package gateway

import "context"

// Messenger defines the interface for chat gateways that feed questions to
// an agent and deliver its answers.
type Messenger interface {
	// Start answers incoming messages until ctx is done.
	Start(ctx context.Context) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
