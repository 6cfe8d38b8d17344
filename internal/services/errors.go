package services

import "errors"

var (
	// ErrUnserviceable signals that no zone resolves for an address:
	// zero geo matches and no override in force. Reported per
	// subscription; other subscriptions in the same batch continue.
	ErrUnserviceable = errors.New("address is unserviceable")

	// ErrConfiguration signals reference data the engine cannot
	// interpret (weekly plan with no weekdays, custom interval < 1).
	// The run aborts before any write.
	ErrConfiguration = errors.New("invalid scheduling configuration")
)
