package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrRedispatchPendingCommandIsNotConstructed = errors.New(
	"RedispatchPendingCommand must be created via NewRedispatchPendingCommand constructor",
)

// RedispatchPendingCommand triggers a matching retry for every delivery still
// in pending status. Deliveries end up pending when no driver was available
// at dispatch time or when every claim was lost to concurrent dispatches.
//
// Example:
//
//	cmd := NewRedispatchPendingCommand()
//	handler := NewRedispatchPendingCommandHandler(uowFactory, matcher, publisher, broadcaster, logger)
//	err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    log.Printf("Redispatch sweep failed: %v", err)
//	}
type RedispatchPendingCommand struct {
	guard guard.ConstructorGuard
}

// NewRedispatchPendingCommand creates a new command to trigger a redispatch sweep.
// This is a parameterless command that retries matching for all pending deliveries.
func NewRedispatchPendingCommand() RedispatchPendingCommand {
	return RedispatchPendingCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrRedispatchPendingCommandIsNotConstructed if validation fails.
func (c *RedispatchPendingCommand) Validate() error {
	return c.guard.Validate(
		ErrRedispatchPendingCommandIsNotConstructed,
	)
}
