package notifications

import (
	"context"
	"errors"
)

// CapacityReleaseHandler reacts to freed capacity in a schedule.
type CapacityReleaseHandler interface {
	HandleCapacityReleased(ctx context.Context, event *CapacityReleasedEvent) error
}

// DirectCapacityPublisher delivers capacity events in-process. It stands in
// for Kafka when no broker is configured.
type DirectCapacityPublisher struct {
	handler CapacityReleaseHandler
}

func NewDirectCapacityPublisher(handler CapacityReleaseHandler) *DirectCapacityPublisher {
	return &DirectCapacityPublisher{handler: handler}
}

// SetHandler binds the handler after construction.
func (p *DirectCapacityPublisher) SetHandler(handler CapacityReleaseHandler) {
	p.handler = handler
}

func (p *DirectCapacityPublisher) PublishCapacityReleased(ctx context.Context, event *CapacityReleasedEvent) error {
	if p.handler == nil {
		return errors.New("no capacity release handler bound")
	}
	return p.handler.HandleCapacityReleased(ctx, event)
}
