package todo

import (
	"github.com/go-monolith/mono"

	"github.com/example/todo-app/events"
)

// EventPublisher announces confirmed mutations.
type EventPublisher interface {
	PublishCreated(event events.TodoCreatedEvent) error
	PublishUpdated(event events.TodoUpdatedEvent) error
	PublishDeleted(event events.TodoDeletedEvent) error
	PublishCleared(event events.CompletedTodosClearedEvent) error
}

// busPublisher publishes typed events on the mono event bus.
type busPublisher struct {
	bus mono.EventBus
}

func (p *busPublisher) PublishCreated(event events.TodoCreatedEvent) error {
	if p.bus == nil {
		return nil
	}
	return events.TodoCreatedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) PublishUpdated(event events.TodoUpdatedEvent) error {
	if p.bus == nil {
		return nil
	}
	return events.TodoUpdatedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) PublishDeleted(event events.TodoDeletedEvent) error {
	if p.bus == nil {
		return nil
	}
	return events.TodoDeletedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) PublishCleared(event events.CompletedTodosClearedEvent) error {
	if p.bus == nil {
		return nil
	}
	return events.CompletedTodosClearedV1.Publish(p.bus, event, nil)
}

type nopPublisher struct{}

func (nopPublisher) PublishCreated(events.TodoCreatedEvent) error           { return nil }
func (nopPublisher) PublishUpdated(events.TodoUpdatedEvent) error           { return nil }
func (nopPublisher) PublishDeleted(events.TodoDeletedEvent) error           { return nil }
func (nopPublisher) PublishCleared(events.CompletedTodosClearedEvent) error { return nil }
