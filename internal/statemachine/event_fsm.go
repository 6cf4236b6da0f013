package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/pauloheg33/SIEDE/internal/models"
)

// EventFSM wraps an event with its lifecycle state machine
// (PLANNED → HELD → ARCHIVED).
type EventFSM struct {
	event *models.Event
	fsm   *fsm.FSM
}

// NewEventFSM creates a new event lifecycle state machine
func NewEventFSM(event *models.Event) *EventFSM {
	e := &EventFSM{event: event}

	e.fsm = fsm.NewFSM(
		event.Status,
		fsm.Events{
			// planned → held
			{Name: "hold", Src: []string{models.EventStatusPlanned}, Dst: models.EventStatusHeld},

			// planned/held → archived
			{Name: "archive", Src: []string{models.EventStatusPlanned, models.EventStatusHeld}, Dst: models.EventStatusArchived},
		},
		fsm.Callbacks{},
	)

	return e
}

// Hold transitions the event to the held state
func (e *EventFSM) Hold(ctx context.Context) error {
	if err := e.fsm.Event(ctx, "hold"); err != nil {
		return fmt.Errorf("event cannot be marked held in current state %s: %w", e.event.Status, err)
	}
	e.event.Status = e.fsm.Current()
	return nil
}

// Archive transitions the event to the archived state
func (e *EventFSM) Archive(ctx context.Context) error {
	if err := e.fsm.Event(ctx, "archive"); err != nil {
		return fmt.Errorf("event cannot be archived in current state %s: %w", e.event.Status, err)
	}
	e.event.Status = e.fsm.Current()
	return nil
}

// Current returns the current state
func (e *EventFSM) Current() string {
	return e.fsm.Current()
}

// Can checks if a transition is possible
func (e *EventFSM) Can(event string) bool {
	return e.fsm.Can(event)
}
