// Package events handles event emission for record lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/kafka"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// Record types carried on emitted events
const (
	RecordTypeTask          = "task"
	RecordTypeContentItem   = "content_item"
	RecordTypeCalendarEvent = "calendar_event"
	RecordTypeMemory        = "memory"
	RecordTypeTeamMember    = "team_member"
)

// Emitter publishes record lifecycle events. A nil producer disables
// emission without branching at every call site, so the service runs the
// same with eventing off.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter. Pass a nil producer to disable
// emission.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) emit(ctx context.Context, eventType, recordType, recordID string, record any) {
	if e == nil || e.producer == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	var data json.RawMessage
	if record != nil {
		marshaled, err := json.Marshal(record)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal record for event")
			return
		}
		data = marshaled
	}

	event := &kafka.RecordEvent{
		EventType:  eventType,
		RecordID:   recordID,
		RecordType: recordType,
		Data:       data,
	}

	// Emission is best effort; a broker outage never fails the request.
	if err := e.producer.PublishRecordEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("event_type", eventType).Error("Failed to emit record event")
	}
}

// EmitCreated emits a record created event
func (e *Emitter) EmitCreated(ctx context.Context, recordType, recordID string, record any) {
	e.emit(ctx, "record.created", recordType, recordID, record)
}

// EmitUpdated emits a record updated event
func (e *Emitter) EmitUpdated(ctx context.Context, recordType, recordID string, record any) {
	e.emit(ctx, "record.updated", recordType, recordID, record)
}

// EmitDeleted emits a record deleted event
func (e *Emitter) EmitDeleted(ctx context.Context, recordType, recordID string) {
	e.emit(ctx, "record.deleted", recordType, recordID, nil)
}

// EmitSyncCompleted emits a synchronizer completion event
func (e *Emitter) EmitSyncCompleted(ctx context.Context, job string, synced int) {
	e.emit(ctx, "sync.completed", job, job, map[string]any{"synced": synced})
}
