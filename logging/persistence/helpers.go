package persistence

import (
	"context"

	"emberhollow/server/logging"
)

const (
	// EventSaveFailed is emitted when writing the save blob fails.
	EventSaveFailed logging.EventType = "persistence.save_failed"
	// EventLoadFailed is emitted when the persisted blob cannot be parsed.
	EventLoadFailed logging.EventType = "persistence.load_failed"
	// EventSaveWritten is emitted after a successful save write.
	EventSaveWritten logging.EventType = "persistence.save_written"
	// EventEntryPruned is emitted when load drops state referencing removed content.
	EventEntryPruned logging.EventType = "persistence.entry_pruned"
)

var systemRef = logging.EntityRef{Kind: logging.EntityKindSystem}

// SaveFailed publishes a failed save write; the in-memory state stays authoritative.
func SaveFailed(ctx context.Context, pub logging.Publisher, tick uint64, err error) {
	if pub == nil || err == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveFailed,
		Tick:     tick,
		Actor:    systemRef,
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  map[string]any{"error": err.Error()},
	})
}

// LoadFailed publishes a parse failure that degraded the load to defaults.
func LoadFailed(ctx context.Context, pub logging.Publisher, err error) {
	if pub == nil || err == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoadFailed,
		Actor:    systemRef,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  map[string]any{"error": err.Error()},
	})
}

// SaveWritten publishes a successful save write.
func SaveWritten(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveWritten,
		Tick:     tick,
		Actor:    systemRef,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryPersistence,
	})
}

// EntryPruned publishes the removal of persisted state that no longer maps to content.
func EntryPruned(ctx context.Context, pub logging.Publisher, kind, id string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntryPruned,
		Actor:    systemRef,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  map[string]any{"kind": kind, "id": id},
	})
}
