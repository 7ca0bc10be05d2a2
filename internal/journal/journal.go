// internal/journal/journal.go
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"iot-hub/internal/events"
	"iot-hub/internal/model"
)

// Entry is one persisted discovery event
type Entry struct {
	ID             string    `json:"id"`
	EventType      string    `json:"event_type"`
	DeviceID       string    `json:"device_id"`
	Address        string    `json:"address"`
	Classification string    `json:"classification"`
	Device         string    `json:"device,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Journal persists discovery events to an embedded sqlite database so the
// event history survives service restarts
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
	sub    *events.Subscription
}

const schema = `
CREATE TABLE IF NOT EXISTS discovery_events (
	id              TEXT PRIMARY KEY,
	event_type      TEXT NOT NULL,
	device_id       TEXT NOT NULL,
	address         TEXT NOT NULL,
	classification  TEXT NOT NULL,
	device_json     TEXT,
	recorded_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_discovery_events_device ON discovery_events(device_id);
CREATE INDEX IF NOT EXISTS idx_discovery_events_recorded ON discovery_events(recorded_at);
`

// Open creates or opens the journal database at the given path. Use
// ":memory:" for an ephemeral journal.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent event bursts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	logger.Info("Event journal opened", zap.String("path", path))

	return &Journal{
		db:     db,
		logger: logger,
	}, nil
}

// Attach subscribes the journal to the event bus. Events are recorded
// synchronously in delivery order.
func (j *Journal) Attach(bus *events.Bus) {
	j.sub = bus.Subscribe(func(event model.Event) {
		if err := j.Record(context.Background(), event); err != nil {
			j.logger.Error("Failed to record event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
			)
		}
	})
}

// Record persists a single event
func (j *Journal) Record(ctx context.Context, event model.Event) error {
	if event.Device == nil {
		return fmt.Errorf("event has no device snapshot")
	}

	deviceJSON, err := json.Marshal(event.Device)
	if err != nil {
		return fmt.Errorf("failed to encode device snapshot: %w", err)
	}

	query := `
		INSERT INTO discovery_events (
			id, event_type, device_id, address, classification, device_json, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = j.db.ExecContext(ctx, query,
		uuid.New().String(),
		string(event.Type),
		event.Device.ID,
		event.Device.Address,
		string(event.Device.Classification),
		string(deviceJSON),
		event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, event_type, device_id, address, classification, device_json, recorded_at
		FROM discovery_events
		ORDER BY recorded_at DESC, id
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ForDevice returns the newest entries for one device, most recent first
func (j *Journal) ForDevice(ctx context.Context, deviceID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, event_type, device_id, address, classification, device_json, recorded_at
		FROM discovery_events
		WHERE device_id = ?
		ORDER BY recorded_at DESC, id
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for device: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var deviceJSON sql.NullString
		if err := rows.Scan(
			&entry.ID, &entry.EventType, &entry.DeviceID,
			&entry.Address, &entry.Classification, &deviceJSON, &entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		entry.Device = deviceJSON.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close detaches from the bus and closes the database
func (j *Journal) Close() error {
	if j.sub != nil {
		j.sub.Unsubscribe()
	}
	return j.db.Close()
}
