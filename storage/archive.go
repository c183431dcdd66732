// Package storage archives per-step message traffic to SQLite, exports it to
// CSV, and snapshots/restores projection weights as JSON, following the
// teacher's SQLite-logging and JSON-persistence conventions.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// Archive is a SQLite-backed log of every spike and synaptic impact message
// observed on the bus, keyed by step. It is written to from an endpoint
// subscribed to the entities of interest; it does not subscribe itself.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if necessary) a SQLite database at
// dataSourceName and ensures its tables exist.
func OpenArchive(dataSourceName string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("storage: opening archive %q: %w", dataSourceName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: pinging archive %q: %w", dataSourceName, err)
	}
	a := &Archive{db: db}
	if err := a.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS spike_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		step INTEGER NOT NULL,
		sender_uid BLOB NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE TABLE IF NOT EXISTS impact_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		step INTEGER NOT NULL,
		presynaptic_uid BLOB NOT NULL,
		postsynaptic_uid BLOB NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_spike_messages_step ON spike_messages (step);
	CREATE INDEX IF NOT EXISTS idx_impact_messages_step ON impact_messages (step);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("storage: creating archive tables: %w", err)
	}
	return nil
}

// LogSpikeMessage appends msg to the archive.
func (a *Archive) LogSpikeMessage(msg messaging.SpikeMessage) error {
	payload, err := EncodeSpikeMessage(msg)
	if err != nil {
		return fmt.Errorf("storage: encoding spike message: %w", err)
	}
	senderBytes, _ := msg.Header.SenderUID.MarshalBinary()
	_, err = a.db.Exec(`INSERT INTO spike_messages (step, sender_uid, payload) VALUES (?, ?, ?)`,
		msg.Header.Step, senderBytes, payload)
	if err != nil {
		return fmt.Errorf("storage: inserting spike message: %w", err)
	}
	return nil
}

// LogImpactMessage appends msg to the archive.
func (a *Archive) LogImpactMessage(msg messaging.SynapticImpactMessage) error {
	payload, err := EncodeImpactMessage(msg)
	if err != nil {
		return fmt.Errorf("storage: encoding impact message: %w", err)
	}
	preBytes, _ := msg.PresynapticPopulation.MarshalBinary()
	postBytes, _ := msg.PostsynapticPopulation.MarshalBinary()
	_, err = a.db.Exec(`INSERT INTO impact_messages (step, presynaptic_uid, postsynaptic_uid, payload) VALUES (?, ?, ?, ?)`,
		msg.Header.Step, preBytes, postBytes, payload)
	if err != nil {
		return fmt.Errorf("storage: inserting impact message: %w", err)
	}
	return nil
}

// SpikesAtStep returns every spike message archived for the given step, in
// insertion order.
func (a *Archive) SpikesAtStep(step uint64) ([]messaging.SpikeMessage, error) {
	rows, err := a.db.Query(`SELECT payload FROM spike_messages WHERE step = ? ORDER BY id`, step)
	if err != nil {
		return nil, fmt.Errorf("storage: querying spike messages at step %d: %w", step, err)
	}
	defer rows.Close()

	var out []messaging.SpikeMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage: scanning spike message row: %w", err)
		}
		msg, err := DecodeSpikeMessage(payload)
		if err != nil {
			return nil, fmt.Errorf("storage: decoding spike message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// ImpactsAtStep returns every synaptic impact message archived for the
// given step, in insertion order.
func (a *Archive) ImpactsAtStep(step uint64) ([]messaging.SynapticImpactMessage, error) {
	rows, err := a.db.Query(`SELECT payload FROM impact_messages WHERE step = ? ORDER BY id`, step)
	if err != nil {
		return nil, fmt.Errorf("storage: querying impact messages at step %d: %w", step, err)
	}
	defer rows.Close()

	var out []messaging.SynapticImpactMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage: scanning impact message row: %w", err)
		}
		msg, err := DecodeImpactMessage(payload)
		if err != nil {
			return nil, fmt.Errorf("storage: decoding impact message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// SendersAtStep returns the set of sender UIDs (from sent spike messages)
// archived at step, decoded straight from the stored BLOB without touching
// the msgpack payload.
func (a *Archive) SendersAtStep(step uint64) ([]uid.UID, error) {
	rows, err := a.db.Query(`SELECT sender_uid FROM spike_messages WHERE step = ? ORDER BY id`, step)
	if err != nil {
		return nil, fmt.Errorf("storage: querying senders at step %d: %w", step, err)
	}
	defer rows.Close()

	var out []uid.UID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("storage: scanning sender row: %w", err)
		}
		var id uid.UID
		if err := id.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("storage: decoding sender uid: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
