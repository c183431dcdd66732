package storage

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// ExportSpikesCSV reads every archived spike message from the SQLite
// database at dbPath and writes it as CSV to outputPath (or stdout, if
// outputPath is empty): one row per spiked neuron index, following the
// teacher's ExportLogData convention of a read-only connection and a
// streamed csv.Writer.
func ExportSpikesCSV(dbPath, outputPath string) error {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("storage: opening archive %q for export: %w", dbPath, err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("storage: pinging archive %q for export: %w", dbPath, err)
	}

	out, closeOut, err := exportDestination(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write([]string{"step", "sender_uid", "neuron_index"}); err != nil {
		return fmt.Errorf("storage: writing CSV header: %w", err)
	}

	rows, err := db.Query(`SELECT step, payload FROM spike_messages ORDER BY id`)
	if err != nil {
		return fmt.Errorf("storage: querying spike_messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step uint64
		var payload []byte
		if err := rows.Scan(&step, &payload); err != nil {
			return fmt.Errorf("storage: scanning spike_messages row: %w", err)
		}
		msg, err := DecodeSpikeMessage(payload)
		if err != nil {
			return fmt.Errorf("storage: decoding spike message during export: %w", err)
		}
		senderUID := msg.Header.SenderUID.String()
		for _, idx := range msg.Indices {
			record := []string{strconv.FormatUint(step, 10), senderUID, strconv.FormatUint(uint64(idx), 10)}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("storage: writing CSV record: %w", err)
			}
		}
	}
	return rows.Err()
}

// ExportImpactsCSV is ExportSpikesCSV for archived synaptic impact messages,
// one row per impact.
func ExportImpactsCSV(dbPath, outputPath string) error {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("storage: opening archive %q for export: %w", dbPath, err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("storage: pinging archive %q for export: %w", dbPath, err)
	}

	out, closeOut, err := exportDestination(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	headers := []string{"step", "presynaptic_uid", "postsynaptic_uid", "synapse_index", "kind", "value", "pre_idx", "post_idx"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("storage: writing CSV header: %w", err)
	}

	rows, err := db.Query(`SELECT step, payload FROM impact_messages ORDER BY id`)
	if err != nil {
		return fmt.Errorf("storage: querying impact_messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step uint64
		var payload []byte
		if err := rows.Scan(&step, &payload); err != nil {
			return fmt.Errorf("storage: scanning impact_messages row: %w", err)
		}
		msg, err := DecodeImpactMessage(payload)
		if err != nil {
			return fmt.Errorf("storage: decoding impact message during export: %w", err)
		}
		pre := msg.PresynapticPopulation.String()
		post := msg.PostsynapticPopulation.String()
		for _, impact := range msg.Impacts {
			record := []string{
				strconv.FormatUint(step, 10), pre, post,
				strconv.FormatUint(impact.SynapseIndex, 10),
				strconv.Itoa(int(impact.Kind)),
				strconv.FormatFloat(impact.Value, 'f', -1, 64),
				strconv.FormatUint(uint64(impact.PresynapticNeuronIdx), 10),
				strconv.FormatUint(uint64(impact.PostsynapticNeuronIdx), 10),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("storage: writing CSV record: %w", err)
			}
		}
	}
	return rows.Err()
}

func exportDestination(outputPath string) (io.Writer, func(), error) {
	if outputPath == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: creating export file %q: %w", outputPath, err)
	}
	return file, func() { file.Close() }, nil
}
