package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"msgworker/internal/events"
	"msgworker/internal/infra/sqlite3"
	"msgworker/internal/storage"
	"msgworker/internal/transport"
)

type row struct {
	line    int
	msgType string
	body    string
	delayMs string
}

func main() {
	dbPath := flag.String("db", "./data/msgworker.db", "path to SQLite database")
	csvPath := flag.String("csv", "", "CSV file with rows: type,body[,delay_ms]")
	queue := flag.String("queue", "default", "queue to send the messages to")
	dryRun := flag.Bool("dry-run", false, "show what would be enqueued without writing to DB")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("CSV file is required: -csv <path>")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("failed to open csv: %v", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		log.Fatalf("failed to read csv: %v", err)
	}
	fmt.Printf("Read %d messages from %s\n", len(rows), *csvPath)

	if *dryRun {
		for _, r := range rows {
			fmt.Printf("  [DRY] line %d: type=%s body=%q delay_ms=%s\n", r.line, r.msgType, r.body, r.delayMs)
		}
		return
	}

	ctx := context.Background()

	db, err := sqlite3.New(ctx, sqlite3.WithDSN(*dbPath))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	st := storage.New(db.DB)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}

	sender := transport.NewSQLite(st, *queue)

	var sent, failed int
	for _, r := range rows {
		env := &events.Envelope{Type: r.msgType, Body: []byte(r.body)}
		if r.delayMs != "" {
			env.Headers = map[string]string{transport.DelayHeader: r.delayMs}
		}

		stored, err := sender.Send(ctx, env)
		if err != nil {
			fmt.Printf("ERROR line %d: %v\n", r.line, err)
			failed++
			continue
		}
		fmt.Printf("  sent %s (type=%s)\n", stored.ID, stored.Type)
		sent++
	}

	fmt.Printf("\n=== SUMMARY ===\nQueue: %s\nSent: %d\nFailed: %d\n", *queue, sent, failed)
}

// readRows parses type,body[,delay_ms] records. Blank lines and lines
// starting with # are skipped.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 fields, got %d", line, len(record))
		}

		parsed := row{
			line:    line,
			msgType: strings.TrimSpace(record[0]),
			body:    record[1],
		}
		if len(record) > 2 {
			parsed.delayMs = strings.TrimSpace(record[2])
		}
		if parsed.msgType == "" {
			return nil, fmt.Errorf("line %d: empty message type", line)
		}
		rows = append(rows, parsed)
	}

	return rows, nil
}
