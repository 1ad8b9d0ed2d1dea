package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"khata/internal/classify"
	"khata/internal/config"
	"khata/internal/database"
	"khata/internal/logger"
	"khata/internal/merchant"
	"khata/internal/services"
	"khata/internal/trace"
)

// inboxLine is one exported notification in the scan input file.
type inboxLine struct {
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Scan error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	input := flag.String("input", "", "path to a JSONL inbox export")
	traceDir := flag.String("trace-dir", "", "trace output directory (default from config)")
	debug := flag.Bool("debug", false, "persist decision traces")
	flag.Parse()

	if *input == "" {
		return fmt.Errorf("usage: scan -input <file.jsonl> [-trace-dir dir] [-debug]")
	}

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *traceDir == "" {
		*traceDir = appConfig.TraceDir
	}

	msgs, skipped, err := readInbox(*input)
	if err != nil {
		return err
	}
	log.Infof("Read %d messages from %s (%d malformed lines skipped)", len(msgs), *input, skipped)

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	dict, err := merchant.LoadDictionary(appConfig.MerchantDictPath)
	if err != nil {
		log.Warnf("merchant dictionary unavailable (%v), using empty dictionary", err)
		dict = merchant.NewDictionary(nil)
	}
	handles, err := merchant.LoadHandles(appConfig.UPIHandlesPath)
	if err != nil {
		log.Warnf("UPI handle list unavailable (%v), using empty set", err)
		handles = merchant.NewHandleSet(nil)
	}

	ingestionService := services.NewIngestionService(db, classify.New(handles), merchant.NewNormalizer(dict))
	dedupService := services.NewDedupService(db)

	session := trace.NewSession(*traceDir, trace.ModeBatch, *debug)
	summary, err := ingestionService.ScanMessages(msgs, session)
	if err != nil {
		session.Clear()
		return fmt.Errorf("scan failed: %w", err)
	}
	traceFile := session.Flush()

	repair, err := dedupService.Repair()
	if err != nil {
		return fmt.Errorf("dedup repair failed: %w", err)
	}

	log.Infof("Scan complete: processed=%d inserted=%d dropped=%d duplicates=%d",
		summary.Processed, summary.Inserted, summary.Dropped, summary.Duplicates)
	log.Infof("Repair: scanned=%d hashed=%d duplicates_removed=%d",
		repair.Scanned, repair.Hashed, repair.DuplicatesRemoved)
	if traceFile != "" {
		log.Infof("Trace written to %s", traceFile)
	}
	return nil
}

// readInbox parses a JSONL export into raw messages, skipping malformed lines.
func readInbox(path string) ([]classify.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	var msgs []classify.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var in inboxLine
		if err := json.Unmarshal(line, &in); err != nil || in.Body == "" {
			skipped++
			continue
		}
		msgs = append(msgs, classify.RawMessage{
			Sender:     in.Sender,
			Body:       in.Body,
			ReceivedAt: time.UnixMilli(in.Timestamp),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read input: %w", err)
	}
	return msgs, skipped, nil
}
