package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// JsonlStorage writes decoded events to a JSONL file. The file is truncated on open.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
	open bool
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutEvents appends a batch of events as JSON lines.
func (s *JsonlStorage) PutEvents(events []model.TypedEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !s.open {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()
	s.open = true

	writer := bufio.NewWriter(file)
	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
