package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kisy/appmole/model"
	"github.com/kisy/appmole/pkg/store"
)

const DefaultName = ".netspeed_traffic.json"

// Store keeps the checkpoint in a single JSON document. Counts are written
// as strings so that no reader loses precision above 2^53.
type Store struct {
	path string
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, DefaultName)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (model.Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Checkpoint{TotalBytes: map[string]uint64{}}, nil
	}
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Checkpoint{}, fmt.Errorf("decode %s: %w", s.path, err)
	}

	cp := model.Checkpoint{TotalBytes: make(map[string]uint64)}

	if raw, ok := doc["totalBytes"].(map[string]any); ok {
		for name, v := range raw {
			n, err := store.ParseCount(v)
			if err != nil {
				// skip entries that do not decode
				continue
			}
			cp.TotalBytes[name] = n
		}
	}
	cp.TotalUpload, _ = store.ParseCount(doc["networkTotalUpload"])
	cp.TotalDownload, _ = store.ParseCount(doc["networkTotalDownload"])
	cp.LastUpdate = store.ParseTimestamp(doc["lastUpdate"])
	return cp, nil
}

func (s *Store) Save(ctx context.Context, cp model.Checkpoint) error {
	totals := make(map[string]string, len(cp.TotalBytes))
	for name, n := range cp.TotalBytes {
		totals[name] = strconv.FormatUint(n, 10)
	}

	doc := map[string]any{
		"totalBytes":           totals,
		"networkTotalUpload":   strconv.FormatUint(cp.TotalUpload, 10),
		"networkTotalDownload": strconv.FormatUint(cp.TotalDownload, 10),
		"lastUpdate":           store.FormatTimestamp(cp.LastUpdate),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
