package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// Document is the on-disk layout of a file journal.
type Document struct {
	Trades     []models.RawTrade        `json:"trades" yaml:"trades"`
	Challenges []models.ChallengeRecord `json:"challenges" yaml:"challenges"`
}

// FileStore keeps the whole journal in one JSON or YAML document and
// rewrites it atomically on every change.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore returns a store backed by path. The format follows the
// extension: .yaml/.yml for YAML, anything else for JSON. The file is
// created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, apperrors.NewStoreError("file", "open", fmt.Errorf("%w: empty path", apperrors.ErrConfigInvalid))
	}
	return &FileStore{path: path}, nil
}

// Name returns the backend name.
func (s *FileStore) Name() string { return "file" }

// Close is a no-op; every write is flushed immediately.
func (s *FileStore) Close() error { return nil }

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// DecodeDocument parses a JSON or YAML journal document. A bare array of
// trades is accepted as well.
func DecodeDocument(data []byte, asYAML bool) (Document, error) {
	var doc Document
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return doc, nil
	}

	if asYAML {
		if data[0] == '-' {
			err := yaml.Unmarshal(data, &doc.Trades)
			return doc, err
		}
		err := yaml.Unmarshal(data, &doc)
		return doc, err
	}

	if data[0] == '[' {
		err := json.Unmarshal(data, &doc.Trades)
		return doc, err
	}
	err := json.Unmarshal(data, &doc)
	return doc, err
}

func (s *FileStore) read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, apperrors.NewStoreError("file", "read", err)
	}

	doc, err := DecodeDocument(data, isYAML(s.path))
	if err != nil {
		return Document{}, apperrors.NewStoreError("file", "decode "+s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc Document) error {
	if doc.Trades == nil {
		doc.Trades = []models.RawTrade{}
	}
	if doc.Challenges == nil {
		doc.Challenges = []models.ChallengeRecord{}
	}

	var data []byte
	var err error
	if isYAML(s.path) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return apperrors.NewStoreError("file", "encode", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStoreError("file", "create directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return apperrors.NewStoreError("file", "create temp", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewStoreError("file", "write", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStoreError("file", "write", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return apperrors.NewStoreError("file", "replace", err)
	}
	return nil
}

// update applies fn to the document under the write lock and persists it.
func (s *FileStore) update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(doc)
}

// LoadTrades returns the trades in document order.
func (s *FileStore) LoadTrades(ctx context.Context) ([]models.RawTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if doc.Trades == nil {
		return []models.RawTrade{}, nil
	}
	return doc.Trades, nil
}

// SaveTrade inserts or replaces a trade.
func (s *FileStore) SaveTrade(ctx context.Context, trade *models.RawTrade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	return s.update(func(doc *Document) error {
		for i := range doc.Trades {
			if doc.Trades[i].ID == trade.ID {
				doc.Trades[i] = *trade
				return nil
			}
		}
		doc.Trades = append(doc.Trades, *trade)
		return nil
	})
}

// DeleteTrade removes a trade by id.
func (s *FileStore) DeleteTrade(ctx context.Context, id string) error {
	return s.update(func(doc *Document) error {
		for i := range doc.Trades {
			if doc.Trades[i].ID == id {
				doc.Trades = append(doc.Trades[:i], doc.Trades[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id)
	})
}

// LoadChallenge returns the challenge with the given id.
func (s *FileStore) LoadChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	challenges, err := s.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range challenges {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
}

// ActiveChallenge returns the first active challenge, or nil.
func (s *FileStore) ActiveChallenge(ctx context.Context) (*models.Challenge, error) {
	challenges, err := s.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range challenges {
		if c.Active {
			return &c, nil
		}
	}
	return nil, nil
}

// ListChallenges returns every challenge in document order.
func (s *FileStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]models.Challenge, 0, len(doc.Challenges))
	for _, r := range doc.Challenges {
		out = append(out, r.Resolve())
	}
	return out, nil
}

// SaveChallenge inserts or replaces a challenge.
func (s *FileStore) SaveChallenge(ctx context.Context, c *models.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return s.update(func(doc *Document) error {
		saveChallenge(doc, *c)
		return nil
	})
}

// SetChallengeActive toggles the active flag.
func (s *FileStore) SetChallengeActive(ctx context.Context, id string, active bool) error {
	return s.update(func(doc *Document) error {
		for _, r := range doc.Challenges {
			if r.ID == id {
				c := r.Resolve()
				c.Active = active
				saveChallenge(doc, c)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
	})
}

func saveChallenge(doc *Document, c models.Challenge) {
	if c.Active {
		for i := range doc.Challenges {
			doc.Challenges[i].Active = false
		}
	}
	record := models.ChallengeRecord{Challenge: c}
	for i := range doc.Challenges {
		if doc.Challenges[i].ID == c.ID {
			doc.Challenges[i] = record
			return
		}
	}
	doc.Challenges = append(doc.Challenges, record)
}
