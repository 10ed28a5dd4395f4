// Package datastore is a small JSON-file backed key/value store. Values
// live in memory and are flushed to disk periodically and on Close.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("datastore is closed")

type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	// BackupCount is the number of timestamped copies kept next to the file.
	BackupCount int
	Logger      zerolog.Logger
}

func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           zerolog.Nop(),
	}
}

type Store struct {
	cfg Config

	mu       sync.RWMutex
	data     map[string]json.RawMessage
	checksum string
	closed   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func Open(filePath string) (*Store, error) {
	return OpenWithConfig(DefaultConfig(filePath))
}

func OpenWithConfig(cfg Config) (*Store, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	s := &Store{cfg: cfg, data: make(map[string]json.RawMessage)}
	if err := s.load(); err != nil {
		return nil, err
	}

	if cfg.AutoSaveInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.wg.Add(1)
		go s.autoSave(ctx)
	}
	return s, nil
}

// Put stores the JSON encoding of value under key.
func (s *Store) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = raw
	return nil
}

// Get decodes the value stored under key into v. It reports false when
// the key is absent.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Flush writes pending changes to disk immediately.
func (s *Store) Flush() error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return s.save()
}

// Close stops the auto-save loop and performs a final save.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return s.save()
}

func (s *Store) autoSave(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.save(); err != nil {
				s.cfg.Logger.Error().Err(err).Str("file", s.cfg.FilePath).Msg("auto-save failed")
			}
		}
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.cfg.FilePath, err)
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", s.cfg.FilePath, err)
	}
	if s.data == nil {
		s.data = make(map[string]json.RawMessage)
	}
	s.checksum = checksum(data)
	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	sum := checksum(data)
	if sum == s.checksum {
		return nil
	}

	if s.cfg.BackupCount > 0 {
		if err := s.backup(); err != nil {
			s.cfg.Logger.Warn().Err(err).Str("file", s.cfg.FilePath).Msg("backup failed")
		}
	}
	if err := writeFileAtomic(s.cfg.FilePath, data); err != nil {
		return err
	}
	s.checksum = sum
	s.cfg.Logger.Debug().Str("file", s.cfg.FilePath).Int("keys", len(s.data)).Msg("store saved")
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) backup() error {
	src, err := os.Open(s.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("%s.backup.%s", s.cfg.FilePath, time.Now().Format("20060102_150405.000"))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	s.pruneBackups()
	return nil
}

// pruneBackups keeps the newest BackupCount backups. The timestamp suffix
// sorts lexically in creation order.
func (s *Store) pruneBackups() {
	matches, err := filepath.Glob(s.cfg.FilePath + ".backup.*")
	if err != nil || len(matches) <= s.cfg.BackupCount {
		return
	}
	slices.Sort(matches)
	for _, m := range matches[:len(matches)-s.cfg.BackupCount] {
		os.Remove(m)
	}
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
