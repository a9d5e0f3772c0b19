package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const DefaultStoreFileName = ".nova-swap-store.json"

// FileStore keeps the whole store in memory and rewrites the backing JSON
// file on every mutation. Writes go to a temp file first and are renamed
// into place so a crash never leaves a half-written store.
type FileStore struct {
	filePath string

	mu        sync.RWMutex
	listings  map[string]Listing
	purchases []Purchase
}

type fileStoreDocument struct {
	Listings  map[string]Listing `json:"listings"`
	Purchases []Purchase         `json:"purchases"`
}

// NewFileStore opens (or prepares to create) the store at filePath. An
// empty path defaults to DefaultStoreFileName in the user's home directory.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStoreFileName)
	}

	s := &FileStore{
		filePath: filePath,
		listings: make(map[string]Listing),
	}

	if err := s.load(); err != nil {
		// A missing file is fine, it is created on first append.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}

	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var doc fileStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal store: %w", err)
	}

	s.listings = doc.Listings
	if s.listings == nil {
		s.listings = make(map[string]Listing)
	}
	s.purchases = doc.Purchases

	return nil
}

// save marshals the current state and atomically replaces the file.
// Callers must hold at least the read lock.
func (s *FileStore) save() error {
	doc := fileStoreDocument{
		Listings:  s.listings,
		Purchases: s.purchases,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (s *FileStore) Listings(ctx context.Context, f Filter) ([]Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if matches(l, f) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) ListingByGroupID(ctx context.Context, groupID string) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	return &l, nil
}

func (s *FileStore) LatestListing(ctx context.Context) (*Listing, error) {
	all, err := s.Listings(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return &all[0], nil
}

func (s *FileStore) AppendListing(ctx context.Context, l Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[l.GroupID]; exists {
		return fmt.Errorf("listing '%s' already exists", l.GroupID)
	}
	s.listings[l.GroupID] = l

	return s.save()
}

func (s *FileStore) Purchases(ctx context.Context, buyer string) ([]Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Purchase, 0)
	for _, p := range s.purchases {
		if p.Buyer == buyer {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) AppendPurchase(ctx context.Context, p Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases = append(s.purchases, p)

	return s.save()
}

func (s *FileStore) Purchased(ctx context.Context, buyer, groupID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.purchases {
		if p.Buyer == buyer && p.GroupID == groupID {
			return true, nil
		}
	}
	return false, nil
}

// FilePath returns the backing file's location.
func (s *FileStore) FilePath() string {
	return s.filePath
}

var _ Store = (*FileStore)(nil)
