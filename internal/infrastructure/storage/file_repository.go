package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/ports"
)

// ErrEmptySnapshot is returned instead of writing an item file with no items.
var ErrEmptySnapshot = errors.New("refusing to write an empty item snapshot")

// FileRepository keeps the item pool and the featured set as indented JSON
// files, the format the static site build reads.
type FileRepository struct {
	itemsPath    string
	featuredPath string
	approvedPath string
}

var (
	_ ports.ItemStore          = (*FileRepository)(nil)
	_ ports.FeaturedRepository = (*FileRepository)(nil)
)

// NewFileRepository wires the file locations. An empty approvedPath skips the audit dump.
func NewFileRepository(itemsPath, featuredPath, approvedPath string) *FileRepository {
	return &FileRepository{itemsPath: itemsPath, featuredPath: featuredPath, approvedPath: approvedPath}
}

// LoadItems reads the item snapshot. A missing file yields no items.
func (r *FileRepository) LoadItems(_ context.Context) ([]domain.Item, error) {
	var snap domain.ItemSnapshot
	found, err := readJSON(r.itemsPath, &snap)
	if err != nil || !found {
		return nil, err
	}
	return snap.Items, nil
}

// SaveItems replaces the snapshot. An empty snapshot never overwrites anything.
func (r *FileRepository) SaveItems(_ context.Context, snap domain.ItemSnapshot) error {
	if len(snap.Items) == 0 {
		return ErrEmptySnapshot
	}
	return writeJSON(r.itemsPath, snap)
}

// SaveFeatured writes the approved pool first, when configured, then the
// featured set. A failed write never leaves a published set without its pool.
func (r *FileRepository) SaveFeatured(_ context.Context, set domain.FeaturedSet, approved []domain.Candidate) error {
	if r.approvedPath != "" {
		dump := approvedDump{Period: set.Period, RunID: set.RunID, Candidates: approved}
		if err := writeJSON(r.approvedPath, dump); err != nil {
			return fmt.Errorf("approved pool: %w", err)
		}
	}
	return writeJSON(r.featuredPath, set)
}

// LatestFeatured reads the previously published set, if any.
func (r *FileRepository) LatestFeatured(_ context.Context) (domain.FeaturedSet, bool, error) {
	var set domain.FeaturedSet
	found, err := readJSON(r.featuredPath, &set)
	if err != nil || !found {
		return domain.FeaturedSet{}, false, err
	}
	return set, true, nil
}

type approvedDump struct {
	Period     string             `json:"period"`
	RunID      string             `json:"runId,omitempty"`
	Candidates []domain.Candidate `json:"candidates"`
}

func readJSON(path string, dst any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// writeJSON writes through a temp file and rename so readers never see a partial file.
func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
