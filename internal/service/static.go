package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/frameweavers/showreel/internal/markdown"
	"github.com/frameweavers/showreel/internal/model"
)

// Catalog is the read side shared by the database service and the static
// fallback.
type Catalog interface {
	List(ctx context.Context) ([]*model.CatalogEntry, error)
	ByID(ctx context.Context, id string) (*model.CatalogEntry, error)
}

// StaticCatalog serves entries from portfolio/*.md files. The file name
// without extension is the entry id.
type StaticCatalog struct {
	fsys   fs.FS
	parser *markdown.Parser

	once    sync.Once
	entries []*model.CatalogEntry
	err     error
}

func NewStaticCatalog(fsys fs.FS) *StaticCatalog {
	return &StaticCatalog{
		fsys:   fsys,
		parser: markdown.NewParser(),
	}
}

func (s *StaticCatalog) List(_ context.Context) ([]*model.CatalogEntry, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}

	entries := make([]*model.CatalogEntry, len(s.entries))
	for i, e := range s.entries {
		copied := *e
		entries[i] = &copied
	}
	return entries, nil
}

func (s *StaticCatalog) ByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *StaticCatalog) load() {
	files, err := fs.Glob(s.fsys, "portfolio/*.md")
	if err != nil {
		s.err = err
		return
	}

	entries := []*model.CatalogEntry{}
	for _, file := range files {
		entry, err := s.entry(file)
		if err != nil {
			slog.Warn("skipping portfolio file", "file", file, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	// Files carry no creation time, so ties fall back to the file name and
	// files without an order sit alphabetically after the rest.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DisplaysBefore(entries[j])
	})

	s.entries = entries
	slog.Debug("static catalog loaded", "entries", len(entries))
}

func (s *StaticCatalog) entry(file string) (*model.CatalogEntry, error) {
	content, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, err
	}

	body, meta, err := s.parser.ParsePlain(content)
	if err != nil {
		return nil, err
	}

	entry := &model.CatalogEntry{
		ID:          strings.TrimSuffix(path.Base(file), ".md"),
		Description: body,
		Order:       1 << 62,
	}

	title, ok := meta["title"].(string)
	if !ok || title == "" {
		return nil, fmt.Errorf("missing title")
	}
	entry.Title = title

	category, ok := meta["category"].(string)
	if ok {
		entry.Category = category
	}

	image, ok := meta["image"].(string)
	if ok {
		entry.ImageURL = image
	}

	videoURL, ok := meta["videoUrl"].(string)
	if ok {
		entry.VideoURL = videoURL
	}

	description, ok := meta["description"].(string)
	if ok && entry.Description == "" {
		entry.Description = description
	}

	switch order := meta["order"].(type) {
	case int:
		entry.Order = int64(order)
	case int64:
		entry.Order = order
	case uint64:
		entry.Order = int64(order)
	case float64:
		entry.Order = int64(order)
	}

	return entry, nil
}
