package service

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/frameweavers/showreel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog_SortsAndParses(t *testing.T) {
	fsys := fstest.MapFS{
		"portfolio/b-second.md":    {Data: []byte("---\ntitle: Second\ncategory: events\norder: 2\n---\n\nLine one\ncontinues here.\n\nAnother *paragraph*.\n")},
		"portfolio/a-first.md":     {Data: []byte("---\ntitle: First\ncategory: weddings\nimage: /assets/first.png\nvideoUrl: https://youtu.be/abc123\norder: 1\n---\n\nOpening film.\n")},
		"portfolio/z-unordered.md": {Data: []byte("---\ntitle: Unordered\n---\n")},
		"portfolio/broken.md":      {Data: []byte("no frontmatter at all\n")},
		"portfolio/readme.txt":     {Data: []byte("ignored")},
	}

	catalog := NewStaticCatalog(fsys)
	entries, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a-first", entries[0].ID)
	assert.Equal(t, "First", entries[0].Title)
	assert.Equal(t, "weddings", entries[0].Category)
	assert.Equal(t, "/assets/first.png", entries[0].ImageURL)
	assert.Equal(t, "https://youtu.be/abc123", entries[0].VideoURL)
	assert.Equal(t, "Opening film.", entries[0].Description)

	assert.Equal(t, "b-second", entries[1].ID)
	assert.Equal(t, "Line one continues here.\n\nAnother paragraph.", entries[1].Description)

	assert.Equal(t, "z-unordered", entries[2].ID)
}

func TestStaticCatalog_TiedOrdersFallBackToFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"portfolio/m-middle.md": {Data: []byte("---\ntitle: Middle\norder: 3\n---\n")},
		"portfolio/b-tied.md":   {Data: []byte("---\ntitle: Tied B\norder: 3\n---\n")},
		"portfolio/a-early.md":  {Data: []byte("---\ntitle: Early\norder: 9\n---\n")},
	}

	entries, err := NewStaticCatalog(fsys).List(context.Background())
	require.NoError(t, err)

	ids := []string{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"b-tied", "m-middle", "a-early"}, ids)
}

func TestStaticCatalog_ByID(t *testing.T) {
	fsys := fstest.MapFS{
		"portfolio/reel.md": {Data: []byte("---\ntitle: Reel\n---\n")},
	}
	catalog := NewStaticCatalog(fsys)

	entry, err := catalog.ByID(context.Background(), "reel")
	require.NoError(t, err)
	assert.Equal(t, "Reel", entry.Title)

	// Callers may not mutate the cached list.
	entry.Title = "changed"
	again, err := catalog.ByID(context.Background(), "reel")
	require.NoError(t, err)
	assert.Equal(t, "Reel", again.Title)

	_, err = catalog.ByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticCatalog_EmbeddedContent(t *testing.T) {
	content, err := fs.Sub(showreel.ContentFS, "content")
	require.NoError(t, err)

	entries, err := NewStaticCatalog(content).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Royal Kerala Wedding", entries[0].Title)
	assert.Equal(t, "Autoshow&DJ", entries[1].Title)
	assert.Equal(t, "videos/Autoshow&Dj.mp4", entries[1].VideoURL)
}
