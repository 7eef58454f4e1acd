package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is what the gateway hands back for a stored asset.
type Upload struct {
	URL    string // Durable public URL
	Handle string // Opaque token needed to release the asset later
}

// Gateway hosts uploaded media. Kinds are model.MediaKindImage and
// model.MediaKindVideo.
type Gateway interface {
	Upload(ctx context.Context, kind, filename string, body io.Reader) (*Upload, error)
	Release(ctx context.Context, handle, kind string) error
}

// MediaGateway stores media under <folder>/<kind>s/<uuid><ext> on a Storage backend.
// The storage key doubles as the release handle.
type MediaGateway struct {
	storage Storage
	folder  string
}

func NewMediaGateway(storage Storage, folder string) *MediaGateway {
	return &MediaGateway{
		storage: storage,
		folder:  strings.Trim(folder, "/"),
	}
}

func (g *MediaGateway) Upload(ctx context.Context, kind, filename string, body io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join(g.folder, kind+"s", uuid.New().String()+ext)

	err := g.storage.Save(ctx, key, body, mime.TypeByExtension(ext))
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", kind, err)
	}

	return &Upload{
		URL:    g.storage.URL(key),
		Handle: key,
	}, nil
}

func (g *MediaGateway) Release(ctx context.Context, handle, kind string) error {
	if handle == "" {
		return nil
	}
	if !strings.HasPrefix(handle, path.Join(g.folder, kind+"s")+"/") {
		return fmt.Errorf("handle %q is not a %s asset", handle, kind)
	}

	err := g.storage.Delete(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", kind, err)
	}
	return nil
}
