package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/frameweavers/showreel/internal/model"
	"github.com/frameweavers/showreel/internal/repository"
	"github.com/frameweavers/showreel/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrUpload           = errors.New("media upload failed")
	ErrNotFound         = errors.New("not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidDirection = errors.New("direction must be up or down")
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	}
	return "", ErrInvalidDirection
}

// cleanupTimeout bounds the release of uploads after a failed create.
const cleanupTimeout = 30 * time.Second

// legacyIndexMaxLen mirrors the old clients: any ref shorter than this that
// parses as a number is a position in the list, not an id.
const legacyIndexMaxLen = 10

// MediaFile is an uploaded payload waiting to be handed to the gateway.
type MediaFile struct {
	Filename string
	Body     io.Reader
}

type CreateInput struct {
	Title       string
	Category    string
	Description string
	ImageURL    string // Stored verbatim when no thumbnail is uploaded
	VideoURL    string // Stored verbatim when no video is uploaded (external links)
	Thumbnail   *MediaFile
	Video       *MediaFile
}

// DeleteReport lists the gateway handles a delete touched.
type DeleteReport struct {
	Entry    *model.CatalogEntry
	Released []string
	Failed   []string
}

// CatalogService owns the portfolio list and its ordering.
//
// Writes are serialized through mu, so reorders from one process never
// interleave. Separate processes sharing a database can still race: the
// reorder reads the list and then writes two rows with no version check.
type CatalogService struct {
	repo          repository.EntryRepository
	gateway       storage.Gateway
	timeout       time.Duration // Store calls
	uploadTimeout time.Duration // Each create's media uploads together
	now           func() time.Time

	mu        sync.Mutex
	lastOrder int64
}

// NewCatalogService builds the service. A zero timeout leaves the caller's
// deadline in charge.
func NewCatalogService(repo repository.EntryRepository, gateway storage.Gateway, timeout, uploadTimeout time.Duration) *CatalogService {
	return &CatalogService{
		repo:          repo,
		gateway:       gateway,
		timeout:       timeout,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
	}
}

// List returns every entry in display order.
func (s *CatalogService) List(ctx context.Context) ([]*model.CatalogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// ByID returns a single entry.
func (s *CatalogService) ByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entry, err := s.repo.ByID(ctx, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, ErrNotFound
	}
	return entry, err
}

// Create uploads the given media, then persists the entry. Nothing is
// persisted unless every upload succeeded; uploads made before a failure
// are released again, even when the failure was the caller's deadline.
func (s *CatalogService) Create(ctx context.Context, in CreateInput) (*model.CatalogEntry, error) {
	now := s.now()
	entry := &model.CatalogEntry{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		VideoURL:    in.VideoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.upload(ctx, entry, in)
	if err != nil {
		s.releaseAll(ctx, entry)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storeCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	entry.Order = s.nextOrder(now)

	err = s.repo.Create(storeCtx, entry)
	if err != nil {
		s.releaseAll(ctx, entry)
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	slog.InfoContext(ctx, "catalog entry created", "entry_id", entry.ID, "order", entry.Order)
	return entry, nil
}

// upload sends the thumbnail and video under the upload deadline, which is
// far longer than a store call.
func (s *CatalogService) upload(ctx context.Context, entry *model.CatalogEntry, in CreateInput) error {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	if in.Thumbnail != nil {
		upload, err := s.gateway.Upload(ctx, model.MediaKindImage, in.Thumbnail.Filename, in.Thumbnail.Body)
		if err != nil {
			return fmt.Errorf("%w: thumbnail: %w", ErrUpload, err)
		}
		entry.ImageURL = upload.URL
		entry.ImageHandle = upload.Handle
	}

	if in.Video != nil {
		upload, err := s.gateway.Upload(ctx, model.MediaKindVideo, in.Video.Filename, in.Video.Body)
		if err != nil {
			return fmt.Errorf("%w: video: %w", ErrUpload, err)
		}
		entry.VideoURL = upload.URL
		entry.VideoHandle = upload.Handle
	}
	return nil
}

// Delete removes the entry ref points at: a store id, or for older clients
// a position in the current list. Gateway handles are released first; a
// failed release is reported but does not keep the record.
func (s *CatalogService) Delete(ctx context.Context, ref string) (*DeleteReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	report := &DeleteReport{Entry: entry}
	s.release(ctx, report, entry.ImageHandle, model.MediaKindImage)
	s.release(ctx, report, entry.VideoHandle, model.MediaKindVideo)

	err = s.repo.Delete(ctx, entry.ID)
	if err != nil {
		if len(report.Released) > 0 {
			slog.ErrorContext(ctx, "catalog entry kept after its media was released",
				"entry_id", entry.ID, "released", report.Released, "error", err)
		}
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}

	slog.InfoContext(ctx, "catalog entry deleted", "entry_id", entry.ID, "ref", ref, "release_failures", len(report.Failed))
	return report, nil
}

// Reorder moves the entry at index one step up or down by swapping order
// keys with its neighbor. Moving past either end is a successful no-op.
// It reports whether anything changed.
//
// Neighbors with equal keys have nothing to swap. The pair gets fresh
// clock stamps instead, which moves both of them to the end of the list
// in their new relative order: [x(1) a(5) b(5) c(10)] with b moved up
// becomes [x c b a].
func (s *CatalogService) Reorder(ctx context.Context, index int, direction Direction) (bool, error) {
	if direction != DirectionUp && direction != DirectionDown {
		return false, ErrInvalidDirection
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list entries: %w", err)
	}

	if index < 0 || index >= len(entries) {
		return false, ErrIndexOutOfRange
	}

	neighborIndex := index - 1
	if direction == DirectionDown {
		neighborIndex = index + 1
	}
	if neighborIndex < 0 || neighborIndex >= len(entries) {
		return false, nil
	}

	current := entries[index]
	neighbor := entries[neighborIndex]
	current.Order, neighbor.Order = neighbor.Order, current.Order

	// Legacy rows can share an order key; a plain swap would then change
	// nothing and the createdAt tiebreak would undo the move.
	if current.Order == neighbor.Order {
		stamp := s.nextOrder(s.now())
		s.lastOrder++
		if direction == DirectionUp {
			current.Order, neighbor.Order = stamp, stamp+1
		} else {
			current.Order, neighbor.Order = stamp+1, stamp
		}
	}

	err = s.repo.UpdateOrders(ctx, current, neighbor)
	if err != nil {
		return false, fmt.Errorf("failed to persist order: %w", err)
	}

	slog.InfoContext(ctx, "catalog entry moved", "entry_id", current.ID, "direction", direction,
		"from", index, "to", neighborIndex)
	return true, nil
}

// Count returns the number of stored entries.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.Count(ctx)
}

func (s *CatalogService) resolve(ctx context.Context, ref string) (*model.CatalogEntry, error) {
	if index, ok := legacyIndex(ref); ok {
		entries, err := s.repo.Entries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entries: %w", err)
		}
		if index >= len(entries) {
			return nil, ErrNotFound
		}
		return entries[index], nil
	}

	entry, err := s.repo.ByID(ctx, ref)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func legacyIndex(ref string) (int, bool) {
	if ref == "" || len(ref) >= legacyIndexMaxLen {
		return 0, false
	}
	index, err := strconv.Atoi(ref)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// nextOrder returns a millisecond timestamp that is strictly greater than
// any order key this service handed out before. Callers hold mu.
func (s *CatalogService) nextOrder(now time.Time) int64 {
	order := now.UnixMilli()
	if order <= s.lastOrder {
		order = s.lastOrder + 1
	}
	s.lastOrder = order
	return order
}

func (s *CatalogService) release(ctx context.Context, report *DeleteReport, handle, kind string) {
	if handle == "" {
		return
	}
	err := s.gateway.Release(ctx, handle, kind)
	if err != nil {
		slog.WarnContext(ctx, "failed to release media", "handle", handle, "kind", kind, "error", err)
		report.Failed = append(report.Failed, handle)
		return
	}
	report.Released = append(report.Released, handle)
}

// releaseAll undoes the uploads of an entry that never made it to the store.
// It runs detached from ctx, which may already be past its deadline.
func (s *CatalogService) releaseAll(ctx context.Context, entry *model.CatalogEntry) {
	if entry.ImageHandle == "" && entry.VideoHandle == "" {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	report := &DeleteReport{}
	s.release(cleanupCtx, report, entry.ImageHandle, model.MediaKindImage)
	s.release(cleanupCtx, report, entry.VideoHandle, model.MediaKindVideo)
	if len(report.Failed) > 0 {
		slog.ErrorContext(ctx, "orphaned media after failed create", "handles", report.Failed)
	}
}

func (s *CatalogService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
