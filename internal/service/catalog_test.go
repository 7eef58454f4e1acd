package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frameweavers/showreel/internal/model"
	"github.com/frameweavers/showreel/internal/repository"
	"github.com/frameweavers/showreel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory EntryRepository. It hands out copies so the
// service cannot change stored rows without going through a write.
type memoryRepo struct {
	mu        sync.Mutex
	entries   map[string]model.CatalogEntry
	failWrite error
}

func newMemoryRepo(entries ...*model.CatalogEntry) *memoryRepo {
	r := &memoryRepo{entries: map[string]model.CatalogEntry{}}
	for _, e := range entries {
		r.entries[e.ID] = *e
	}
	return r
}

func (r *memoryRepo) Create(_ context.Context, entry *model.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *memoryRepo) Entries(_ context.Context) ([]*model.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.CatalogEntry{}
	for _, e := range r.entries {
		out = append(out, &e)
	}
	slices.SortFunc(out, func(a, b *model.CatalogEntry) int {
		if a.DisplaysBefore(b) {
			return -1
		}
		return 1
	})
	return out, nil
}

func (r *memoryRepo) ByID(_ context.Context, id string) (*model.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	return &e, nil
}

func (r *memoryRepo) Update(_ context.Context, entry *model.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return repository.ErrEntryNotFound
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *memoryRepo) UpdateOrders(_ context.Context, entries ...*model.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	for _, e := range entries {
		if _, ok := r.entries[e.ID]; !ok {
			return repository.ErrEntryNotFound
		}
	}
	for _, e := range entries {
		stored := r.entries[e.ID]
		stored.Order = e.Order
		r.entries[e.ID] = stored
	}
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	if _, ok := r.entries[id]; !ok {
		return repository.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

// recordingGateway keeps uploaded handles and can be told to fail per kind.
type recordingGateway struct {
	live        map[string]bool
	released    []string
	failUpload  map[string]error
	failRelease map[string]error
	seq         int
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{
		live:        map[string]bool{},
		failUpload:  map[string]error{},
		failRelease: map[string]error{},
	}
}

func (g *recordingGateway) Upload(_ context.Context, kind, filename string, body io.Reader) (*storage.Upload, error) {
	if err := g.failUpload[kind]; err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, body)
	g.seq++
	handle := fmt.Sprintf("%ss/%d-%s", kind, g.seq, filename)
	g.live[handle] = true
	return &storage.Upload{URL: "https://cdn.test/" + handle, Handle: handle}, nil
}

func (g *recordingGateway) Release(_ context.Context, handle, kind string) error {
	if err := g.failRelease[kind]; err != nil {
		return err
	}
	delete(g.live, handle)
	g.released = append(g.released, handle)
	return nil
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id string, order int64, created time.Time) *model.CatalogEntry {
	return &model.CatalogEntry{ID: id, Title: strings.ToUpper(id), Category: "weddings", Order: order, CreatedAt: created}
}

func newTestService(repo repository.EntryRepository, gw storage.Gateway) *CatalogService {
	svc := NewCatalogService(repo, gw, time.Second, time.Second)
	svc.now = func() time.Time { return epoch }
	return svc
}

func listIDs(t *testing.T, svc *CatalogService) []string {
	t.Helper()
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func TestList_OrderThenNewestFirst(t *testing.T) {
	repo := newMemoryRepo(
		entry("old", 1, epoch),
		entry("new", 1, epoch.Add(time.Hour)),
		entry("first", 0, epoch),
		entry("last", 9, epoch),
	)
	svc := newTestService(repo, newRecordingGateway())

	assert.Equal(t, []string{"first", "new", "old", "last"}, listIDs(t, svc))
}

func TestReorder_SwapsWithNeighbor(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch), entry("b", 2, epoch), entry("c", 3, epoch))
	svc := newTestService(repo, newRecordingGateway())

	moved, err := svc.Reorder(context.Background(), 1, DirectionUp)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "a", "c"}, listIDs(t, svc))

	a, _ := repo.ByID(context.Background(), "a")
	b, _ := repo.ByID(context.Background(), "b")
	assert.Equal(t, int64(2), a.Order)
	assert.Equal(t, int64(1), b.Order)

	moved, err = svc.Reorder(context.Background(), 1, DirectionDown)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "c", "a"}, listIDs(t, svc))
}

func TestReorder_EdgesAreNoOps(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch), entry("b", 2, epoch), entry("c", 3, epoch))
	svc := newTestService(repo, newRecordingGateway())

	moved, err := svc.Reorder(context.Background(), 0, DirectionUp)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = svc.Reorder(context.Background(), 2, DirectionDown)
	require.NoError(t, err)
	assert.False(t, moved)

	assert.Equal(t, []string{"a", "b", "c"}, listIDs(t, svc))
}

func TestReorder_IndexOutOfRange(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch))
	svc := newTestService(repo, newRecordingGateway())

	for _, index := range []int{-1, 1, 50} {
		_, err := svc.Reorder(context.Background(), index, DirectionUp)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", index)
	}
	assert.Equal(t, []string{"a"}, listIDs(t, svc))
}

func TestReorder_InvalidDirection(t *testing.T) {
	svc := newTestService(newMemoryRepo(entry("a", 1, epoch)), newRecordingGateway())

	_, err := svc.Reorder(context.Background(), 0, Direction("sideways"))
	assert.ErrorIs(t, err, ErrInvalidDirection)

	_, err = ParseDirection("left")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	dir, err := ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, dir)
}

func TestReorder_TiedOrdersBecomeDistinct(t *testing.T) {
	// Equal keys: A was created later so it displays first.
	repo := newMemoryRepo(entry("a", 5, epoch.Add(time.Minute)), entry("b", 5, epoch))
	svc := newTestService(repo, newRecordingGateway())
	require.Equal(t, []string{"a", "b"}, listIDs(t, svc))

	moved, err := svc.Reorder(context.Background(), 1, DirectionUp)
	require.NoError(t, err)
	assert.True(t, moved)

	a, _ := repo.ByID(context.Background(), "a")
	b, _ := repo.ByID(context.Background(), "b")
	assert.NotEqual(t, a.Order, b.Order)
	assert.Less(t, b.Order, a.Order)
	assert.Equal(t, []string{"b", "a"}, listIDs(t, svc))
}

func TestReorder_TiedOrdersMoveDown(t *testing.T) {
	repo := newMemoryRepo(entry("a", 5, epoch.Add(time.Minute)), entry("b", 5, epoch))
	svc := newTestService(repo, newRecordingGateway())

	moved, err := svc.Reorder(context.Background(), 0, DirectionDown)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "a"}, listIDs(t, svc))
}

func TestReorder_TiedPairMovesToEnd(t *testing.T) {
	// Breaking a tie stamps fresh keys, so the pair lands after c.
	repo := newMemoryRepo(
		entry("x", 1, epoch),
		entry("a", 5, epoch.Add(time.Minute)),
		entry("b", 5, epoch),
		entry("c", 10, epoch),
	)
	svc := newTestService(repo, newRecordingGateway())
	require.Equal(t, []string{"x", "a", "b", "c"}, listIDs(t, svc))

	moved, err := svc.Reorder(context.Background(), 2, DirectionUp)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"x", "c", "b", "a"}, listIDs(t, svc))
}

func TestReorder_StoreFailureLeavesOrder(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch), entry("b", 2, epoch))
	svc := newTestService(repo, newRecordingGateway())
	repo.failWrite = errors.New("connection reset")

	_, err := svc.Reorder(context.Background(), 1, DirectionUp)
	require.Error(t, err)

	repo.failWrite = nil
	assert.Equal(t, []string{"a", "b"}, listIDs(t, svc))
}

func TestCreate_AppendsLast(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch))
	gw := newRecordingGateway()
	svc := newTestService(repo, gw)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Royal Kerala Wedding",
		Category:  "weddings",
		VideoURL:  "https://www.youtube.com/watch?v=abc",
		Thumbnail: &MediaFile{Filename: "thumb.jpg", Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, epoch.UnixMilli(), created.Order)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", created.VideoURL)
	assert.Empty(t, created.VideoHandle)
	assert.True(t, gw.live[created.ImageHandle])
	assert.Equal(t, "https://cdn.test/"+created.ImageHandle, created.ImageURL)
	assert.Equal(t, []string{"a", created.ID}, listIDs(t, svc))
}

func TestCreate_SameInstantStaysMonotonic(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newRecordingGateway())

	first, err := svc.Create(context.Background(), CreateInput{Title: "one"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateInput{Title: "two"})
	require.NoError(t, err)

	assert.Greater(t, second.Order, first.Order)
	assert.Equal(t, []string{first.ID, second.ID}, listIDs(t, svc))
}

func TestCreate_VideoUploadFailurePersistsNothing(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch))
	gw := newRecordingGateway()
	gw.failUpload[model.MediaKindVideo] = errors.New("gateway down")
	svc := newTestService(repo, gw)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:     "Autoshow",
		Thumbnail: &MediaFile{Filename: "thumb.png", Body: strings.NewReader("png")},
		Video:     &MediaFile{Filename: "clip.mp4", Body: strings.NewReader("mp4")},
	})
	require.ErrorIs(t, err, ErrUpload)

	count, _ := repo.Count(context.Background())
	assert.Equal(t, 1, count)
	assert.Empty(t, gw.live, "thumbnail should be released again")
	assert.Len(t, gw.released, 1)
}

func TestCreate_StoreFailureReleasesUploads(t *testing.T) {
	repo := newMemoryRepo()
	repo.failWrite = errors.New("disk full")
	gw := newRecordingGateway()
	svc := newTestService(repo, gw)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:     "Autoshow",
		Thumbnail: &MediaFile{Filename: "thumb.png", Body: strings.NewReader("png")},
		Video:     &MediaFile{Filename: "clip.mp4", Body: strings.NewReader("mp4")},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpload)
	assert.Empty(t, gw.live)
	assert.Len(t, gw.released, 2)
}

func TestCreate_UploadDeadlineStillReleasesThumbnail(t *testing.T) {
	repo := newMemoryRepo()
	gw := &deadlineGateway{recordingGateway: newRecordingGateway()}
	svc := NewCatalogService(repo, gw, time.Second, 20*time.Millisecond)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:     "Autoshow",
		Thumbnail: &MediaFile{Filename: "thumb.png", Body: strings.NewReader("png")},
		Video:     &MediaFile{Filename: "clip.mp4", Body: strings.NewReader("mp4")},
	})
	require.ErrorIs(t, err, ErrUpload)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
	assert.Empty(t, gw.live)
	require.Len(t, gw.released, 1)
	assert.True(t, strings.HasPrefix(gw.released[0], "images/"))
}

func TestCreate_CancelledCallerStillReleasesThumbnail(t *testing.T) {
	gw := &deadlineGateway{recordingGateway: newRecordingGateway()}
	svc := newTestService(newMemoryRepo(), gw)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Create(ctx, CreateInput{
		Title:     "Autoshow",
		Thumbnail: &MediaFile{Filename: "thumb.png", Body: strings.NewReader("png")},
		Video:     &MediaFile{Filename: "clip.mp4", Body: strings.NewReader("mp4")},
	})
	require.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, gw.live)
	assert.Len(t, gw.released, 1)
}

func TestCreate_UploadsOutlastStoreTimeout(t *testing.T) {
	gw := &slowGateway{recordingGateway: newRecordingGateway(), delay: 30 * time.Millisecond}
	svc := NewCatalogService(newMemoryRepo(), gw, 10*time.Millisecond, time.Second)

	created, err := svc.Create(context.Background(), CreateInput{
		Title: "Autoshow",
		Video: &MediaFile{Filename: "clip.mp4", Body: strings.NewReader("mp4")},
	})
	require.NoError(t, err)
	assert.True(t, gw.live[created.VideoHandle])
}

// deadlineGateway stalls video uploads until the context ends and refuses
// to release anything on a dead context.
type deadlineGateway struct {
	*recordingGateway
}

func (g *deadlineGateway) Upload(ctx context.Context, kind, filename string, body io.Reader) (*storage.Upload, error) {
	if kind == model.MediaKindVideo {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.recordingGateway.Upload(ctx, kind, filename, body)
}

func (g *deadlineGateway) Release(ctx context.Context, handle, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.recordingGateway.Release(ctx, handle, kind)
}

// slowGateway takes delay per upload unless the context ends first.
type slowGateway struct {
	*recordingGateway
	delay time.Duration
}

func (g *slowGateway) Upload(ctx context.Context, kind, filename string, body io.Reader) (*storage.Upload, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.recordingGateway.Upload(ctx, kind, filename, body)
}

func TestDelete_ByIDReleasesHandles(t *testing.T) {
	target := entry("target", 1, epoch)
	target.ImageHandle = "images/1-thumb.png"
	target.VideoHandle = "videos/2-clip.mp4"
	repo := newMemoryRepo(target, entry("other", 2, epoch))
	gw := newRecordingGateway()
	svc := newTestService(repo, gw)

	report, err := svc.Delete(context.Background(), "target")
	require.NoError(t, err)

	assert.Equal(t, "target", report.Entry.ID)
	assert.Equal(t, []string{"images/1-thumb.png", "videos/2-clip.mp4"}, report.Released)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"other"}, listIDs(t, svc))
}

func TestDelete_ReleaseFailureStillRemovesRecord(t *testing.T) {
	target := entry("target", 1, epoch)
	target.ImageHandle = "images/1-thumb.png"
	target.VideoHandle = "videos/2-clip.mp4"
	repo := newMemoryRepo(target)
	gw := newRecordingGateway()
	gw.failRelease[model.MediaKindVideo] = errors.New("gateway timeout")
	svc := newTestService(repo, gw)

	report, err := svc.Delete(context.Background(), "target")
	require.NoError(t, err)

	assert.Equal(t, []string{"images/1-thumb.png"}, report.Released)
	assert.Equal(t, []string{"videos/2-clip.mp4"}, report.Failed)
	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(newMemoryRepo(entry("a", 1, epoch)), newRecordingGateway())

	_, err := svc.Delete(context.Background(), "3f1c2a9e-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(context.Background(), "7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_IDAndLegacyIndexDiverge(t *testing.T) {
	repo := newMemoryRepo(entry("a", 1, epoch), entry("b", 2, epoch), entry("c", 3, epoch))
	svc := newTestService(repo, newRecordingGateway())

	// A client computes index 0 for "a", then someone moves "b" up first.
	_, err := svc.Reorder(context.Background(), 1, DirectionUp)
	require.NoError(t, err)

	report, err := svc.Delete(context.Background(), "0")
	require.NoError(t, err)
	assert.Equal(t, "b", report.Entry.ID)
	assert.Equal(t, []string{"a", "c"}, listIDs(t, svc))

	report, err = svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", report.Entry.ID)
	assert.Equal(t, []string{"c"}, listIDs(t, svc))
}

func TestLegacyIndex(t *testing.T) {
	tests := []struct {
		ref   string
		index int
		ok    bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"-1", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1234567890", 0, false},
		{"550e8400-e29b-41d4-a716-446655440000", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			index, ok := legacyIndex(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestCatalogService_TimesOutSlowStore(t *testing.T) {
	svc := NewCatalogService(slowRepo{newMemoryRepo()}, newRecordingGateway(), 10*time.Millisecond, time.Second)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowRepo struct{ *memoryRepo }

func (r slowRepo) Entries(ctx context.Context) ([]*model.CatalogEntry, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
