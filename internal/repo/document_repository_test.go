package repo

import (
	"SmartMusic/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWithAdmin() (*model.Document, error) {
	return model.NewDocument(model.User{ID: model.AdminID, Email: "admin@example.com", Role: model.RoleAdmin}), nil
}

func TestDocumentRepository_LoadSeedsOnce(t *testing.T) {
	db := newTestDB(t)
	calls := 0
	r := NewDocumentRepository(db, "doc", func() (*model.Document, error) {
		calls++
		return seedWithAdmin()
	})
	ctx := context.Background()

	doc, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Users, 1)
	assert.Equal(t, model.AdminID, doc.Users[0].ID)
	assert.Empty(t, doc.Songs)
	assert.NotNil(t, doc.Songs)
	assert.Equal(t, int64(1), doc.Version)

	// второй Load читает сохранённый документ и не засевает заново
	again, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
	assert.Equal(t, 1, calls)
}

func TestDocumentRepository_SaveLoadRoundTrip(t *testing.T) {
	r := NewDocumentRepository(newTestDB(t), "doc", seedWithAdmin)
	ctx := context.Background()

	first, err := r.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDocumentRepository_StaleSaveConflicts(t *testing.T) {
	r := NewDocumentRepository(newTestDB(t), "doc", seedWithAdmin)
	ctx := context.Background()

	a, err := r.Load(ctx)
	require.NoError(t, err)
	b, err := r.Load(ctx)
	require.NoError(t, err)

	a.Songs = append(a.Songs, model.Song{ID: 1, Title: "first"})
	require.NoError(t, r.Save(ctx, a))

	// b прочитан до записи a - его запись не должна затереть изменения
	b.Songs = append(b.Songs, model.Song{ID: 2, Title: "second"})
	err = r.Save(ctx, b)
	assert.ErrorIs(t, err, ErrVersionConflict)

	cur, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cur.Songs, 1)
	assert.Equal(t, "first", cur.Songs[0].Title)
}

func TestDocumentRepository_SaveWithoutLoadCreatesRow(t *testing.T) {
	r := NewDocumentRepository(newTestDB(t), "doc", nil)
	ctx := context.Background()

	doc := model.NewDocument()
	doc.Songs = append(doc.Songs, model.Song{ID: 5})
	require.NoError(t, r.Save(ctx, doc))
	assert.Equal(t, int64(1), doc.Version)

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Songs, 1)
}

func TestDocumentRepository_SeedError(t *testing.T) {
	r := NewDocumentRepository(newTestDB(t), "doc", func() (*model.Document, error) {
		return nil, errors.New("no admin")
	})
	_, err := r.Load(context.Background())
	assert.Error(t, err)
}

func TestStorage_AtomicRollsBackDocumentAndBlobs(t *testing.T) {
	s := NewStorage(newTestDB(t), "doc", seedWithAdmin)
	ctx := context.Background()

	_, err := s.Documents().Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Blobs().Put(ctx, "audio_1", []byte{1}))

	boom := errors.New("boom")
	err = s.Atomic(ctx, func(tx Storage) error {
		doc, err := tx.Documents().Load(ctx)
		if err != nil {
			return err
		}
		doc.Songs = append(doc.Songs, model.Song{ID: 1})
		if err := tx.Documents().Save(ctx, doc); err != nil {
			return err
		}
		if err := tx.Blobs().Remove(ctx, "audio_1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := s.Documents().Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Songs)
	data, err := s.Blobs().Get(ctx, "audio_1")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}
