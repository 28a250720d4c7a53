package service

import (
	"SmartMusic/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_Playlists(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLibrary(t)
	alice := signup(t, l, "alice")
	bob := signup(t, l, "bob")
	s1, err := l.SaveSong(ctx, newSong("One", ""), "", nil, nil)
	require.NoError(t, err)
	s2, err := l.SaveSong(ctx, newSong("Two", ""), "", nil, nil)
	require.NoError(t, err)

	pl, err := l.CreatePlaylist(ctx, alice.ID, " Road trip ")
	require.NoError(t, err)
	assert.Equal(t, "Road trip", pl.Name)
	assert.Empty(t, pl.Songs)
	_, err = l.CreatePlaylist(ctx, bob.ID, "Bob's")
	require.NoError(t, err)

	t.Run("order kept and duplicates ignored", func(t *testing.T) {
		require.NoError(t, l.AddToPlaylist(ctx, pl.ID, s2.ID))
		require.NoError(t, l.AddToPlaylist(ctx, pl.ID, s1.ID))
		require.NoError(t, l.AddToPlaylist(ctx, pl.ID, s2.ID))

		songs, err := l.PlaylistSongs(ctx, pl.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.Song{s2, s1}, songs)
	})

	t.Run("by owner", func(t *testing.T) {
		mine, err := l.PlaylistsByOwner(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, pl.ID, mine[0].ID)
		assert.Equal(t, []int64{s2.ID, s1.ID}, mine[0].Songs)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := l.CreatePlaylist(ctx, alice.ID, "")
		assert.ErrorIs(t, err, ErrValidation)
		_, err = l.CreatePlaylist(ctx, "ghost", "x")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, l.AddToPlaylist(ctx, "nope", s1.ID), ErrNotFound)
		assert.ErrorIs(t, l.AddToPlaylist(ctx, pl.ID, 777), ErrNotFound)
		_, err = l.PlaylistSongs(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
