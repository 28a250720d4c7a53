package service

import (
	"SmartMusic/internal/model"
	"context"
	"strings"

	"github.com/samber/lo"
)

// CreatePlaylist создаёт пустой плейлист пользователя.
func (l *Library) CreatePlaylist(ctx context.Context, userID, name string) (model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Playlist{}, validation("playlist name is required")
	}
	var pl model.Playlist
	err := l.update(ctx, func(t *txn) error {
		if userIndex(t.doc, userID) < 0 {
			return notFound("user", userID)
		}
		pl = model.Playlist{
			ID:        newID(),
			UserID:    userID,
			Name:      name,
			Songs:     []int64{},
			CreatedAt: l.nowMillis(),
		}
		t.doc.Playlists = append(t.doc.Playlists, pl)
		return nil
	})
	if err != nil {
		return model.Playlist{}, err
	}
	return pl, nil
}

// AddToPlaylist добавляет песню в конец плейлиста. Повторное добавление ничего не меняет.
func (l *Library) AddToPlaylist(ctx context.Context, playlistID string, songID int64) error {
	return l.update(ctx, func(t *txn) error {
		i := playlistIndex(t.doc, playlistID)
		if i < 0 {
			return notFound("playlist", playlistID)
		}
		if !songExists(t.doc, songID) {
			return notFound("song", songID)
		}
		pl := &t.doc.Playlists[i]
		if lo.Contains(pl.Songs, songID) {
			return errUnchanged
		}
		pl.Songs = append(pl.Songs, songID)
		return nil
	})
}

// PlaylistsByOwner возвращает плейлисты пользователя в порядке создания.
func (l *Library) PlaylistsByOwner(ctx context.Context, userID string) ([]model.Playlist, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(doc.Playlists, func(p model.Playlist, _ int) bool { return p.UserID == userID }), nil
}

// PlaylistSongs возвращает песни плейлиста в порядке плейлиста.
func (l *Library) PlaylistSongs(ctx context.Context, playlistID string) ([]model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	i := playlistIndex(doc, playlistID)
	if i < 0 {
		return nil, notFound("playlist", playlistID)
	}
	byID := lo.KeyBy(doc.Songs, func(s model.Song) int64 { return s.ID })
	return lo.FilterMap(doc.Playlists[i].Songs, func(id int64, _ int) (model.Song, bool) {
		s, ok := byID[id]
		return s, ok
	}), nil
}

func playlistIndex(doc *model.Document, id string) int {
	_, i, _ := lo.FindIndexOf(doc.Playlists, func(p model.Playlist) bool { return p.ID == id })
	return i
}
