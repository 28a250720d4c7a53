package service

import (
	"SmartMusic/internal/model"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// SaveSong создаёт или обновляет песню. Для новой песни ID равен model.NewSongID.
// Непустые audio/art кладутся в хранилище блобов, а ссылки песни заменяются на local:<key>.
// Локальные ссылки допустимы только на собственные ключи песни (audio_<id>, art_<id>).
// Блобы, на которые песня перестала ссылаться, удаляются в той же транзакции.
func (l *Library) SaveSong(ctx context.Context, song model.Song, uploaderID string, audio, art []byte) (model.Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	if song.Title == "" {
		return model.Song{}, validation("song title is required")
	}
	if song.ID != model.NewSongID && song.ID <= 0 {
		return model.Song{}, validation("invalid song id %d", song.ID)
	}

	err := l.update(ctx, func(t *txn) error {
		if song.ID == model.NewSongID {
			song.ID = l.nextSongID(t.doc)
		}
		i := songIndex(t.doc, song.ID)

		if len(audio) > 0 {
			key := model.AudioKey(song.ID)
			if err := t.putBlob(key, audio); err != nil {
				return err
			}
			song.File = model.LocalRef(key)
		}
		if len(art) > 0 {
			key := model.ArtKey(song.ID)
			if err := t.putBlob(key, art); err != nil {
				return err
			}
			song.Art = model.LocalRef(key)
		}
		if err := checkOwnRefs(song); err != nil {
			return err
		}
		if uploaderID != "" {
			song.UploadedBy = uploaderID
		}

		if i < 0 {
			t.doc.Songs = append(t.doc.Songs, song)
			return nil
		}
		prev := t.doc.Songs[i]
		if song.UploadedBy == "" {
			song.UploadedBy = prev.UploadedBy
		}
		keep := song.BlobKeys()
		for _, key := range prev.BlobKeys() {
			if !lo.Contains(keep, key) && ownsBlob(song.ID, key) {
				if err := t.removeBlob(key); err != nil {
					return err
				}
			}
		}
		t.doc.Songs[i] = song
		return nil
	})
	if err != nil {
		return model.Song{}, err
	}
	l.logger.Infow("song saved", "song_id", song.ID, "audio_bytes", len(audio), "art_bytes", len(art))
	return song, nil
}

// DeleteSong удаляет песню вместе с её блобами, лайками и вхождениями в плейлисты.
func (l *Library) DeleteSong(ctx context.Context, songID int64) error {
	err := l.update(ctx, func(t *txn) error {
		i := songIndex(t.doc, songID)
		if i < 0 {
			return notFound("song", songID)
		}
		// чужие блобы не трогаем, даже если документ на них ссылается
		for _, key := range []string{model.AudioKey(songID), model.ArtKey(songID)} {
			if err := t.removeBlob(key); err != nil {
				return err
			}
		}

		t.doc.Songs = slices.Delete(t.doc.Songs, i, i+1)
		t.doc.Likes = lo.Filter(t.doc.Likes, func(lk model.Like, _ int) bool { return lk.SongID != songID })
		for p := range t.doc.Playlists {
			t.doc.Playlists[p].Songs = lo.Filter(t.doc.Playlists[p].Songs, func(id int64, _ int) bool { return id != songID })
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.logger.Infow("song deleted", "song_id", songID)
	return nil
}

func (l *Library) ListSongs(ctx context.Context) ([]model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Songs, nil
}

func (l *Library) GetSong(ctx context.Context, songID int64) (model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return model.Song{}, err
	}
	i := songIndex(doc, songID)
	if i < 0 {
		return model.Song{}, notFound("song", songID)
	}
	return doc.Songs[i], nil
}

// SongsByUploader возвращает песни, загруженные пользователем.
func (l *Library) SongsByUploader(ctx context.Context, userID string) ([]model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(doc.Songs, func(s model.Song, _ int) bool { return s.UploadedBy == userID }), nil
}

// SearchSongs ищет подстроку в названии или исполнителе без учёта регистра.
// Пустой запрос возвращает все песни.
func (l *Library) SearchSongs(ctx context.Context, query string) ([]model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return doc.Songs, nil
	}
	return lo.Filter(doc.Songs, func(s model.Song, _ int) bool {
		return strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Artist), q)
	}), nil
}

// nextSongID выдаёт ID больше любого уже существующего.
func (l *Library) nextSongID(doc *model.Document) int64 {
	id := l.clock.next(l.nowMillis())
	maxID := lo.MaxBy(doc.Songs, func(a, b model.Song) bool { return a.ID > b.ID }).ID
	if id <= maxID {
		id = l.clock.next(maxID + 1)
	}
	return id
}

// checkOwnRefs запрещает песне ссылаться на блобы другой песни:
// иначе её правка или удаление уничтожили бы чужие данные.
func checkOwnRefs(song model.Song) error {
	if key, ok := model.BlobKey(song.File); ok && key != model.AudioKey(song.ID) {
		return validation("song %d cannot reference audio blob %s", song.ID, key)
	}
	if key, ok := model.BlobKey(song.Art); ok && key != model.ArtKey(song.ID) {
		return validation("song %d cannot reference art blob %s", song.ID, key)
	}
	return nil
}

func ownsBlob(songID int64, key string) bool {
	return key == model.AudioKey(songID) || key == model.ArtKey(songID)
}

func songIndex(doc *model.Document, id int64) int {
	_, i, _ := lo.FindIndexOf(doc.Songs, func(s model.Song) bool { return s.ID == id })
	return i
}

func songExists(doc *model.Document, id int64) bool {
	return songIndex(doc, id) >= 0
}
