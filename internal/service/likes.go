package service

import (
	"SmartMusic/internal/model"
	"context"

	"github.com/samber/lo"
)

// fakeLikePrefix помечает синтетические лайки, добавленные администратором.
const fakeLikePrefix = "fake_"

// ToggleLike ставит или снимает лайк. Возвращает true, если после вызова лайк стоит.
func (l *Library) ToggleLike(ctx context.Context, userID string, songID int64) (bool, error) {
	var liked bool
	err := l.update(ctx, func(t *txn) error {
		if userIndex(t.doc, userID) < 0 {
			return notFound("user", userID)
		}
		if !songExists(t.doc, songID) {
			return notFound("song", songID)
		}
		like := model.Like{UserID: userID, SongID: songID}
		if lo.Contains(t.doc.Likes, like) {
			t.doc.Likes = lo.Without(t.doc.Likes, like)
			liked = false
			return nil
		}
		t.doc.Likes = append(t.doc.Likes, like)
		liked = true
		return nil
	})
	return liked, err
}

// AddFakeLikes добавляет n синтетических лайков песне.
func (l *Library) AddFakeLikes(ctx context.Context, songID int64, n int) error {
	if n < 1 {
		return validation("like count must be positive, got %d", n)
	}
	err := l.update(ctx, func(t *txn) error {
		if !songExists(t.doc, songID) {
			return notFound("song", songID)
		}
		for i := 0; i < n; i++ {
			t.doc.Likes = append(t.doc.Likes, model.Like{UserID: fakeLikePrefix + newID(), SongID: songID})
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.logger.Infow("synthetic likes added", "song_id", songID, "count", n)
	return nil
}

// LikedSongIDs возвращает ID песен, которые лайкнул пользователь.
func (l *Library) LikedSongIDs(ctx context.Context, userID string) ([]int64, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	return likedIDs(doc, userID), nil
}

// LikedSongs возвращает песни, которые лайкнул пользователь, в порядке библиотеки.
func (l *Library) LikedSongs(ctx context.Context, userID string) ([]model.Song, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	ids := likedIDs(doc, userID)
	return lo.Filter(doc.Songs, func(s model.Song, _ int) bool { return lo.Contains(ids, s.ID) }), nil
}

// SongLikers возвращает реальных пользователей, лайкнувших песню. Синтетические лайки не учитываются.
func (l *Library) SongLikers(ctx context.Context, songID int64) ([]model.PublicUser, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	likers := lo.FilterMap(doc.Likes, func(lk model.Like, _ int) (string, bool) {
		return lk.UserID, lk.SongID == songID
	})
	users := lo.Filter(doc.Users, func(u model.User, _ int) bool { return lo.Contains(likers, u.ID) })
	return lo.Map(users, func(u model.User, _ int) model.PublicUser { return u.Public() }), nil
}

// LikeCount - число лайков песни вместе с синтетическими.
func (l *Library) LikeCount(ctx context.Context, songID int64) (int, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return 0, err
	}
	return lo.CountBy(doc.Likes, func(lk model.Like) bool { return lk.SongID == songID }), nil
}

func likedIDs(doc *model.Document, userID string) []int64 {
	return lo.FilterMap(doc.Likes, func(lk model.Like, _ int) (int64, bool) {
		return lk.SongID, lk.UserID == userID
	})
}
