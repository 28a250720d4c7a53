package model

import (
	"strconv"
	"strings"
)

// NewSongID - значение ID, означающее «новая песня, ID ещё не назначен».
const NewSongID int64 = -1

// LocalPrefix помечает ссылку на медиа, которое лежит в хранилище блобов.
const LocalPrefix = "local:"

// Song - метаданные трека. File и Art содержат либо внешний адрес, либо "local:<key>".
type Song struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	File       string `json:"file"`
	Art        string `json:"art"`
	UploadedBy string `json:"uploadedBy,omitempty"`
}

// AudioKey returns the blob key of the song's audio payload.
func AudioKey(songID int64) string { return "audio_" + strconv.FormatInt(songID, 10) }

// ArtKey returns the blob key of the song's cover art.
func ArtKey(songID int64) string { return "art_" + strconv.FormatInt(songID, 10) }

// LocalRef builds a local media reference for a blob key.
func LocalRef(key string) string { return LocalPrefix + key }

// BlobKey extracts the blob key from a local reference.
func BlobKey(ref string) (string, bool) {
	key, ok := strings.CutPrefix(ref, LocalPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// BlobKeys returns the blob keys the song references (audio first).
func (s Song) BlobKeys() []string {
	var keys []string
	if k, ok := BlobKey(s.File); ok {
		keys = append(keys, k)
	}
	if k, ok := BlobKey(s.Art); ok {
		keys = append(keys, k)
	}
	return keys
}
