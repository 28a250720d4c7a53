package media

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Tags - то, что удалось достать из тегов аудиофайла.
type Tags struct {
	Title  string
	Artist string
	Album  string
	// Art - встроенная обложка, если есть.
	Art     []byte
	ArtMIME string
}

// ReadTags читает ID3/MP4/FLAC/OGG теги. Если тегов нет, название берётся из имени файла.
func ReadTags(r io.ReadSeeker, filename string) Tags {
	var t Tags
	if meta, err := tag.ReadFrom(r); err == nil {
		t.Title = strings.TrimSpace(meta.Title())
		t.Artist = strings.TrimSpace(meta.Artist())
		t.Album = strings.TrimSpace(meta.Album())
		if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
			t.Art = pic.Data
			t.ArtMIME = pic.MIMEType
		}
	}
	if t.Title == "" {
		base := filepath.Base(filename)
		t.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if t.Artist == "" {
		t.Artist = "Unknown"
	}
	return t
}
