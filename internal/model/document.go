package model

// Document - единый документ метаданных. Сериализуется целиком при каждой мутации.
type Document struct {
	Users     []User     `json:"users"`
	Playlists []Playlist `json:"playlists"`
	Likes     []Like     `json:"likes"`
	Songs     []Song     `json:"songs"`
	Messages  []Message  `json:"messages"`

	// Version - версия строки в хранилище, с которой документ был прочитан.
	Version int64 `json:"-"`
}

// NewDocument returns an empty document holding only the given users.
func NewDocument(users ...User) *Document {
	d := &Document{
		Users:     append([]User{}, users...),
		Playlists: []Playlist{},
		Likes:     []Like{},
		Songs:     []Song{},
		Messages:  []Message{},
	}
	return d
}

// Normalize replaces nil collections with empty ones so that a decoded
// document compares equal to a freshly built one.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Playlists == nil {
		d.Playlists = []Playlist{}
	}
	if d.Likes == nil {
		d.Likes = []Like{}
	}
	if d.Songs == nil {
		d.Songs = []Song{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	for i := range d.Playlists {
		if d.Playlists[i].Songs == nil {
			d.Playlists[i].Songs = []int64{}
		}
	}
}
