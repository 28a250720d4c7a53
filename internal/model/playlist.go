package model

// Playlist - пользовательский плейлист; Songs хранит ID песен в порядке добавления.
type Playlist struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	Songs     []int64 `json:"songs"`
	CreatedAt int64   `json:"createdAt"` // unix ms
}

// Like - связь пользователь/песня.
type Like struct {
	UserID string `json:"userId"`
	SongID int64  `json:"songId"`
}
