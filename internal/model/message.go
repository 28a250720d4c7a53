package model

// Message - личное сообщение между двумя пользователями.
type Message struct {
	ID        string `json:"id"`
	FromID    string `json:"fromId"`
	ToID      string `json:"toId"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"` // unix ms
}
