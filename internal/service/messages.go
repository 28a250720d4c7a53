package service

import (
	"SmartMusic/internal/model"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// SendMessage отправляет сообщение. Время отправки не меньше времени предыдущего сообщения.
func (l *Library) SendMessage(ctx context.Context, fromID, toID, content string) (model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return model.Message{}, validation("message content is required")
	}
	if fromID == toID {
		return model.Message{}, validation("cannot message yourself")
	}
	var msg model.Message
	err := l.update(ctx, func(t *txn) error {
		if userIndex(t.doc, fromID) < 0 {
			return notFound("user", fromID)
		}
		if userIndex(t.doc, toID) < 0 {
			return notFound("user", toID)
		}
		ts := l.nowMillis()
		if n := len(t.doc.Messages); n > 0 && t.doc.Messages[n-1].Timestamp > ts {
			ts = t.doc.Messages[n-1].Timestamp
		}
		msg = model.Message{
			ID:        newID(),
			FromID:    fromID,
			ToID:      toID,
			Content:   content,
			Timestamp: ts,
		}
		t.doc.Messages = append(t.doc.Messages, msg)
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// MarkMessagesAsRead помечает прочитанными сообщения от fromID к readerID.
// Возвращает число изменённых сообщений; другие диалоги не затрагиваются.
func (l *Library) MarkMessagesAsRead(ctx context.Context, readerID, fromID string) (int, error) {
	var changed int
	err := l.update(ctx, func(t *txn) error {
		changed = 0
		for i := range t.doc.Messages {
			m := &t.doc.Messages[i]
			if m.ToID == readerID && m.FromID == fromID && !m.Read {
				m.Read = true
				changed++
			}
		}
		if changed == 0 {
			return errUnchanged
		}
		return nil
	})
	return changed, err
}

// ChatHistory возвращает переписку двух пользователей по возрастанию времени.
func (l *Library) ChatHistory(ctx context.Context, userA, userB string) ([]model.Message, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	history := lo.Filter(doc.Messages, func(m model.Message, _ int) bool {
		return (m.FromID == userA && m.ToID == userB) || (m.FromID == userB && m.ToID == userA)
	})
	slices.SortStableFunc(history, func(a, b model.Message) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return history, nil
}

// UnreadCount - число непрочитанных входящих сообщений пользователя.
func (l *Library) UnreadCount(ctx context.Context, userID string) (int, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return 0, err
	}
	return lo.CountBy(doc.Messages, func(m model.Message) bool { return m.ToID == userID && !m.Read }), nil
}

// Conversations возвращает собеседников пользователя в порядке списка пользователей.
func (l *Library) Conversations(ctx context.Context, userID string) ([]model.PublicUser, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	partners := make(map[string]struct{})
	for _, m := range doc.Messages {
		switch userID {
		case m.FromID:
			partners[m.ToID] = struct{}{}
		case m.ToID:
			partners[m.FromID] = struct{}{}
		}
	}
	users := lo.Filter(doc.Users, func(u model.User, _ int) bool {
		_, ok := partners[u.ID]
		return ok
	})
	return lo.Map(users, func(u model.User, _ int) model.PublicUser { return u.Public() }), nil
}
