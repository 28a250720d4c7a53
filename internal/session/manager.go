package session

import (
	"SmartMusic/internal/model"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval - период опроса непрочитанных сообщений.
const DefaultPollInterval = 5 * time.Second

// UnreadCounter - источник числа непрочитанных сообщений (service.Library).
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// Notifier показывает пользователю уведомление.
type Notifier interface {
	Notify(title, message string) error
}

// Manager держит активную сессию и фоновый опрос непрочитанных сообщений.
type Manager struct {
	counter  UnreadCounter
	notifier Notifier
	interval time.Duration
	logger   *zap.SugaredLogger

	mu     sync.Mutex
	user   *model.PublicUser
	unread int
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager создаёт менеджер сессий. notifier может быть nil.
func NewManager(counter UnreadCounter, notifier Notifier, interval time.Duration, logger *zap.SugaredLogger) *Manager {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{counter: counter, notifier: notifier, interval: interval, logger: logger}
}

// Start начинает сессию пользователя: сразу считает непрочитанные и запускает опрос.
// Предыдущая сессия завершается.
func (m *Manager) Start(ctx context.Context, user model.PublicUser) error {
	m.End()

	unread, err := m.counter.UnreadCount(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.user = &user
	m.unread = unread
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go m.poll(pollCtx, user.ID, done)
	m.logger.Infow("session started", "user_id", user.ID, "unread", unread)
	return nil
}

// End останавливает опрос и ждёт его завершения. Без активной сессии ничего не делает.
func (m *Manager) End() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.user = nil
	m.unread = 0
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// User возвращает пользователя активной сессии.
func (m *Manager) User() (model.PublicUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return model.PublicUser{}, false
	}
	return *m.user, true
}

// Unread - последнее известное число непрочитанных.
func (m *Manager) Unread() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread
}

func (m *Manager) poll(ctx context.Context, userID string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx, userID)
		}
	}
}

func (m *Manager) check(ctx context.Context, userID string) {
	n, err := m.counter.UnreadCount(ctx, userID)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warnw("unread poll failed", "user_id", userID, "error", err)
		}
		return
	}

	m.mu.Lock()
	if m.user == nil || m.user.ID != userID {
		m.mu.Unlock()
		return
	}
	prev := m.unread
	m.unread = n
	m.mu.Unlock()

	if n > prev && m.notifier != nil {
		msg := fmt.Sprintf("You have %d unread message(s)", n)
		if err := m.notifier.Notify("SmartMusic", msg); err != nil {
			m.logger.Warnw("notification failed", "error", err)
		}
	}
}
