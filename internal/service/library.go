package service

import (
	"SmartMusic/internal/model"
	"SmartMusic/internal/repo"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobInvalidator получает уведомление, когда блоб под ключом изменён или удалён.
type BlobInvalidator interface {
	Invalidate(key string)
}

// Library - единственная точка доступа к метаданным и блобам.
// Все мутации проходят через update: один писатель и одна транзакция на документ и блобы.
type Library struct {
	store  repo.Storage
	media  BlobInvalidator
	logger *zap.SugaredLogger

	mu    sync.Mutex
	now   func() time.Time
	clock idClock
}

// NewLibrary создаёт фасад. media может быть nil.
func NewLibrary(store repo.Storage, media BlobInvalidator, logger *zap.SugaredLogger) *Library {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Library{
		store:  store,
		media:  media,
		logger: logger,
		now:    time.Now,
	}
}

// txn - состояние одной мутации: документ, блобы в той же транзакции и затронутые ключи.
type txn struct {
	ctx     context.Context
	doc     *model.Document
	blobs   repo.BlobRepository
	touched []string
}

func (t *txn) putBlob(key string, data []byte) error {
	if err := t.blobs.Put(t.ctx, key, data); err != nil {
		return storageFault(err)
	}
	t.touched = append(t.touched, key)
	return nil
}

func (t *txn) removeBlob(key string) error {
	if err := t.blobs.Remove(t.ctx, key); err != nil {
		return storageFault(err)
	}
	t.touched = append(t.touched, key)
	return nil
}

// view читает текущий документ.
func (l *Library) view(ctx context.Context) (*model.Document, error) {
	doc, err := l.store.Documents().Load(ctx)
	if err != nil {
		return nil, storageFault(err)
	}
	return doc, nil
}

// update выполняет read-modify-write документа под мьютексом в одной транзакции хранилища.
// Ошибка fn или хранилища откатывает и документ, и блобы.
func (l *Library) update(ctx context.Context, fn func(t *txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var touched []string
	err := l.store.Atomic(ctx, func(tx repo.Storage) error {
		doc, err := tx.Documents().Load(ctx)
		if err != nil {
			return storageFault(err)
		}
		t := &txn{ctx: ctx, doc: doc, blobs: tx.Blobs()}
		if err := fn(t); err != nil {
			return err
		}
		if err := tx.Documents().Save(ctx, doc); err != nil {
			return storageFault(err)
		}
		touched = t.touched
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if l.media != nil {
		for _, key := range touched {
			l.media.Invalidate(key)
		}
	}
	return nil
}

func (l *Library) nowMillis() int64 {
	return l.now().UnixMilli()
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// idClock выдаёт строго возрастающие ID на основе времени в миллисекундах.
type idClock struct {
	mu   sync.Mutex
	last int64
}

func (c *idClock) next(nowMillis int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if nowMillis <= c.last {
		nowMillis = c.last + 1
	}
	c.last = nowMillis
	return nowMillis
}
