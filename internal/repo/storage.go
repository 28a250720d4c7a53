package repo

import (
	"SmartMusic/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrBlobNotFound - блоба с таким ключом нет.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrVersionConflict - документ был перезаписан после чтения.
	ErrVersionConflict = errors.New("document version conflict")
)

// SeedFunc строит начальный документ для пустого хранилища.
type SeedFunc func() (*model.Document, error)

// DocumentRepository - хранилище единого документа метаданных.
type DocumentRepository interface {
	// Load возвращает документ; если его нет - создаёт начальный через SeedFunc и сохраняет.
	Load(ctx context.Context) (*model.Document, error)
	// Save перезаписывает документ целиком. Проверяет версию, с которой документ был прочитан.
	Save(ctx context.Context, doc *model.Document) error
}

// BlobRepository - хранилище бинарного содержимого по ключу.
type BlobRepository interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get возвращает содержимое или ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Remove удаляет блоб; отсутствие ключа не ошибка.
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Storage объединяет оба хранилища и даёт атомарную единицу работы над ними.
type Storage interface {
	Documents() DocumentRepository
	Blobs() BlobRepository
	// Atomic выполняет fn в одной транзакции; ошибка fn откатывает все изменения.
	Atomic(ctx context.Context, fn func(tx Storage) error) error
}

type gormStorage struct {
	db     *gorm.DB
	docKey string
	seed   SeedFunc
}

// NewStorage создаёт Storage поверх gorm (SQLite или PostgreSQL).
func NewStorage(db *gorm.DB, docKey string, seed SeedFunc) Storage {
	return &gormStorage{db: db, docKey: docKey, seed: seed}
}

func (s *gormStorage) Documents() DocumentRepository {
	return NewDocumentRepository(s.db, s.docKey, s.seed)
}

func (s *gormStorage) Blobs() BlobRepository {
	return NewBlobRepository(s.db)
}

func (s *gormStorage) Atomic(ctx context.Context, fn func(tx Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStorage{db: tx, docKey: s.docKey, seed: s.seed})
	})
}
