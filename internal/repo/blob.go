package repo

import (
	"SmartMusic/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepository создаёт реализацию репозитория для Blob.
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepo{db: db}
}

// Put создаёт или перезаписывает блоб.
func (r *blobRepo) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("empty blob key")
	}
	if data == nil {
		data = []byte{}
	}
	b := &model.Blob{Key: key, Data: data, Size: int64(len(data))}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "size", "updated_at"}),
	}).Create(b).Error
}

func (r *blobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var b model.Blob
	err := r.db.WithContext(ctx).Take(&b, "blob_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

func (r *blobRepo) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("blob_key = ?", key).Delete(&model.Blob{}).Error
}

func (r *blobRepo) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.Blob{}).Order("blob_key").Pluck("blob_key", &keys).Error
	return keys, err
}
