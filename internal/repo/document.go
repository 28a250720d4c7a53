package repo

import (
	"SmartMusic/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRepo struct {
	db   *gorm.DB
	key  string
	seed SeedFunc
}

// NewDocumentRepository создаёт репозиторий документа, хранящегося под ключом key.
func NewDocumentRepository(db *gorm.DB, key string, seed SeedFunc) DocumentRepository {
	if seed == nil {
		seed = func() (*model.Document, error) { return model.NewDocument(), nil }
	}
	return &documentRepo{db: db, key: key, seed: seed}
}

func (r *documentRepo) Load(ctx context.Context) (*model.Document, error) {
	var row model.Snapshot
	err := r.db.WithContext(ctx).Take(&row, "doc_key = ?", r.key).Error
	if err == nil {
		return decode(row)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Документа ещё нет - создаём начальный и сразу сохраняем
	doc, err := r.seed()
	if err != nil {
		return nil, fmt.Errorf("seed document: %w", err)
	}
	doc.Normalize()
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	row = model.Snapshot{Key: r.key, Body: body, Version: 1}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		// кто-то успел засеять раньше - читаем его версию
		if err := r.db.WithContext(ctx).Take(&row, "doc_key = ?", r.key).Error; err != nil {
			return nil, err
		}
		return decode(row)
	}
	doc.Version = 1
	return doc, nil
}

func (r *documentRepo) Save(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tx := r.db.WithContext(ctx).Model(&model.Snapshot{}).
		Where("doc_key = ? AND version = ?", r.key, doc.Version).
		Updates(map[string]any{
			"body":       body,
			"version":    doc.Version + 1,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 1 {
		doc.Version++
		return nil
	}

	// Ничего не обновили: либо строки нет вовсе, либо версия устарела
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Snapshot{}).Where("doc_key = ?", r.key).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrVersionConflict
	}
	row := model.Snapshot{Key: r.key, Body: body, Version: 1}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	doc.Version = 1
	return nil
}

func decode(row model.Snapshot) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(row.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	doc.Version = row.Version
	return &doc, nil
}
