package model

import "time"

// Blob - бинарное содержимое (аудио, обложка) по непрозрачному ключу.
type Blob struct {
	Key       string    `gorm:"column:blob_key;primaryKey"`
	Data      []byte    `gorm:"not null"`
	Size      int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Snapshot - строка с сериализованным документом метаданных.
type Snapshot struct {
	Key       string    `gorm:"column:doc_key;primaryKey"`
	Body      []byte    `gorm:"not null"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
