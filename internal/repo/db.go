package repo

import (
	"SmartMusic/internal/model"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает хранилище по строке подключения и выполняет миграции.
// postgres:// и postgresql:// открываются через драйвер PostgreSQL,
// всё остальное считается путём к файлу SQLite (или ":memory:").
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	var dial gorm.Dialector
	if isPostgres(dsn) {
		dial = postgres.Open(dsn)
	} else {
		sqliteDSN, err := sqliteDSN(dsn)
		if err != nil {
			return nil, err
		}
		// pure-Go драйвер modernc регистрируется под именем "sqlite"
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN}
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dsn == ":memory:" {
		// у каждого соединения своя in-memory БД, поэтому держим ровно одно
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&model.Snapshot{}, &model.Blob{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// sqliteDSN готовит DSN для modernc: создаёт каталог и выставляет busy_timeout.
func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?_pragma=busy_timeout(5000)", nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err
		}
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}
