package fs

import (
	"SmartMusic/internal/cli/repo"
	"errors"
	"os"
	"path/filepath"
)

// ErrNoSession - файл сессии отсутствует или пуст.
var ErrNoSession = errors.New("no active session")

// SessionFSStore - файловое хранилище токена сессии и последнего email для CLI.
// Path указывает на файл токена, email хранится рядом в last_login.
type SessionFSStore struct {
	Path string
}

var (
	_ repo.TokenStore       = SessionFSStore{}
	_ repo.UserContextStore = SessionFSStore{}
)

func (s SessionFSStore) lastLoginPath() string {
	return filepath.Join(filepath.Dir(s.Path), "last_login")
}

func (s SessionFSStore) write(p string, data string) error {
	if s.Path == "" {
		return errors.New("session file path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(data), 0o600)
}

// Save сохраняет токен сессии в файл.
func (s SessionFSStore) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	return s.write(s.Path, token)
}

// Load читает токен сессии. Отсутствующий или пустой файл - ErrNoSession.
func (s SessionFSStore) Load() (string, error) {
	return readTrimmed(s.Path)
}

// Clear удаляет токен; отсутствие файла ошибкой не считается.
func (s SessionFSStore) Clear() error {
	if s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveLogin запоминает email последнего входа.
func (s SessionFSStore) SaveLogin(email string) error {
	if email == "" {
		return errors.New("empty login")
	}
	return s.write(s.lastLoginPath(), email)
}

// LoadLogin читает email последнего входа.
func (s SessionFSStore) LoadLogin() (string, error) {
	return readTrimmed(s.lastLoginPath())
}

func readTrimmed(p string) (string, error) {
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	for len(b) > 0 {
		c := b[len(b)-1]
		if c == '\n' || c == '\r' || c == ' ' || c == '\t' {
			b = b[:len(b)-1]
			continue
		}
		break
	}
	if len(b) == 0 {
		return "", ErrNoSession
	}
	return string(b), nil
}
