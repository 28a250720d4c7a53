package commands

import (
	"SmartMusic/internal/config"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testConfig готовит конфиг клиента во временном каталоге:
// база, файл сессии и администратор admin@example.com / admin-pw.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DatabaseDSN:   filepath.Join(dir, "library.db"),
		DocKey:        config.DefaultDocKey,
		AuthSecret:    "test-secret",
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-pw",
		SessionFile:   filepath.Join(dir, "session"),
		PollInterval:  time.Hour,
		BlobMaxSizeMB: 1,
		DefaultVolume: 0.5,
		MediaAddr:     "127.0.0.1:0",
	}
}

// syncBuffer - буфер вывода, безопасный для записи из колбэков движка.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	buf := &syncBuffer{}
	Out = buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// run выполняет команду по имени и возвращает её вывод.
func run(t *testing.T, cfg *config.Config, name string, args ...string) (string, error) {
	t.Helper()
	c, ok := Get(name)
	require.True(t, ok, "command %s must be registered", name)
	var err error
	out := withStdoutCapture(t, func() {
		err = c.Run(context.Background(), cfg, args)
	})
	return out, err
}

// mustRun как run, но падает при ошибке.
func mustRun(t *testing.T, cfg *config.Config, name string, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, name, args...)
	require.NoError(t, err, "%s %s: %s", name, strings.Join(args, " "), out)
	return out
}

// withInput подменяет интерактивный ввод.
func withInput(t *testing.T, input string) {
	t.Helper()
	old := In
	In = io.Reader(strings.NewReader(input))
	t.Cleanup(func() { In = old })
}
