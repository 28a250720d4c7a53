package media

import (
	"SmartMusic/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrMediaFault - медиа не удалось получить или открыть.
var ErrMediaFault = errors.New("media fault")

// BlobSource - источник содержимого блобов (repo.BlobRepository).
type BlobSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Resolver превращает ссылки песен в локаторы, пригодные для воспроизведения.
type Resolver struct {
	blobs  BlobSource
	reg    *Registry
	client *http.Client
	logger *zap.SugaredLogger
}

func NewResolver(blobs BlobSource, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{
		blobs:  blobs,
		reg:    NewRegistry(),
		client: http.DefaultClient,
		logger: logger,
	}
}

// Registry возвращает реестр выданных URL (нужен HTTP-обработчику).
func (r *Resolver) Registry() *Registry {
	return r.reg
}

// Resolve возвращает локатор для ссылки.
// local:<key> читается из хранилища и регистрируется под новым URL; остальные ссылки возвращаются как есть.
// При ошибке чтения или пустом блобе возвращается "" и ошибка ErrMediaFault.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	key, ok := model.BlobKey(ref)
	if !ok {
		return ref, nil
	}
	data, err := r.blobs.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: load blob %s: %w", ErrMediaFault, key, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: blob %s is empty", ErrMediaFault, key)
	}
	return r.reg.Mint(key, data), nil
}

// Release освобождает выданный URL. Прочие локаторы игнорируются.
func (r *Resolver) Release(locator string) {
	if strings.HasPrefix(locator, URLPrefix) {
		r.reg.Revoke(locator)
	}
}

// Invalidate освобождает все URL блоба key. Вызывается, когда блоб изменён или удалён.
func (r *Resolver) Invalidate(key string) {
	if n := r.reg.RevokeKey(key); n > 0 {
		r.logger.Debugw("media locators revoked", "key", key, "count", n)
	}
}

// Open открывает локатор на чтение: выданный URL, файл (file:// или путь) или http(s).
func (r *Resolver) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	switch {
	case locator == "":
		return nil, fmt.Errorf("%w: empty locator", ErrMediaFault)
	case strings.HasPrefix(locator, URLPrefix):
		data, ok := r.reg.Lookup(locator)
		if !ok {
			return nil, fmt.Errorf("%w: %s was released", ErrMediaFault, locator)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return r.openHTTP(ctx, locator)
	case strings.HasPrefix(locator, "file://"):
		u, err := url.Parse(locator)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMediaFault, err)
		}
		return openFile(u.Path)
	default:
		return openFile(locator)
	}
}

func (r *Resolver) openHTTP(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaFault, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaFault, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %s", ErrMediaFault, locator, resp.Status)
	}
	return resp.Body, nil
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaFault, err)
	}
	return f, nil
}
