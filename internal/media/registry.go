package media

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// URLPrefix - префикс локаторов, выданных реестром. Действительны только в текущем процессе.
const URLPrefix = "blob:smartmusic/"

type entry struct {
	key  string
	data []byte
}

// Registry хранит содержимое блобов под выданными URL, пока их не отзовут.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	byKey   map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
		byKey:   make(map[string]map[string]struct{}),
	}
}

// Mint регистрирует содержимое блоба key и возвращает новый URL.
func (r *Registry) Mint(key string, data []byte) string {
	id := uuid.NewString()
	url := URLPrefix + id

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry{key: key, data: data}
	if r.byKey[key] == nil {
		r.byKey[key] = make(map[string]struct{})
	}
	r.byKey[key][id] = struct{}{}
	return url
}

// Lookup возвращает содержимое по URL или по голому идентификатору.
func (r *Registry) Lookup(url string) ([]byte, bool) {
	id := strings.TrimPrefix(url, URLPrefix)
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e.data, ok
}

// Revoke освобождает URL. Неизвестный URL игнорируется.
func (r *Registry) Revoke(url string) {
	id := strings.TrimPrefix(url, URLPrefix)
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return
	}
	delete(r.entries, id)
	if ids := r.byKey[e.key]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byKey, e.key)
		}
	}
}

// RevokeKey освобождает все URL, выданные для блоба key. Возвращает их число.
func (r *Registry) RevokeKey(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byKey[key]
	for id := range ids {
		delete(r.entries, id)
	}
	delete(r.byKey, key)
	return len(ids)
}

// Len - число действующих URL.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
