package service

import (
	"SmartMusic/internal/model"
	"context"

	"github.com/samber/lo"
)

// ReconcileBlobs удаляет блобы, на которые не ссылается ни одна песня. Возвращает удалённые ключи.
func (l *Library) ReconcileBlobs(ctx context.Context) ([]string, error) {
	var removed []string
	err := l.update(ctx, func(t *txn) error {
		keys, err := t.blobs.Keys(ctx)
		if err != nil {
			return storageFault(err)
		}
		referenced := lo.FlatMap(t.doc.Songs, func(s model.Song, _ int) []string { return s.BlobKeys() })
		removed, _ = lo.Difference(keys, referenced)
		if len(removed) == 0 {
			return errUnchanged
		}
		for _, key := range removed {
			if err := t.removeBlob(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		l.logger.Infow("orphaned blobs removed", "count", len(removed))
	}
	return removed, nil
}
