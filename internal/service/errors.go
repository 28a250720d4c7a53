package service

import (
	"SmartMusic/internal/repo"
	"errors"
	"fmt"
)

// Типы ошибок фасада. Проверяются через errors.Is.
var (
	// Validation
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("already exists")

	// Authorization
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("account blocked")
	ErrForbidden          = errors.New("forbidden")

	// NotFound
	ErrNotFound = errors.New("not found")

	// StorageFault
	ErrStorageFault = errors.New("storage fault")
	ErrConflict     = errors.New("concurrent modification")
)

// errUnchanged возвращается из мутации, когда сохранять нечего: транзакция откатывается без ошибки.
var errUnchanged = errors.New("unchanged")

func storageFault(err error) error {
	if err == nil || errors.Is(err, ErrStorageFault) {
		return err
	}
	if errors.Is(err, repo.ErrVersionConflict) {
		return fmt.Errorf("%w: %w: %w", ErrStorageFault, ErrConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrStorageFault, err)
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}
