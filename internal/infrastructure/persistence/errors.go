package persistence

import (
	"errors"

	"github.com/opsease/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps unique-constraint violations, which gorm reports
// as ErrDuplicatedKey when TranslateError is on, to shared.ErrAlreadyExists.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
