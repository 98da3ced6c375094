package report

import (
	"uncheckedscan/internal/core/errors"
	"uncheckedscan/internal/shared/util"
)

// WriteAtomic persists content at path. The file either holds the complete
// report or is left untouched.
func WriteAtomic(path, content string) error {
	if path == "" {
		return errors.New(errors.CodeValidationError, "report path must not be empty")
	}
	if err := util.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return errors.WrapPath(err, errors.CodeIO, "write report", path)
	}
	return nil
}
