package vorgaben

import (
	"errors"
	"fmt"

	"github.com/alnah/go-vorgaben/internal/fileutil"
)

// ReadSource reads an import file. A missing file is a fatal precondition.
func ReadSource(path string) (string, error) {
	text, err := fileutil.ReadText(path)
	if err != nil {
		if errors.Is(err, fileutil.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %w: %s", ErrFatalPrecondition, ErrSourceNotFound, path)
		}
		return "", fmt.Errorf("%w: %w", ErrFatalPrecondition, err)
	}
	return text, nil
}
