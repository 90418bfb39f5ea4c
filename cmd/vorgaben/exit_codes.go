package main

import (
	"errors"
	"os"

	vorgaben "github.com/alnah/go-vorgaben"
	"github.com/alnah/go-vorgaben/internal/assets"
	"github.com/alnah/go-vorgaben/internal/config"
	"github.com/alnah/go-vorgaben/internal/dateutil"
	"github.com/alnah/go-vorgaben/internal/diagram"
	"github.com/alnah/go-vorgaben/internal/fileutil"
	"github.com/alnah/go-vorgaben/internal/logging"
	"github.com/alnah/go-vorgaben/internal/render"
	"github.com/alnah/go-vorgaben/internal/sqlstore"
)

// Exit codes for the vorgaben CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, metadata or import preconditions
	ExitIO      = 3 // File or database not readable/writable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, vorgaben.ErrBrowserConnect) ||
		errors.Is(err, vorgaben.ErrPageCreate) ||
		errors.Is(err, vorgaben.ErrPageLoad) ||
		errors.Is(err, vorgaben.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, vorgaben.ErrSourceNotFound) ||
		errors.Is(err, sqlstore.ErrOpen) ||
		errors.Is(err, sqlstore.ErrMigrate) ||
		errors.Is(err, fileutil.ErrFileNotFound) ||
		errors.Is(err, fileutil.ErrNotUTF8) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDate) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, logging.ErrUnknownLevel) ||
		errors.Is(err, logging.ErrUnknownFormat) ||
		errors.Is(err, render.ErrUnknownStyle) ||
		errors.Is(err, diagram.ErrInvalidToken) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, sqlstore.ErrEmptyName) ||
		errors.Is(err, vorgaben.ErrFatalPrecondition) ||
		errors.Is(err, vorgaben.ErrInvalidMetadata) ||
		errors.Is(err, vorgaben.ErrDroppedContent) ||
		errors.Is(err, vorgaben.ErrDocumentNotFound) {
		return ExitUsage
	}

	return ExitGeneral
}
