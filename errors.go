package vorgaben

import (
	"errors"

	"github.com/alnah/go-vorgaben/internal/render"
)

// Sentinel errors for library operations.
var (
	// ErrFatalPrecondition wraps every failure that aborts an import before
	// parsing or persistence.
	ErrFatalPrecondition = errors.New("import precondition failed")

	ErrSourceNotFound      = errors.New("import file not found")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrInvalidMetadata     = errors.New("invalid document metadata")
	ErrDroppedContent      = errors.New("content outside of any section")
	ErrStore               = errors.New("store operation failed")
	ErrDocumentNotFound    = errors.New("document not found")

	// Rendering and export errors.
	ErrMalformedTable  = render.ErrMalformedTable
	ErrHTMLConversion  = render.ErrHTMLConversion
	ErrTemplateRender  = errors.New("template rendering failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrPoolClosed      = errors.New("renderer pool closed")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrInvalidDocument = errors.New("invalid document")
)
