package docsite

import (
	"errors"

	"github.com/alnah/docsite/internal/compiler"
	"github.com/alnah/docsite/internal/components"
	"github.com/alnah/docsite/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyDocumentName = errors.New("document name cannot be empty")
	ErrMaterialize       = errors.New("component materialization failed")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrInvalidBaseDir    = errors.New("invalid base directory")

	// Conversion errors, re-exported from the pipeline.
	ErrHTMLConversion    = pipeline.ErrHTMLConversion
	ErrUnresolvableImage = pipeline.ErrUnresolvableImage

	// Compilation errors, re-exported from the compiler.
	ErrCompile          = compiler.ErrCompile
	ErrUnknownComponent = compiler.ErrUnknownComponent

	// Component storage errors.
	ErrComponentWrite  = components.ErrStoreWrite
	ErrInvalidStoreDir = components.ErrInvalidStoreDir
)
