package engine

import (
	"context"

	"github.com/hydrotools/cistern/csapi"
)

// Engine is the capability contract a storage backend satisfies.
// One engine instance is bound to one source file for its whole life;
// the binding is chosen by registry name, never sniffed from file bytes.
//
// Engines translate every backend failure into the cistern error taxonomy
// before returning it; no backend-specific error value escapes this
// interface. Paths given to ReadSeries and WriteSeries are concrete:
// pattern resolution happens a layer up, in the session.
type Engine interface {
	// Name reports the registry name this engine is known by.
	Name() string

	// Source reports the file this engine is bound to.
	Source() string

	// Open takes the handle on the source file.
	//
	// Errors:
	//
	// 	- cistern-error-already-open -- when this engine already holds an open handle
	// 	- cistern-error-source-unavailable -- when the source file cannot be read
	// 	- cistern-error-version-unsupported -- when the source holds a container version this engine does not speak
	// 	- cistern-error-serialization -- when the source cannot be decoded
	Open(ctx context.Context) error

	// Close releases the handle. Closing a closed engine is a no-op.
	//
	// Errors:
	//
	// 	- cistern-error-io -- when releasing the handle fails
	Close() error

	// IsOpen reports whether the engine holds an open handle.
	IsOpen() bool

	// ReadCatalog reads the full dataset catalog from the source,
	// refreshing the cached copy that Catalog serves.
	//
	// Errors:
	//
	// 	- cistern-error-closed -- when the engine is not open
	// 	- cistern-error-source-unavailable -- when the source file cannot be read
	// 	- cistern-error-version-unsupported -- when the source holds a container version this engine does not speak
	// 	- cistern-error-path-malformed -- when the source names a dataset by an unparsable path
	ReadCatalog(ctx context.Context) (*csapi.Catalog, error)

	// Catalog serves the cached catalog, reading it first if no read has
	// happened since open or since the last write.
	//
	// Errors:
	//
	// 	- cistern-error-closed -- when the engine is not open
	// 	- cistern-error-source-unavailable -- when the source file cannot be read
	// 	- cistern-error-version-unsupported -- when the source holds a container version this engine does not speak
	// 	- cistern-error-path-malformed -- when the source names a dataset by an unparsable path
	Catalog(ctx context.Context) (*csapi.Catalog, error)

	// ReadSeries reads the dataset stored at one concrete path.
	//
	// Errors:
	//
	// 	- cistern-error-closed -- when the engine is not open
	// 	- cistern-error-path-ambiguous -- when the path carries pattern syntax
	// 	- cistern-error-path-not-found -- when the source has no dataset at the path
	// 	- cistern-error-validation -- when the stored record does not rebuild into a valid series
	// 	- cistern-error-source-unavailable -- when the source file cannot be read
	// 	- cistern-error-version-unsupported -- when the source holds a container version this engine does not speak
	ReadSeries(ctx context.Context, path csapi.DatasetPath) (*csapi.RegularTimeseries, error)

	// WriteSeries stores a series under one concrete path, invalidating
	// the catalog cache.
	//
	// Errors:
	//
	// 	- cistern-error-closed -- when the engine is not open
	// 	- cistern-error-path-ambiguous -- when the path carries pattern syntax
	// 	- cistern-error-version-unsupported -- when the engine's container version cannot represent the series
	// 	- cistern-error-source-unavailable -- when the source file cannot be read
	// 	- cistern-error-io -- when writing the source file fails
	// 	- cistern-error-serialization -- when the series does not encode
	WriteSeries(ctx context.Context, path csapi.DatasetPath, rts *csapi.RegularTimeseries) error
}

// Factory binds an engine implementation to one source file.
// Construction performs no IO; Open does.
type Factory func(source string) Engine
