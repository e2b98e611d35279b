package vessel

import (
	"context"
	"fmt"
	"os"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/engine"
)

// formatSpec pins down which capsule versions an engine speaks.
type formatSpec struct {
	readsV2  bool
	writesV2 bool
}

// vesselEngine carries the open flag and the catalog cache; the file itself
// is re-read per operation, so the only state worth invalidating is the
// catalog.
type vesselEngine struct {
	name    string
	source  string
	spec    formatSpec
	opened  bool
	catalog *csapi.Catalog
}

func newEngine(name string, source string, spec formatSpec) *vesselEngine {
	return &vesselEngine{
		name:   name,
		source: source,
		spec:   spec,
	}
}

func (e *vesselEngine) Name() string { return e.name }

func (e *vesselEngine) Source() string { return e.source }

// Open takes the handle.  A missing source is fine here: a vessel springs
// into being on the first write.  Existing content must decode and hold a
// version this engine speaks.
//
// Errors:
//
//    - cistern-error-already-open -- when this engine instance is already open
//    - cistern-error-source-unavailable -- when the source exists but cannot be read
//    - cistern-error-version-unsupported -- when the source holds a capsule version this engine does not speak
func (e *vesselEngine) Open(ctx context.Context) error {
	if e.opened {
		return csapi.ErrorAlreadyOpen(e.source, "this engine instance already holds the handle")
	}
	if _, err := os.Stat(e.source); err != nil {
		if os.IsNotExist(err) {
			e.opened = true
			return nil
		}
		return csapi.ErrorSourceUnavailable(e.source, err)
	}
	if _, err := e.load(); err != nil {
		return err
	}
	e.opened = true
	return nil
}

// Close releases the handle and drops the catalog cache.  Closing a closed
// engine is a no-op.
//
// Errors: none -- this implementation has nothing to flush.
func (e *vesselEngine) Close() error {
	e.opened = false
	e.catalog = nil
	return nil
}

func (e *vesselEngine) IsOpen() bool { return e.opened }

// ReadCatalog reads the dataset catalog from the source file, refreshing
// the cache served by Catalog.
//
// Errors:
//
//    - cistern-error-closed -- when the engine is not open
//    - cistern-error-source-unavailable -- when the source file cannot be read
//    - cistern-error-version-unsupported -- when the source holds a capsule version this engine does not speak
//    - cistern-error-path-malformed -- when the source names a dataset by an unparsable path
func (e *vesselEngine) ReadCatalog(ctx context.Context) (*csapi.Catalog, error) {
	if !e.opened {
		return nil, csapi.ErrorClosed("read catalog", e.source)
	}
	model, err := e.load()
	if err != nil {
		return nil, err
	}
	collection, err := csapi.ParsePathCollection(model.Datasets.Keys...)
	if err != nil {
		return nil, err
	}
	catalog := csapi.NewCatalog(e.source, collection)
	e.catalog = &catalog
	return &catalog, nil
}

// Catalog serves the cached catalog, reading it first if no read has
// happened since open or since the last write.
//
// Errors:
//
//    - cistern-error-closed -- when the engine is not open
//    - cistern-error-source-unavailable -- when the source file cannot be read
//    - cistern-error-version-unsupported -- when the source holds a capsule version this engine does not speak
//    - cistern-error-path-malformed -- when the source names a dataset by an unparsable path
func (e *vesselEngine) Catalog(ctx context.Context) (*csapi.Catalog, error) {
	if !e.opened {
		return nil, csapi.ErrorClosed("read catalog", e.source)
	}
	if e.catalog != nil {
		return e.catalog, nil
	}
	return e.ReadCatalog(ctx)
}

// ReadSeries reads the dataset stored at one concrete path.
//
// Errors:
//
//    - cistern-error-closed -- when the engine is not open
//    - cistern-error-path-ambiguous -- when the path carries pattern syntax
//    - cistern-error-path-not-found -- when the source has no dataset at the path
//    - cistern-error-validation -- when the stored record does not rebuild into a valid series
//    - cistern-error-source-unavailable -- when the source file cannot be read
//    - cistern-error-version-unsupported -- when the source holds a capsule version this engine does not speak
func (e *vesselEngine) ReadSeries(ctx context.Context, path csapi.DatasetPath) (*csapi.RegularTimeseries, error) {
	if !e.opened {
		return nil, csapi.ErrorClosed("read series", e.source)
	}
	if path.HasAnyWildcard() {
		return nil, csapi.ErrorPathAmbiguous(path.String(), "series reads take one concrete path")
	}
	model, err := e.load()
	if err != nil {
		return nil, err
	}
	rec, ok := model.Get(path.String())
	if !ok {
		return nil, csapi.ErrorPathNotFound(path.String(), e.source)
	}
	return rec.ToSeries(path.String())
}

// WriteSeries stores the series under one concrete path, overwriting any
// dataset already there and invalidating the catalog cache.  Writing to a
// source that does not exist yet creates it.
//
// Errors:
//
//    - cistern-error-closed -- when the engine is not open
//    - cistern-error-path-ambiguous -- when the path carries pattern syntax
//    - cistern-error-version-unsupported -- when this engine's capsule version cannot represent the series, or the source holds a version it does not speak
//    - cistern-error-source-unavailable -- when the source file cannot be read
//    - cistern-error-io -- when writing the source file fails
//    - cistern-error-serialization -- when the capsule does not encode
func (e *vesselEngine) WriteSeries(ctx context.Context, path csapi.DatasetPath, rts *csapi.RegularTimeseries) error {
	if !e.opened {
		return csapi.ErrorClosed("write series", e.source)
	}
	if path.HasAnyWildcard() {
		return csapi.ErrorPathAmbiguous(path.String(), "series writes take one concrete path")
	}
	if !e.spec.writesV2 {
		if rts.Interval.IsIrregular() {
			return csapi.ErrorVersionUnsupported(e.source,
				fmt.Sprintf("vessel.v1 cannot represent irregular interval %q", rts.Interval.String()))
		}
		if !rts.PeriodType.IsStandard() {
			return csapi.ErrorVersionUnsupported(e.source,
				fmt.Sprintf("vessel.v1 cannot represent period type %q", rts.PeriodType))
		}
	}
	model, err := e.loadOrEmpty()
	if err != nil {
		return err
	}
	model.Put(path.String(), csapi.RecordFromSeries(rts))
	if err := e.save(model); err != nil {
		return err
	}
	e.catalog = nil
	return nil
}

// load reads the source and unwraps the capsule into the working model.
func (e *vesselEngine) load() (*csapi.Vessel, error) {
	capsule, err := Load(e.source)
	if err != nil {
		return nil, err
	}
	if capsule.VesselV2 != nil && !e.spec.readsV2 {
		return nil, csapi.ErrorVersionUnsupported(e.source,
			fmt.Sprintf("file holds a %s capsule; the %s engine speaks only vessel.v1", capsule.Version(), e.name))
	}
	if capsule.VesselV2 != nil {
		return &csapi.Vessel{Datasets: capsule.VesselV2.Datasets}, nil
	}
	return capsule.Vessel, nil
}

// loadOrEmpty is load, except a source that does not exist yet reads as an
// empty model rather than an error.
func (e *vesselEngine) loadOrEmpty() (*csapi.Vessel, error) {
	if _, err := os.Stat(e.source); os.IsNotExist(err) {
		return &csapi.Vessel{}, nil
	}
	return e.load()
}

// save renders the working model into this engine's capsule version and
// writes it out.
func (e *vesselEngine) save(model *csapi.Vessel) error {
	capsule := csapi.VesselCapsule{}
	if e.spec.writesV2 {
		v2 := &csapi.VesselV2{}
		for _, key := range model.Datasets.Keys {
			v2.Put(key, model.Datasets.Values[key])
		}
		capsule.VesselV2 = v2
	} else {
		capsule.Vessel = model
	}
	return Save(e.source, &capsule)
}

var _ engine.Engine = (*vesselEngine)(nil)
