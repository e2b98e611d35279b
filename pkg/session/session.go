// Package session wraps an engine in lifecycle management: open and
// close transitions, scoped acquisition with reference counting, a
// process-wide exclusivity table that keeps two sessions from holding
// the same source at once, and path resolution conveniences layered
// over the raw engine operations.
//
// A Session is not safe for concurrent use. The exclusivity table is.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/engine"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/tracing"
)

// The exclusivity table. One open session per source, process wide.
var (
	holdersMu sync.Mutex
	holders   = map[string]string{} // source -> holding session id
)

func claim(source, id string) error {
	holdersMu.Lock()
	defer holdersMu.Unlock()
	if holder, taken := holders[source]; taken {
		return csapi.ErrorAlreadyOpen(source, fmt.Sprintf("already held open by session %s", holder))
	}
	holders[source] = id
	return nil
}

func release(source, id string) {
	holdersMu.Lock()
	defer holdersMu.Unlock()
	if holders[source] == id {
		delete(holders, source)
	}
}

// Session binds an engine to a source and tracks whether it is open.
type Session struct {
	id    string
	eng   engine.Engine
	depth int // outstanding acquisitions; see Acquire.
}

// New binds a fresh session to the source using the named engine.
// The source path is resolved to an absolute path first, so two
// sessions reaching the same file by different spellings still
// collide in the exclusivity table.
//
// No IO happens until Open.
//
// Errors:
//
//    - cistern-error-engine-unknown -- when no engine is registered under engineName
//    - cistern-error-io -- when the source path cannot be made absolute
func New(engineName string, source string) (*Session, error) {
	fab, err := engine.Resolve(engineName)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, csapi.ErrorIo("resolving source path", source, err)
	}
	return &Session{
		id:  uuid.New().String(),
		eng: fab(abs),
	}, nil
}

// Id returns the session's unique identifier.
func (s *Session) Id() string {
	return s.id
}

// Source returns the absolute path of the source this session is bound to.
func (s *Session) Source() string {
	return s.eng.Source()
}

// EngineName returns the name of the engine this session drives.
func (s *Session) EngineName() string {
	return s.eng.Name()
}

// IsOpen reports whether the session is open.
func (s *Session) IsOpen() bool {
	return s.eng.IsOpen()
}

// Open claims the source in the exclusivity table and opens the engine.
//
// Errors:
//
//    - cistern-error-already-open -- when this session is already open,
//        or another session holds the same source
//    - cistern-error-source-unavailable -- when the source exists but cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
func (s *Session) Open(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, "session open", trace.WithAttributes(
		tracing.AttrSessionId(s.id),
		tracing.AttrEngine(s.eng.Name()),
		tracing.AttrSource(s.eng.Source()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	if s.eng.IsOpen() {
		return csapi.ErrorAlreadyOpen(s.eng.Source(), "session is already open")
	}
	if err := claim(s.eng.Source(), s.id); err != nil {
		return err
	}
	if err := s.eng.Open(ctx); err != nil {
		release(s.eng.Source(), s.id)
		return err
	}
	s.depth = 1
	logging.Ctx(ctx).Debug("session", "opened %s with the %s engine (session %s)",
		s.eng.Source(), s.eng.Name(), s.id)
	return nil
}

// Close closes the engine and frees the source in the exclusivity
// table. It zeroes any outstanding acquisition depth, so release
// functions handed out earlier become no-ops. Closing a closed
// session does nothing.
func (s *Session) Close() error {
	if !s.eng.IsOpen() {
		return nil
	}
	s.depth = 0
	err := s.eng.Close()
	release(s.eng.Source(), s.id)
	return err
}

// Acquire opens the session if it is closed, and in all cases returns
// a release function undoing exactly this acquisition. The session
// closes when the last outstanding acquisition releases; inner
// acquisitions just bump a depth count and reuse the open engine.
// An explicit Open counts as the first acquisition, so a borrow of an
// already-open session never closes it out from under its opener.
//
// The release function is idempotent. Errors from the engine close it
// triggers are discarded; callers that care about close errors should
// call Close themselves.
//
// Errors:
//
//    - cistern-error-already-open -- when another session holds the same source
//    - cistern-error-source-unavailable -- when the source exists but cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
func (s *Session) Acquire(ctx context.Context) (func(), error) {
	if !s.eng.IsOpen() {
		if err := s.Open(ctx); err != nil {
			return nil, err
		}
	} else {
		s.depth++
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if s.depth > 0 {
			s.depth--
		}
		if s.depth == 0 {
			s.Close()
		}
	}, nil
}

// ReadCatalog reads the catalog of every dataset in the source,
// freshly, optionally collapsing the date field of the returned paths.
//
// Errors:
//
//    - cistern-error-closed -- when the session is not open
//    - cistern-error-source-unavailable -- when the source cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
//    - cistern-error-path-malformed -- when the source holds a dataset path
//        that does not parse
func (s *Session) ReadCatalog(ctx context.Context, dropDate bool) (_ *csapi.Catalog, err error) {
	ctx, span := tracing.Start(ctx, "session read-catalog", trace.WithAttributes(
		tracing.AttrSessionId(s.id),
		tracing.AttrSource(s.eng.Source()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	if !s.eng.IsOpen() {
		return nil, csapi.ErrorClosed("read catalog", s.eng.Source())
	}
	cat, err := s.eng.ReadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if dropDate {
		collapsed := csapi.NewCatalog(cat.Source, cat.CollapseDates())
		return &collapsed, nil
	}
	return cat, nil
}

// Catalog returns the engine's cached catalog, reading it if no read
// has happened since the last write.
//
// Errors:
//
//    - cistern-error-closed -- when the session is not open
//    - cistern-error-source-unavailable -- when the source cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
//    - cistern-error-path-malformed -- when the source holds a dataset path
//        that does not parse
func (s *Session) Catalog(ctx context.Context) (*csapi.Catalog, error) {
	if !s.eng.IsOpen() {
		return nil, csapi.ErrorClosed("catalog", s.eng.Source())
	}
	return s.eng.Catalog(ctx)
}

// ResolvePath maps a pattern path to the single concrete dataset path
// it matches in the catalog. Concrete paths pass through untouched and
// cost no IO. Matching ignores the date field, the same way catalog
// searches do, so a pattern that is concrete everywhere but the date
// still resolves to the cataloged dated path.
//
// Errors:
//
//    - cistern-error-closed -- when the session is not open
//    - cistern-error-path-not-found -- when the pattern matches nothing
//    - cistern-error-path-ambiguous -- when the pattern matches several datasets
//    - cistern-error-path-malformed -- when a pattern field does not compile
//    - cistern-error-source-unavailable -- when the catalog read fails
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
func (s *Session) ResolvePath(ctx context.Context, path csapi.DatasetPath) (csapi.DatasetPath, error) {
	if !s.eng.IsOpen() {
		return csapi.DatasetPath{}, csapi.ErrorClosed("resolve path", s.eng.Source())
	}
	if !path.HasAnyWildcard() {
		return path, nil
	}
	cat, err := s.eng.Catalog(ctx)
	if err != nil {
		return csapi.DatasetPath{}, err
	}
	matches, err := cat.FindAll(path)
	if err != nil {
		return csapi.DatasetPath{}, err
	}
	switch matches.Len() {
	case 0:
		return csapi.DatasetPath{}, csapi.ErrorPathNotFound(path.String(), s.eng.Source())
	case 1:
		return matches.Paths()[0], nil
	}
	return csapi.DatasetPath{}, csapi.ErrorPathAmbiguous(path.String(),
		fmt.Sprintf("pattern matches %d datasets; exactly one is needed", matches.Len()),
		[2]string{"matches", fmt.Sprintf("%v", matches.Paths())},
	)
}

// ReadSeries reads one regular timeseries. A pattern path is resolved
// against the catalog first and must match exactly one dataset; see
// ResolvePath for the matching rules.
//
// Errors:
//
//    - cistern-error-closed -- when the session is not open
//    - cistern-error-path-not-found -- when the path or pattern matches no dataset
//    - cistern-error-path-ambiguous -- when the pattern matches several datasets
//    - cistern-error-path-malformed -- when a pattern field does not compile
//    - cistern-error-source-unavailable -- when the source cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        this session's engine does not speak
//    - cistern-error-validation -- when the stored record is internally inconsistent
func (s *Session) ReadSeries(ctx context.Context, path csapi.DatasetPath) (_ *csapi.RegularTimeseries, err error) {
	ctx, span := tracing.Start(ctx, "session read-series", trace.WithAttributes(
		tracing.AttrSessionId(s.id),
		tracing.AttrSource(s.eng.Source()),
		tracing.AttrPath(path.String()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	if !s.eng.IsOpen() {
		return nil, csapi.ErrorClosed("read series", s.eng.Source())
	}
	resolved, err := s.ResolvePath(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.eng.ReadSeries(ctx, resolved)
}

// WriteSeries stores one regular timeseries under a concrete path,
// overwriting any dataset already there. Patterns are refused; a write
// target must name exactly one dataset on its face.
//
// Errors:
//
//    - cistern-error-closed -- when the session is not open
//    - cistern-error-path-ambiguous -- when the path contains a pattern field
//    - cistern-error-source-unavailable -- when the source cannot be read back
//    - cistern-error-version-unsupported -- when the engine's format cannot
//        represent the series, or the source holds content it does not speak
//    - cistern-error-serialization -- when encoding the updated vessel fails
//    - cistern-error-io -- when writing the source fails
func (s *Session) WriteSeries(ctx context.Context, path csapi.DatasetPath, rts *csapi.RegularTimeseries) (err error) {
	ctx, span := tracing.Start(ctx, "session write-series", trace.WithAttributes(
		tracing.AttrSessionId(s.id),
		tracing.AttrSource(s.eng.Source()),
		tracing.AttrPath(path.String()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	if !s.eng.IsOpen() {
		return csapi.ErrorClosed("write series", s.eng.Source())
	}
	if path.HasAnyWildcard() {
		return csapi.ErrorPathAmbiguous(path.String(), "series writes take one concrete path")
	}
	logging.Ctx(ctx).Debug("session", "writing %d values to %s in %s",
		rts.Len(), path.String(), s.eng.Source())
	return s.eng.WriteSeries(ctx, path, rts)
}
