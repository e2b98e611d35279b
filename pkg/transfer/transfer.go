// Package transfer moves series between sources in bulk: pattern reads
// that stream one series per catalog match, and ordered pairwise copies
// from one source to another. It composes sessions rather than engines,
// so all the path resolution and exclusivity rules hold here too.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/serum-errors/go-serum"
	"go.opentelemetry.io/otel/trace"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/session"
	"github.com/hydrotools/cistern/pkg/tracing"
)

// SeriesIter streams the series matched by a catalog pattern, one
// ReadSeries per advance. It is finite and cannot be restarted. The
// usual loop is:
//
//	for it.Next() {
//		use(it.Series())
//	}
//	if it.Err() != nil { ... }
//	it.Close()
//
// Next reads lazily, so a series written after the iterator was built
// is picked up if its path was already cataloged, and a source that
// vanishes mid-iteration surfaces as an error from Err.
type SeriesIter struct {
	ctx     context.Context
	ses     *session.Session
	release func()
	paths   []csapi.DatasetPath
	next    int
	cur     *csapi.RegularTimeseries
	err     error
}

// Next advances to the next matched series, reporting false when the
// matches are exhausted or a read failed. Exhaustion and failure both
// release the iterator's hold on the session; check Err to tell them
// apart.
func (it *SeriesIter) Next() bool {
	if it.err != nil || it.next >= len(it.paths) {
		it.Close()
		return false
	}
	rts, err := it.ses.ReadSeries(it.ctx, it.paths[it.next])
	it.next++
	if err != nil {
		it.err = err
		it.Close()
		return false
	}
	it.cur = rts
	return true
}

// Series returns the series the last successful Next advanced to.
func (it *SeriesIter) Series() *csapi.RegularTimeseries {
	return it.cur
}

// Err returns the error that stopped iteration, or nil after a clean
// exhaustion.
func (it *SeriesIter) Err() error {
	return it.err
}

// Close releases the iterator's hold on the session. The first call
// releases; later calls do nothing. A session the caller opened before
// building the iterator stays open.
func (it *SeriesIter) Close() {
	it.release()
}

// Remaining reports how many matches have not been read yet.
func (it *SeriesIter) Remaining() int {
	return len(it.paths) - it.next
}

// ReadMultiple opens a session on the source and streams every catalog
// entry matching the pattern, in canonical path order. Zero matches
// make an empty iterator, not an error. The iterator owns the session;
// exhausting or closing it closes the source.
//
// Errors:
//
//    - cistern-error-engine-unknown -- when no engine is registered under engineName
//    - cistern-error-io -- when the source path cannot be made absolute
//    - cistern-error-already-open -- when another session holds the source
//    - cistern-error-source-unavailable -- when the source cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        the engine does not speak
//    - cistern-error-path-malformed -- when a pattern field does not compile
func ReadMultiple(ctx context.Context, src string, engineName string, pattern csapi.DatasetPath) (*SeriesIter, error) {
	ses, err := session.New(engineName, src)
	if err != nil {
		return nil, err
	}
	return ReadMultipleFrom(ctx, ses, pattern)
}

// ReadMultipleFrom is ReadMultiple over a caller-made session. The
// iterator acquires the session for the duration of the iteration; a
// caller that opened the session first keeps it open after the
// iterator is done.
//
// Errors:
//
//    - cistern-error-already-open -- when another session holds the source
//    - cistern-error-source-unavailable -- when the source cannot be read
//    - cistern-error-version-unsupported -- when the source holds content
//        the session's engine does not speak
//    - cistern-error-path-malformed -- when a pattern field does not compile
func ReadMultipleFrom(ctx context.Context, ses *session.Session, pattern csapi.DatasetPath) (_ *SeriesIter, err error) {
	ctx, span := tracing.Start(ctx, "transfer read-multiple", trace.WithAttributes(
		tracing.AttrSessionId(ses.Id()),
		tracing.AttrSource(ses.Source()),
		tracing.AttrPath(pattern.String()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	release, err := ses.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := ses.Catalog(ctx)
	if err != nil {
		release()
		return nil, err
	}
	matches, err := cat.FindAll(pattern)
	if err != nil {
		release()
		return nil, err
	}
	paths := matches.Paths()
	logging.Ctx(ctx).Debug("transfer", "pattern %s matches %d of %d datasets in %s",
		pattern, len(paths), cat.Len(), ses.Source())
	return &SeriesIter{
		ctx:     ctx,
		ses:     ses,
		release: release,
		paths:   paths,
	}, nil
}

// Pair names one copy: read From, store under To. From may be a
// pattern, as long as it resolves to exactly one dataset; To must be
// concrete.
type Pair struct {
	From csapi.DatasetPath
	To   csapi.DatasetPath
}

// CopyMultiple copies the paired datasets from one source to another,
// in order. Every destination is checked for concreteness before any
// IO happens, so a malformed pair list never leaves a half-written
// destination behind. After that the copies are pairwise and
// fail-fast: the first pair that cannot be read or written aborts the
// remainder, and pairs already copied stay committed. There is no
// rollback.
//
// Copying within one file works; the source and destination are
// recognized as the same and share a session.
//
// Errors:
//
//    - cistern-error-path-ambiguous -- when a To is a pattern, or a From
//        pattern matches several datasets
//    - cistern-error-path-not-found -- when a From matches nothing
//    - cistern-error-engine-unknown -- when no engine is registered under engineName
//    - cistern-error-already-open -- when another session holds either source
//    - cistern-error-source-unavailable -- when either source cannot be read
//    - cistern-error-version-unsupported -- when a source holds content the
//        engine does not speak, or the engine's format cannot represent a series
//    - cistern-error-serialization -- when encoding the updated destination fails
//    - cistern-error-io -- when writing the destination fails
func CopyMultiple(ctx context.Context, src string, dst string, engineName string, pairs []Pair) (err error) {
	ctx, span := tracing.Start(ctx, "transfer copy-multiple", trace.WithAttributes(
		tracing.AttrEngine(engineName),
		tracing.AttrSource(src),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	for i, pair := range pairs {
		if pair.To.HasAnyWildcard() {
			return csapi.ErrorPathAmbiguous(pair.To.String(),
				fmt.Sprintf("destination in pair %d of %d is a pattern; copy destinations must be concrete", i+1, len(pairs)))
		}
	}

	from, err := session.New(engineName, src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return csapi.ErrorIo("resolving destination path", dst, err)
	}
	to := from
	if absDst != from.Source() {
		to, err = session.New(engineName, dst)
		if err != nil {
			return err
		}
	}

	releaseFrom, err := from.Acquire(ctx)
	if err != nil {
		return err
	}
	defer releaseFrom()
	if to != from {
		releaseTo, err := to.Acquire(ctx)
		if err != nil {
			return err
		}
		defer releaseTo()
	}

	for i, pair := range pairs {
		if err := copyPair(ctx, from, to, i, len(pairs), pair); err != nil {
			return err
		}
	}
	return nil
}

func copyPair(ctx context.Context, from, to *session.Session, i int, n int, pair Pair) (err error) {
	ctx, span := tracing.Start(ctx, "transfer copy-pair", trace.WithAttributes(
		tracing.AttrPairIndex(i),
		tracing.AttrPath(pair.From.String()),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	rts, err := from.ReadSeries(ctx, pair.From)
	if err != nil {
		return serum.Errorf(serum.Code(err), "copy pair %d of %d (%s to %s): %w",
			i+1, n, pair.From, pair.To, err)
	}
	if err := to.WriteSeries(ctx, pair.To, rts); err != nil {
		return serum.Errorf(serum.Code(err), "copy pair %d of %d (%s to %s): %w",
			i+1, n, pair.From, pair.To, err)
	}
	logging.Ctx(ctx).Debug("transfer", "copied %s to %s (%d values)", pair.From, pair.To, rts.Len())
	return nil
}
