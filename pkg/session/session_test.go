package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/vessel"
)

func testSeries(t *testing.T, pathText string, values ...float64) *csapi.RegularTimeseries {
	t.Helper()
	path, err := csapi.ParseDatasetPath(pathText)
	qt.Assert(t, err, qt.IsNil)
	interval, err := csapi.ParseInterval("1MON")
	qt.Assert(t, err, qt.IsNil)
	dates := make([]time.Time, len(values))
	start := time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range values {
		dates[i] = start.AddDate(0, i, 0)
	}
	rts, err := csapi.NewRegularTimeseries(path, values, dates, csapi.PeriodAver, "CFS", interval)
	qt.Assert(t, err, qt.IsNil)
	return rts
}

func mustPath(t *testing.T, text string) csapi.DatasetPath {
	t.Helper()
	path, err := csapi.ParseDatasetPath(text)
	qt.Assert(t, err, qt.IsNil)
	return path
}

func openSession(t *testing.T, engineName string, source string) *Session {
	t.Helper()
	s, err := New(engineName, source)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, s.Open(context.Background()), qt.IsNil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "lifecycle.vessel")
	s, err := New(vessel.Cask, source)
	qt.Assert(t, err, qt.IsNil)

	qt.Check(t, s.IsOpen(), qt.IsFalse)
	qt.Check(t, s.EngineName(), qt.Equals, vessel.Cask)
	qt.Check(t, s.Source(), qt.Equals, source)
	qt.Check(t, s.Id(), qt.Not(qt.Equals), "")

	qt.Assert(t, s.Open(ctx), qt.IsNil)
	qt.Check(t, s.IsOpen(), qt.IsTrue)

	err = s.Open(ctx)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeAlreadyOpen)

	qt.Assert(t, s.Close(), qt.IsNil)
	qt.Check(t, s.IsOpen(), qt.IsFalse)
	qt.Assert(t, s.Close(), qt.IsNil)

	qt.Assert(t, s.Open(ctx), qt.IsNil)
	qt.Assert(t, s.Close(), qt.IsNil)
}

func TestSessionOperationsRequireOpen(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "closed.vessel")
	s, err := New(vessel.Cask, source)
	qt.Assert(t, err, qt.IsNil)
	path := mustPath(t, "/CALSIM/S_SHSTA/STORAGE//1MON/L2020A/")

	_, err = s.ReadCatalog(ctx, false)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	_, err = s.Catalog(ctx)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	_, err = s.ReadSeries(ctx, path)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	_, err = s.ResolvePath(ctx, path)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	err = s.WriteSeries(ctx, path, testSeries(t, path.String(), 1, 2))
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
}

func TestSessionUnknownEngine(t *testing.T) {
	_, err := New("amphora", filepath.Join(t.TempDir(), "x.vessel"))
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeEngineUnknown)
	qt.Check(t, err.Error(), qt.Contains, vessel.Cask)
}

func TestSourceExclusivity(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "shared.vessel")

	a, err := New(vessel.Cask, source)
	qt.Assert(t, err, qt.IsNil)
	b, err := New(vessel.Cask, source)
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, a.Open(ctx), qt.IsNil)
	err = b.Open(ctx)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeAlreadyOpen)
	qt.Check(t, err.Error(), qt.Contains, a.Id())

	qt.Assert(t, a.Close(), qt.IsNil)
	qt.Assert(t, b.Open(ctx), qt.IsNil)
	qt.Assert(t, b.Close(), qt.IsNil)
}

func TestSourceExclusivityIgnoresDistinctSources(t *testing.T) {
	dir := t.TempDir()

	a := openSession(t, vessel.Cask, filepath.Join(dir, "a.vessel"))
	b := openSession(t, vessel.Cask, filepath.Join(dir, "b.vessel"))
	qt.Check(t, a.IsOpen(), qt.IsTrue)
	qt.Check(t, b.IsOpen(), qt.IsTrue)
}

func TestAcquireOpensAndReleaseCloses(t *testing.T) {
	ctx := context.Background()
	s, err := New(vessel.Cask, filepath.Join(t.TempDir(), "acq.vessel"))
	qt.Assert(t, err, qt.IsNil)

	release, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, s.IsOpen(), qt.IsTrue)

	release()
	qt.Check(t, s.IsOpen(), qt.IsFalse)
	release() // idempotent
	qt.Check(t, s.IsOpen(), qt.IsFalse)
}

func TestAcquireNests(t *testing.T) {
	ctx := context.Background()
	s, err := New(vessel.Cask, filepath.Join(t.TempDir(), "nest.vessel"))
	qt.Assert(t, err, qt.IsNil)

	outer, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)
	inner, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)

	inner()
	qt.Check(t, s.IsOpen(), qt.IsTrue)
	outer()
	qt.Check(t, s.IsOpen(), qt.IsFalse)
}

func TestAcquireRespectsExplicitOpen(t *testing.T) {
	ctx := context.Background()
	s, err := New(vessel.Cask, filepath.Join(t.TempDir(), "borrow.vessel"))
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, s.Open(ctx), qt.IsNil)
	release, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)

	release()
	qt.Check(t, s.IsOpen(), qt.IsTrue)
	qt.Assert(t, s.Close(), qt.IsNil)
}

func TestCloseZeroesAcquisitions(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "zero.vessel")
	s, err := New(vessel.Cask, source)
	qt.Assert(t, err, qt.IsNil)

	rel1, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)
	rel2, err := s.Acquire(ctx)
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, s.Close(), qt.IsNil)
	qt.Check(t, s.IsOpen(), qt.IsFalse)
	rel1()
	rel2()
	qt.Check(t, s.IsOpen(), qt.IsFalse)

	// the source is free again
	other := openSession(t, vessel.Cask, source)
	qt.Check(t, other.IsOpen(), qt.IsTrue)
}

func TestReadSeriesResolvesPatterns(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, vessel.Cask, filepath.Join(t.TempDir(), "resolve.vessel"))

	shasta := mustPath(t, "/CALSIM/S_SHSTA/STORAGE//1MON/L2020A/")
	oroville := mustPath(t, "/CALSIM/S_OROVL/STORAGE//1MON/L2020A/")
	qt.Assert(t, s.WriteSeries(ctx, shasta, testSeries(t, shasta.String(), 4552, 4431)), qt.IsNil)
	qt.Assert(t, s.WriteSeries(ctx, oroville, testSeries(t, oroville.String(), 3427, 3200)), qt.IsNil)

	rts, err := s.ReadSeries(ctx, mustPath(t, "/CALSIM/S_SHSTA/.*//1MON/L2020A/"))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, rts.Path, qt.DeepEquals, shasta)
	qt.Check(t, rts.Values, qt.DeepEquals, []float64{4552, 4431})

	_, err = s.ReadSeries(ctx, mustPath(t, "/CALSIM/.*/STORAGE//1MON/L2020A/"))
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathAmbiguous)

	_, err = s.ReadSeries(ctx, mustPath(t, "/CALSIM/S_FOLSM/.*//1MON/L2020A/"))
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathNotFound)
}

func TestReadSeriesResolvesDatePatterns(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, vessel.Cask, filepath.Join(t.TempDir(), "dated.vessel"))

	dated := mustPath(t, "/CALSIM/S_SHSTA/STORAGE/01JAN2000/1MON/L2020A/")
	qt.Assert(t, s.WriteSeries(ctx, dated, testSeries(t, dated.String(), 4552, 4431)), qt.IsNil)

	rts, err := s.ReadSeries(ctx, mustPath(t, "/CALSIM/S_SHSTA/STORAGE/.*/1MON/L2020A/"))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, rts.Path, qt.DeepEquals, dated)
}

func TestResolvePassesConcretePathsThrough(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, vessel.Cask, filepath.Join(t.TempDir(), "concrete.vessel"))

	// No catalog consultation happens, so a path absent from the (empty)
	// source still resolves to itself.
	path := mustPath(t, "/CALSIM/S_SHSTA/STORAGE//1MON/L2020A/")
	resolved, err := s.ResolvePath(ctx, path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, resolved, qt.DeepEquals, path)
}

func TestWriteSeriesRejectsPatterns(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, vessel.Cask, filepath.Join(t.TempDir(), "wrguard.vessel"))

	pattern := mustPath(t, "/CALSIM/.*/STORAGE//1MON/L2020A/")
	err := s.WriteSeries(ctx, pattern, testSeries(t, "/CALSIM/S_SHSTA/STORAGE//1MON/L2020A/", 1))
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathAmbiguous)
}

func TestReadCatalogDropDate(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, vessel.Cask, filepath.Join(t.TempDir(), "drop.vessel"))

	y2000 := mustPath(t, "/CALSIM/S_SHSTA/STORAGE/01JAN2000/1MON/L2020A/")
	y2001 := mustPath(t, "/CALSIM/S_SHSTA/STORAGE/01JAN2001/1MON/L2020A/")
	qt.Assert(t, s.WriteSeries(ctx, y2000, testSeries(t, y2000.String(), 1, 2)), qt.IsNil)
	qt.Assert(t, s.WriteSeries(ctx, y2001, testSeries(t, y2001.String(), 3, 4)), qt.IsNil)

	full, err := s.ReadCatalog(ctx, false)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, full.Len(), qt.Equals, 2)
	qt.Check(t, full.Source, qt.Equals, s.Source())

	collapsed, err := s.ReadCatalog(ctx, true)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, collapsed.Len(), qt.Equals, 1)
	qt.Check(t, collapsed.Source, qt.Equals, s.Source())
	qt.Check(t, collapsed.Paths()[0].D, qt.Equals, "")
}
