package vessel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/engine"
)

func testSeries(t *testing.T, pathText string, intervalText string, values ...float64) *csapi.RegularTimeseries {
	t.Helper()
	path, err := csapi.ParseDatasetPath(pathText)
	qt.Assert(t, err, qt.IsNil)
	interval, err := csapi.ParseInterval(intervalText)
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

func openEngine(t *testing.T, fab engine.Factory, source string) engine.Engine {
	t.Helper()
	eng := fab(source)
	qt.Assert(t, eng.Open(context.Background()), qt.IsNil)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "lifecycle.vessel")
	eng := NewCask(source)

	qt.Check(t, eng.IsOpen(), qt.IsFalse)
	qt.Assert(t, eng.Open(ctx), qt.IsNil)
	qt.Check(t, eng.IsOpen(), qt.IsTrue)

	err := eng.Open(ctx)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeAlreadyOpen)

	qt.Assert(t, eng.Close(), qt.IsNil)
	qt.Check(t, eng.IsOpen(), qt.IsFalse)
	// closing again is a no-op
	qt.Assert(t, eng.Close(), qt.IsNil)

	// reopening works
	qt.Assert(t, eng.Open(ctx), qt.IsNil)
	qt.Assert(t, eng.Close(), qt.IsNil)
}

func TestEngineOperationsRequireOpen(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "closed.vessel")
	eng := NewCask(source)
	path := mustPath(t, "/A/B/C//E/F/")

	_, err := eng.ReadCatalog(ctx)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	_, err = eng.Catalog(ctx)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	_, err = eng.ReadSeries(ctx, path)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
	err = eng.WriteSeries(ctx, path, testSeries(t, "/A/B/C//E/F/", "1MON", 1, 2))
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeClosed)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "roundtrip.vessel")
	eng := openEngine(t, NewCask, source)

	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29, 31)
	qt.Assert(t, eng.WriteSeries(ctx, rts.Path, rts), qt.IsNil)

	back, err := eng.ReadSeries(ctx, rts.Path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, back.Equal(rts), qt.IsTrue)
}

func TestWriteOverwritesAtSamePath(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "overwrite.vessel")
	eng := openEngine(t, NewCask, source)
	path := mustPath(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/")

	qt.Assert(t, eng.WriteSeries(ctx, path, testSeries(t, path.String(), "1MON", 1, 2)), qt.IsNil)
	qt.Assert(t, eng.WriteSeries(ctx, path, testSeries(t, path.String(), "1MON", 3, 4)), qt.IsNil)

	catalog, err := eng.ReadCatalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, catalog.Len(), qt.Equals, 1)

	back, err := eng.ReadSeries(ctx, path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, back.Values, qt.DeepEquals, []float64{3, 4})
}

func TestCatalogCaching(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "cache.vessel")
	eng := openEngine(t, NewCask, source)

	first := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	qt.Assert(t, eng.WriteSeries(ctx, first.Path, first), qt.IsNil)

	c1, err := eng.Catalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	c2, err := eng.Catalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, c1 == c2, qt.IsTrue)

	// a write drops the cache; the next catalog access sees the new path
	second := testSeries(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/", "1MON", 0.5, 1.25)
	qt.Assert(t, eng.WriteSeries(ctx, second.Path, second), qt.IsNil)

	c3, err := eng.Catalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, c1 == c3, qt.IsFalse)
	qt.Check(t, c3.Len(), qt.Equals, 2)
	qt.Check(t, c3.Contains(second.Path), qt.IsTrue)
	qt.Check(t, c3.Source, qt.Equals, source)
}

func TestReadCatalogRefreshes(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "refresh.vessel")
	eng := openEngine(t, NewCask, source)

	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	qt.Assert(t, eng.WriteSeries(ctx, rts.Path, rts), qt.IsNil)

	c1, err := eng.ReadCatalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	// ReadCatalog refreshed the cache, so Catalog serves its result
	c2, err := eng.Catalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, c1 == c2, qt.IsTrue)
}

func TestReadSeriesConcreteOnly(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "concrete.vessel")
	eng := openEngine(t, NewCask, source)

	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	qt.Assert(t, eng.WriteSeries(ctx, rts.Path, rts), qt.IsNil)

	_, err := eng.ReadSeries(ctx, mustPath(t, "/CALSIM/.*/DAY//1MON/L2020A/"))
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathAmbiguous)

	_, err = eng.ReadSeries(ctx, mustPath(t, "/CALSIM/NOPE/DAY//1MON/L2020A/"))
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathNotFound)
}

func TestWriteSeriesConcreteOnly(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "concretewrite.vessel")
	eng := openEngine(t, NewCask, source)

	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	err := eng.WriteSeries(ctx, mustPath(t, "/CALSIM/.*/DAY//1MON/L2020A/"), rts)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodePathAmbiguous)
}

func TestReadMissingSource(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "missing.vessel")
	eng := openEngine(t, NewCask, source)

	_, err := eng.ReadCatalog(ctx)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeSourceUnavailable)
	_, err = eng.ReadSeries(ctx, mustPath(t, "/A/B/C//E/F/"))
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeSourceUnavailable)
}

func TestOpenUndecodableSource(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "junk.vessel")
	qt.Assert(t, os.WriteFile(source, []byte("not a capsule"), 0644), qt.IsNil)

	eng := NewCask(source)
	err := eng.Open(ctx)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeVersionUnsupported)
}

func TestJarRefusesCaskFiles(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "interplay.vessel")

	cask := openEngine(t, NewCask, source)
	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	qt.Assert(t, cask.WriteSeries(ctx, rts.Path, rts), qt.IsNil)
	qt.Assert(t, cask.Close(), qt.IsNil)

	jar := NewJar(source)
	err := jar.Open(ctx)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeVersionUnsupported)
	qt.Check(t, err.Error(), qt.Contains, "vessel.v2")
}

func TestCaskReadsAndUpgradesJarFiles(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "upgrade.vessel")

	jar := openEngine(t, NewJar, source)
	rts := testSeries(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", "1MON", 31, 29)
	qt.Assert(t, jar.WriteSeries(ctx, rts.Path, rts), qt.IsNil)
	qt.Assert(t, jar.Close(), qt.IsNil)

	capsule, err := Load(source)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, capsule.Version(), qt.Equals, "vessel.v1")

	cask := openEngine(t, NewCask, source)
	back, err := cask.ReadSeries(ctx, rts.Path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, back.Equal(rts), qt.IsTrue)

	// a write through cask rewrites the file as v2
	more := testSeries(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/", "1MON", 0.5)
	qt.Assert(t, cask.WriteSeries(ctx, more.Path, more), qt.IsNil)

	capsule, err = Load(source)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, capsule.Version(), qt.Equals, "vessel.v2")
	qt.Check(t, len(capsule.VesselV2.ContentIds.Keys), qt.Equals, 2)

	// and the old dataset is still in there
	back, err = cask.ReadSeries(ctx, rts.Path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, back.Equal(rts), qt.IsTrue)
}

func TestJarCannotRepresentIrregularIntervals(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "irregular.vessel")
	jar := openEngine(t, NewJar, source)

	rts := testSeries(t, "/CALSIM/STORAGE/FLOW//IR-YEAR/L2020A/", "IR-YEAR", 1, 2)
	err := jar.WriteSeries(ctx, rts.Path, rts)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeVersionUnsupported)

	// cask stores the same series without complaint
	cask := openEngine(t, NewCask, filepath.Join(t.TempDir(), "irregular2.vessel"))
	qt.Assert(t, cask.WriteSeries(ctx, rts.Path, rts), qt.IsNil)
}

func TestJarCannotRepresentNonstandardPeriodTypes(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "periodtype.vessel")
	jar := openEngine(t, NewJar, source)

	path := mustPath(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/")
	interval, err := csapi.ParseInterval("1MON")
	qt.Assert(t, err, qt.IsNil)
	rts, err := csapi.NewRegularTimeseries(path,
		[]float64{31, 29},
		[]time.Time{
			time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		csapi.PeriodType("PER-MAX"), "DAYS", interval)
	qt.Assert(t, err, qt.IsNil)

	werr := jar.WriteSeries(ctx, path, rts)
	qt.Assert(t, werr, qt.IsNotNil)
	qt.Check(t, serum.Code(werr), qt.Equals, csapi.ECodeVersionUnsupported)
}

func TestCatalogCanonicalOrder(t *testing.T) {
	ctx := context.Background()
	source := filepath.Join(t.TempDir(), "order.vessel")
	eng := openEngine(t, NewCask, source)

	texts := []string{
		"/CALSIM/Z_LAST/FLOW//1MON/L2020A/",
		"/CALSIM/A_FIRST/FLOW//1MON/L2020A/",
		"/CALSIM/M_MIDDLE/FLOW//1MON/L2020A/",
	}
	for _, text := range texts {
		rts := testSeries(t, text, "1MON", 1, 2)
		qt.Assert(t, eng.WriteSeries(ctx, rts.Path, rts), qt.IsNil)
	}

	catalog, err := eng.ReadCatalog(ctx)
	qt.Assert(t, err, qt.IsNil)
	paths := catalog.Paths()
	qt.Assert(t, len(paths), qt.Equals, 3)
	qt.Check(t, paths[0].B, qt.Equals, "A_FIRST")
	qt.Check(t, paths[1].B, qt.Equals, "M_MIDDLE")
	qt.Check(t, paths[2].B, qt.Equals, "Z_LAST")
}
