package vessel

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/warpfork/go-fsx/osfs"
)

func TestFindVessels(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, os.MkdirAll(filepath.Join(dir, "nested", "deep"), 0755), qt.IsNil)
	for _, p := range []string{
		"a.vessel",
		filepath.Join("nested", "b.vessel"),
		filepath.Join("nested", "deep", "c.vessel"),
	} {
		qt.Assert(t, os.WriteFile(filepath.Join(dir, p), []byte{}, 0644), qt.IsNil)
	}
	qt.Assert(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644), qt.IsNil)

	found, err := FindVessels(osfs.DirFS(dir), ".")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, found, qt.DeepEquals, []string{
		"a.vessel",
		filepath.Join("nested", "b.vessel"),
		filepath.Join("nested", "deep", "c.vessel"),
	})
}

func TestFindVesselsEmptyTree(t *testing.T) {
	found, err := FindVessels(osfs.DirFS(t.TempDir()), ".")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, found, qt.HasLen, 0)
}
