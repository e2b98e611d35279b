package vessel

import (
	"strings"

	"github.com/warpfork/go-fsx"

	"github.com/hydrotools/cistern/csapi"
)

// FindVessels walks the tree under root, collecting every file whose name
// ends in Suffix, in walk order.  A tree with no vessels yields an empty
// list, not an error.
//
// An fsys handle is required, but is typically `osfs.DirFS(".")` outside
// of tests.
//
// Errors:
//
//    - cistern-error-io -- when the walk cannot read a directory
func FindVessels(fsys fsx.FS, root string) ([]string, error) {
	found := []string{}
	err := fsx.WalkDir(fsys, root,
		func(path string, d fsx.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, Suffix) {
				found = append(found, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, csapi.ErrorIo("walking for vessel files", root, err)
	}
	return found, nil
}
