package config

import (
	"io/fs"
	"strings"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"

	"github.com/hydrotools/cistern/csapi"
)

// MirroringConfigFromFile loads a csapi.MirroringConfig from a filesystem path.
//
// In typical usage, the filename parameter comes from State.MirrorsPath.
//
// An fsys handle is required, but is typically `os.DirFS("/")` outside of tests.
//
// Errors:
//
// 	- cistern-error-io -- for errors reading from fsys.
// 	- cistern-error-serialization -- for errors from trying to parse the data as a MirroringConfig.
func MirroringConfigFromFile(fsys fs.FS, filename string) (csapi.MirroringConfig, error) {
	const situation = "loading a mirroring config"
	if strings.HasPrefix(filename, "/") {
		filename = filename[1:]
	}
	f, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return csapi.MirroringConfig{}, csapi.ErrorIo(situation, filename, err)
	}

	mirroringConfig := csapi.MirroringConfig{}
	_, err = ipld.Unmarshal(f, json.Decode, &mirroringConfig, csapi.TypeSystem.TypeByName("MirroringConfig"))
	if err != nil {
		return csapi.MirroringConfig{}, csapi.ErrorSerialization(situation, err)
	}

	return mirroringConfig, nil
}
