package config

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
)

func TestMirroringConfigFromFile(t *testing.T) {
	fsys := fstest.MapFS{
		"etc/cistern/mirrors.json": &fstest.MapFile{Data: []byte(`{
			"mirrors": {
				"primary": {
					"s3": {
						"endpoint": "https://objects.example.com",
						"region": "us-west-2",
						"bucket": "cistern-vessels"
					}
				},
				"scratch": {
					"mock": {}
				}
			}
		}`)},
		"etc/cistern/scrambled.json": &fstest.MapFile{Data: []byte(`{"mirrors": 7}`)},
	}

	cfg, err := MirroringConfigFromFile(fsys, "/etc/cistern/mirrors.json")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, cfg.Mirrors.Keys, qt.HasLen, 2)
	primary := cfg.Mirrors.Values["primary"]
	qt.Assert(t, primary.S3, qt.IsNotNil)
	qt.Check(t, primary.S3.Bucket, qt.Equals, "cistern-vessels")
	qt.Check(t, primary.S3.Region, qt.Equals, "us-west-2")
	scratch := cfg.Mirrors.Values["scratch"]
	qt.Check(t, scratch.Mock, qt.IsNotNil)

	_, err = MirroringConfigFromFile(fsys, "etc/cistern/absent.json")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeIo)

	_, err = MirroringConfigFromFile(fsys, "etc/cistern/scrambled.json")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, csapi.ECodeSerialization)
}

func TestStateDefaults(t *testing.T) {
	s := State{Env: map[string]string{}}
	qt.Check(t, s.DefaultEngine(), qt.Equals, "cask")
	qt.Check(t, s.MirrorsPath(), qt.Equals, "mirrors.json")

	s.Env[EnvCisternEngine] = "jar"
	s.Env[EnvCisternMirrors] = "/etc/cistern/mirrors.json"
	qt.Check(t, s.DefaultEngine(), qt.Equals, "jar")
	qt.Check(t, s.MirrorsPath(), qt.Equals, "/etc/cistern/mirrors.json")
}
