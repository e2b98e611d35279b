// Package mirroring pushes vessel container files to configured
// mirrors. Files are stored content-addressed: the object key is
// derived from the cid of the file bytes, so re-pushing an unchanged
// vessel is a no-op and two mirrors never disagree about what a key
// holds.
package mirroring

import (
	"context"
	"os"
	"path"

	"github.com/ipfs/go-cid"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/vessel"
)

type pusher interface {
	// Errors:
	//
	// 	- cistern-error-mirror -- when the mirror cannot be queried
	hasVessel(csapi.VesselCID) (bool, error)
	// Errors:
	//
	// 	- cistern-error-mirror -- when the mirror rejects the upload
	// 	- cistern-error-io -- when the local file cannot be opened
	pushVessel(csapi.VesselCID, string) error
}

func pusherFromConfig(ctx context.Context, cfg csapi.MirrorPushConfig) (pusher, error) {
	if cfg.S3 != nil {
		pusher, err := newS3Pusher(ctx, *cfg.S3)
		return &pusher, err
	} else if cfg.Git != nil {
		pusher, err := newGitPusher(ctx, *cfg.Git)
		return &pusher, err
	} else if cfg.Mock != nil {
		pusher, err := newMockPusher(ctx, *cfg.Mock)
		return &pusher, err
	}
	// this should be unreachable due to IPLD validation
	panic("no supported push configuration provided")
}

// fileCid computes the content id of raw vessel file bytes.
// Codec 0x55 is raw; the hash matches the one used for capsule links.
func fileCid(raw []byte) (csapi.VesselCID, error) {
	prefix := cid.Prefix{
		Version:  1,
		Codec:    0x55,
		MhType:   0x13,
		MhLength: 64,
	}
	c, err := prefix.Sum(raw)
	if err != nil {
		return "", csapi.ErrorInternal("computing vessel file cid", err)
	}
	return csapi.VesselCID(c.String()), nil
}

// vesselKey shards object keys by the tail of the cid. The leading
// characters of a cidv1 are shared by every key, so the tail is where
// the entropy lives.
func vesselKey(id csapi.VesselCID) string {
	s := string(id)
	if len(s) < 8 {
		return s
	}
	return path.Join(s[len(s)-6:len(s)-3], s[len(s)-3:], s)
}

// Push puts one vessel file onto every mirror in the config. The file
// is decoded first, so a corrupt or foreign file is refused before any
// bytes leave the machine. Mirrors that already hold the file's cid
// are skipped.
//
// Errors:
//
// 	- cistern-error-source-unavailable -- when the vessel file cannot be read
// 	- cistern-error-version-unsupported -- when the file does not decode as a vessel
// 	- cistern-error-mirror -- when a mirror cannot be reached or rejects the upload
// 	- cistern-error-io -- when the local file cannot be opened for upload
// 	- cistern-error-internal -- when cid computation fails
func Push(ctx context.Context, cfg *csapi.MirroringConfig, source string) error {
	log := logging.Ctx(ctx)

	raw, err := os.ReadFile(source)
	if err != nil {
		return csapi.ErrorSourceUnavailable(source, err)
	}
	capsule, err := vessel.Decode(source, raw)
	if err != nil {
		return err
	}
	id, err := fileCid(raw)
	if err != nil {
		return err
	}

	for _, name := range cfg.Mirrors.Keys {
		push, err := pusherFromConfig(ctx, cfg.Mirrors.Values[name])
		if err != nil {
			return err
		}
		has, err := push.hasVessel(id)
		if err != nil {
			return err
		}
		if has {
			log.Debug("mirror", "mirror %q already has %s, skipping", name, id)
			continue
		}
		log.Info("mirror", "pushing %s (%s capsule, cid %s) to mirror %q", source, capsule.Version(), id, name)
		if err := push.pushVessel(id, source); err != nil {
			return err
		}
	}
	return nil
}
