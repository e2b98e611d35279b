// Package vessel implements the two bundled engines, jar and cask, which
// store datasets in vessel container files: one dag-cbor document per file,
// series records keyed by dataset path text.
//
// jar speaks the v1 capsule only.  cask reads v1 and v2 and always writes
// v2, so writing through cask upgrades a v1 file in place.
package vessel

import (
	"fmt"
	"os"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"

	"github.com/hydrotools/cistern/csapi"
)

// Suffix is the conventional file extension for vessel containers.
const Suffix = ".vessel"

// Load reads and decodes one vessel container file.
//
// Errors:
//
//    - cistern-error-source-unavailable -- when the file cannot be read
//    - cistern-error-version-unsupported -- when the bytes do not decode as any known capsule version
func Load(source string) (*csapi.VesselCapsule, error) {
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, csapi.ErrorSourceUnavailable(source, err)
	}
	return Decode(source, raw)
}

// Decode decodes vessel container bytes. The source name is used only
// for error messages.
//
// Errors:
//
//    - cistern-error-version-unsupported -- when the bytes do not decode as any known capsule version
func Decode(source string, raw []byte) (*csapi.VesselCapsule, error) {
	capsule := csapi.VesselCapsule{}
	_, err := ipld.Unmarshal(raw, dagcbor.Decode, &capsule, csapi.TypeSystem.TypeByName("VesselCapsule"))
	if err != nil {
		return nil, csapi.ErrorVersionUnsupported(source,
			fmt.Sprintf("content does not decode as any vessel capsule this build knows: %s", err))
	}
	if capsule.Vessel == nil && capsule.VesselV2 == nil {
		// ... this isn't really reachable.
		return nil, csapi.ErrorVersionUnsupported(source, "vessel capsule contains no recognized version")
	}
	return &capsule, nil
}

// Save encodes and writes one vessel container file.
//
// Errors:
//
//    - cistern-error-serialization -- when the capsule does not encode
//    - cistern-error-io -- when writing the file fails
func Save(source string, capsule *csapi.VesselCapsule) error {
	serial, err := ipld.Marshal(dagcbor.Encode, capsule, csapi.TypeSystem.TypeByName("VesselCapsule"))
	if err != nil {
		return csapi.ErrorSerialization(fmt.Sprintf("encoding vessel %q", source), err)
	}
	if err := os.WriteFile(source, serial, 0644); err != nil {
		return csapi.ErrorIo("writing vessel file", source, err)
	}
	return nil
}
