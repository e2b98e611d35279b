package csapi

import (
	"fmt"

	"github.com/ipfs/go-cid"
	_ "github.com/ipld/go-ipld-prime/codec/dagcbor" // side-effecting import; registers the codec CIDs are computed over.
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
)

func init() {
	TypeSystem.Accumulate(schema.SpawnUnion("VesselCapsule",
		[]schema.TypeName{
			"Vessel",
			"VesselV2",
		},
		schema.SpawnUnionRepresentationKeyed(map[string]schema.TypeName{
			"vessel.v1": "Vessel",
			"vessel.v2": "VesselV2",
		})))
	TypeSystem.Accumulate(schema.SpawnStruct("Vessel",
		[]schema.StructField{
			schema.SpawnStructField("datasets", "Map__String__SeriesRecord", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnStruct("VesselV2",
		[]schema.StructField{
			schema.SpawnStructField("datasets", "Map__String__SeriesRecord", false, false),
			schema.SpawnStructField("contentIds", "Map__String__String", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnStruct("SeriesRecord",
		[]schema.StructField{
			schema.SpawnStructField("values", "List__Float", false, false),
			schema.SpawnStructField("dates", "List__String", false, false),
			schema.SpawnStructField("periodType", "String", false, false),
			schema.SpawnStructField("units", "String", false, false),
			schema.SpawnStructField("interval", "String", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnMap("Map__String__SeriesRecord",
		"String", "SeriesRecord", false))
	TypeSystem.Accumulate(schema.SpawnMap("Map__String__String",
		"String", "String", false))
	TypeSystem.Accumulate(schema.SpawnList("List__Float",
		"Float", false))
	TypeSystem.Accumulate(schema.SpawnList("List__String",
		"String", false))
}

// VesselCapsule is the top-level document of a vessel container file.
// Exactly one member is set, keyed by the format version that wrote it.
// A capsule with no member set after decoding means the file was written by
// a newer format version than this code knows.
type VesselCapsule struct {
	Vessel   *Vessel
	VesselV2 *VesselV2
}

// Version names the capsule member that is set, or returns the empty
// string for a capsule holding nothing recognizable.
func (c *VesselCapsule) Version() string {
	switch {
	case c.Vessel != nil:
		return "vessel.v1"
	case c.VesselV2 != nil:
		return "vessel.v2"
	}
	return ""
}

// Vessel is format version 1: datasets keyed by their textual path.
// Version 1 represents only regular intervals and the standard period types.
type Vessel struct {
	Datasets struct {
		Keys   []string
		Values map[string]SeriesRecord
	}
}

// VesselV2 is format version 2: the version 1 payload plus a content ID per
// record, so mirrors can verify payloads without re-reading whole files.
// Version 2 also lifts the version 1 restrictions on intervals and period
// types.
type VesselV2 struct {
	Datasets struct {
		Keys   []string
		Values map[string]SeriesRecord
	}
	ContentIds struct {
		Keys   []string
		Values map[string]string
	}
}

// SeriesRecord is one dataset as stored in a vessel: a SeriesDocument minus
// the path, which is the record's key in the enclosing map.
type SeriesRecord struct {
	Values     []float64
	Dates      []string
	PeriodType string
	Units      string
	Interval   string
}

type SeriesCID string

type VesselCID string

// RecordFromSeries renders a series into its stored form.
func RecordFromSeries(rts *RegularTimeseries) SeriesRecord {
	doc := rts.Document()
	return SeriesRecord{
		Values:     doc.Values,
		Dates:      doc.Dates,
		PeriodType: doc.PeriodType,
		Units:      doc.Units,
		Interval:   doc.Interval,
	}
}

// ToSeries rebuilds the in-memory series for a record stored under pathText.
//
// Errors:
//
//    - cistern-error-validation -- when the record or the path is malformed.
func (r SeriesRecord) ToSeries(pathText string) (*RegularTimeseries, error) {
	return FromDocument(SeriesDocument{
		Path:       pathText,
		Values:     r.Values,
		Dates:      r.Dates,
		PeriodType: r.PeriodType,
		Units:      r.Units,
		Interval:   r.Interval,
	})
}

// Cid computes the content ID of one record.
func (r *SeriesRecord) Cid() SeriesCID {
	node := bindnode.Wrap(r, TypeSystem.TypeByName("SeriesRecord"))

	lsys := cidlink.DefaultLinkSystem()
	lnk, errRaw := lsys.ComputeLink(cidlink.LinkPrototype{cid.Prefix{
		Version:  1,    // Usually '1'.
		Codec:    0x71, // 0x71 means "dag-cbor" -- See the multicodecs table: https://github.com/multiformats/multicodec/
		MhType:   0x13, // 0x13 means "sha2-512" -- See the multicodecs table: https://github.com/multiformats/multicodec/
		MhLength: 64,   // sha2-512 hash has a 64-byte sum.
	}}, node.(schema.TypedNode).Representation())
	if errRaw != nil {
		// panic! this should never fail unless IPLD is broken
		panic(fmt.Sprintf("Fatal IPLD Error: lsys.ComputeLink failed for SeriesRecord: %s", errRaw))
	}
	return SeriesCID(lnk.String())
}

// Cid computes the content ID of the whole vessel payload.
func (v *VesselV2) Cid() VesselCID {
	node := bindnode.Wrap(v, TypeSystem.TypeByName("VesselV2"))

	lsys := cidlink.DefaultLinkSystem()
	lnk, errRaw := lsys.ComputeLink(cidlink.LinkPrototype{cid.Prefix{
		Version:  1,
		Codec:    0x71,
		MhType:   0x13,
		MhLength: 64,
	}}, node.(schema.TypedNode).Representation())
	if errRaw != nil {
		// panic! this should never fail unless IPLD is broken
		panic(fmt.Sprintf("Fatal IPLD Error: lsys.ComputeLink failed for VesselV2: %s", errRaw))
	}
	return VesselCID(lnk.String())
}

// Put stores a record under pathText, overwriting any record already there.
func (v *Vessel) Put(pathText string, rec SeriesRecord) {
	if v.Datasets.Values == nil {
		v.Datasets.Values = map[string]SeriesRecord{}
	}
	if _, exists := v.Datasets.Values[pathText]; !exists {
		v.Datasets.Keys = append(v.Datasets.Keys, pathText)
	}
	v.Datasets.Values[pathText] = rec
}

// Get looks up the record stored under pathText.
func (v *Vessel) Get(pathText string) (SeriesRecord, bool) {
	rec, ok := v.Datasets.Values[pathText]
	return rec, ok
}

// Put stores a record under pathText and refreshes its content ID.
func (v *VesselV2) Put(pathText string, rec SeriesRecord) {
	if v.Datasets.Values == nil {
		v.Datasets.Values = map[string]SeriesRecord{}
	}
	if v.ContentIds.Values == nil {
		v.ContentIds.Values = map[string]string{}
	}
	if _, exists := v.Datasets.Values[pathText]; !exists {
		v.Datasets.Keys = append(v.Datasets.Keys, pathText)
		v.ContentIds.Keys = append(v.ContentIds.Keys, pathText)
	}
	v.Datasets.Values[pathText] = rec
	v.ContentIds.Values[pathText] = string(rec.Cid())
}

// Get looks up the record stored under pathText.
func (v *VesselV2) Get(pathText string) (SeriesRecord, bool) {
	rec, ok := v.Datasets.Values[pathText]
	return rec, ok
}
