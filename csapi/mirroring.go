package csapi

import (
	"github.com/ipld/go-ipld-prime/schema"
)

func init() {
	TypeSystem.Accumulate(schema.SpawnStruct("MirroringConfig",
		[]schema.StructField{
			schema.SpawnStructField("mirrors", "Map__MirrorName__MirrorPushConfig", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnMap("Map__MirrorName__MirrorPushConfig",
		"MirrorName", "MirrorPushConfig", false))
	TypeSystem.Accumulate(schema.SpawnString("MirrorName"))
	TypeSystem.Accumulate(schema.SpawnUnion("MirrorPushConfig",
		[]schema.TypeName{
			"S3PushConfig",
			"GitPushConfig",
			"MockPushConfig",
		},
		schema.SpawnUnionRepresentationKeyed(map[string]schema.TypeName{
			"s3":   "S3PushConfig",
			"git":  "GitPushConfig",
			"mock": "MockPushConfig",
		})))
	TypeSystem.Accumulate(schema.SpawnStruct("S3PushConfig",
		[]schema.StructField{
			schema.SpawnStructField("endpoint", "String", false, false),
			schema.SpawnStructField("region", "String", false, false),
			schema.SpawnStructField("bucket", "String", false, false),
			schema.SpawnStructField("path", "String", true, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnStruct("GitPushConfig",
		[]schema.StructField{
			schema.SpawnStructField("repo", "String", false, false),
			schema.SpawnStructField("prefix", "String", true, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnStruct("MockPushConfig",
		[]schema.StructField{},
		schema.SpawnStructRepresentationMap(nil)))
}

// MirrorName labels one push destination in a MirroringConfig.
type MirrorName string

// MirroringConfig names the destinations a vessel file can be pushed to.
type MirroringConfig struct {
	Mirrors struct {
		Keys   []MirrorName
		Values map[MirrorName]MirrorPushConfig
	}
}

// MirrorPushConfig selects and configures one pusher implementation.
type MirrorPushConfig struct {
	S3   *S3PushConfig
	Git  *GitPushConfig
	Mock *MockPushConfig
}

type S3PushConfig struct {
	Endpoint string
	Region   string
	Bucket   string
	Path     *string
}

// GitPushConfig describes a mirror that is a git repository on local
// disk. Vessels land as commits; publishing the repository is left to
// whatever already syncs it.
type GitPushConfig struct {
	Repo   string
	Prefix *string
}

type MockPushConfig struct {
}
