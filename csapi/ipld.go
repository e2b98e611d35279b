package csapi

import (
	_ "github.com/ipld/go-ipld-prime/codec/json" // side-effecting import; registers a codec.
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/schema"
)

// This file is for IPLD-related helpers and constants.
// (For example, the linksystem: that's legitimately a global, because it's just for plugin config.)

var LinkSystem = cidlink.DefaultLinkSystem()

// TypeSystem describes all our API data types and their representation strategies in IPLD Schema form.
// It is seeded with the prelude scalars here; each component file accumulates
// its own types onto it in an init function.
var TypeSystem = func() *schema.TypeSystem {
	ts := new(schema.TypeSystem)
	ts.Init()
	ts.Accumulate(schema.SpawnBool("Bool"))
	ts.Accumulate(schema.SpawnInt("Int"))
	ts.Accumulate(schema.SpawnFloat("Float"))
	ts.Accumulate(schema.SpawnString("String"))
	ts.Accumulate(schema.SpawnBytes("Bytes"))
	return ts
}()
