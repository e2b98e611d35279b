package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by cistern
const (
	AttrKeyCisternErrorCode = "cistern.error.code"
	AttrKeyCisternEngine    = "cistern.engine"
	AttrKeyCisternSource    = "cistern.source"
	AttrKeyCisternSessionId = "cistern.session.id"
	AttrKeyCisternPath      = "cistern.path"
	AttrKeyCisternPairIndex = "cistern.pair.index"
)

// Attribute constructors for the dynamic keys
func AttrEngine(name string) attribute.KeyValue {
	return attribute.String(AttrKeyCisternEngine, name)
}

func AttrSource(source string) attribute.KeyValue {
	return attribute.String(AttrKeyCisternSource, source)
}

func AttrSessionId(id string) attribute.KeyValue {
	return attribute.String(AttrKeyCisternSessionId, id)
}

func AttrPath(path string) attribute.KeyValue {
	return attribute.String(AttrKeyCisternPath, path)
}

func AttrPairIndex(i int) attribute.KeyValue {
	return attribute.Int(AttrKeyCisternPairIndex, i)
}
