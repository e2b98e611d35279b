package csapi

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/serum-errors/go-serum"
)

const (
	ECodePathMalformed      = "cistern-error-path-malformed"
	ECodePathAmbiguous      = "cistern-error-path-ambiguous"
	ECodePathNotFound       = "cistern-error-path-not-found"
	ECodeSourceUnavailable  = "cistern-error-source-unavailable"
	ECodeVersionUnsupported = "cistern-error-version-unsupported"
	ECodeEngineUnknown      = "cistern-error-engine-unknown"
	ECodeClosed             = "cistern-error-closed"
	ECodeAlreadyOpen        = "cistern-error-already-open"
	ECodeValidation         = "cistern-error-validation"
	ECodeIo                 = "cistern-error-io"
	ECodeSerialization      = "cistern-error-serialization"
	ECodeInternal           = "cistern-error-internal"
	ECodeArgument           = "cistern-error-argument"
	ECodeInitialization     = "cistern-error-initialization"
	ECodeMirror             = "cistern-error-mirror"
	ECodeUnknown            = "cistern-error-unknown"
)

// TerminalError emits an error on stdout as json, and halts immediately.
// In most cases, you should not use this method, and there will be a better place to send errors
// that will be more guaranteed to fit any protocols and scripts better;
// however, this is sometimes used in init methods (where we know no other protocol yet).
func TerminalError(err serum.ErrorInterface, exitCode int) {
	json.NewEncoder(os.Stdout).Encode(struct {
		Error serum.ErrorInterface `json:"error"`
	}{err})
	os.Exit(exitCode)
}

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
// - cistern-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for miscellaneous errors that should be handled internally.
// In most cases, prefer to use more specific errors.
// Can be used when an end user is not expected to have viable intervention strategies.
//
// Errors:
//
// - cistern-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorPathMalformed is returned when parsing of a textual dataset path fails.
//
// Errors:
//
//    - cistern-error-path-malformed --
func ErrorPathMalformed(text string, reason string) error {
	return serum.Error(ECodePathMalformed,
		serum.WithMessageTemplate("malformed dataset path {{text|q}}: {{reason}}"),
		serum.WithDetail("text", text),
		serum.WithDetail("reason", reason),
	)
}

// ErrorPathAmbiguous is returned when a path with wildcards is used
// where a single concrete path is required.
//
// Errors:
//
//    - cistern-error-path-ambiguous --
func ErrorPathAmbiguous(path string, reason string, deets ...[2]string) error {
	opts := []serum.WithConstruction{
		serum.WithMessageTemplate("ambiguous dataset path {{path|q}}: {{reason}}"),
		serum.WithDetail("path", path),
		serum.WithDetail("reason", reason),
	}
	for _, d := range deets {
		opts = append(opts, serum.WithDetail(d[0], d[1]))
	}
	return serum.Error(ECodePathAmbiguous, opts...)
}

// ErrorPathNotFound is returned when a concrete path is absent from a source.
//
// Errors:
//
//    - cistern-error-path-not-found --
func ErrorPathNotFound(path string, source string) error {
	return serum.Error(ECodePathNotFound,
		serum.WithMessageTemplate("dataset path {{path|q}} not found in {{source|q}}"),
		serum.WithDetail("path", path),
		serum.WithDetail("source", source),
	)
}

// ErrorSourceUnavailable is returned when a container file cannot be located or opened.
//
// Errors:
//
//    - cistern-error-source-unavailable --
func ErrorSourceUnavailable(source string, cause error) error {
	result := serum.Errorf(ECodeSourceUnavailable,
		"source %q unavailable: %w", source, cause)
	addDetails(result, [][2]string{
		{"source", source},
	})
	return result
}

// ErrorVersionUnsupported is returned when a container's format or version
// is not handled by the chosen engine.
//
// Errors:
//
//    - cistern-error-version-unsupported --
func ErrorVersionUnsupported(source string, reason string) error {
	return serum.Error(ECodeVersionUnsupported,
		serum.WithMessageTemplate("container {{source|q}} has an unsupported format or version: {{reason}}"),
		serum.WithDetail("source", source),
		serum.WithDetail("reason", reason),
	)
}

// ErrorEngineUnknown is returned when an engine name has no registered implementation.
//
// Errors:
//
//    - cistern-error-engine-unknown --
func ErrorEngineUnknown(name string, known []string) error {
	return serum.Error(ECodeEngineUnknown,
		serum.WithMessageTemplate("no engine registered under {{name|q}} (known engines: {{known}})"),
		serum.WithDetail("name", name),
		serum.WithDetail("known", fmt.Sprintf("%v", known)),
	)
}

// ErrorClosed is returned when an operation requires an open session.
//
// Errors:
//
//    - cistern-error-closed --
func ErrorClosed(op string, source string) error {
	return serum.Error(ECodeClosed,
		serum.WithMessageTemplate("cannot {{op}}: session for {{source|q}} is closed"),
		serum.WithDetail("op", op),
		serum.WithDetail("source", source),
	)
}

// ErrorAlreadyOpen is returned on opening a session that is already open,
// or when another session already holds the same source.
//
// Errors:
//
//    - cistern-error-already-open --
func ErrorAlreadyOpen(source string, reason string) error {
	return serum.Error(ECodeAlreadyOpen,
		serum.WithMessageTemplate("session for {{source|q}} already open: {{reason}}"),
		serum.WithDetail("source", source),
		serum.WithDetail("reason", reason),
	)
}

// ErrorValidation is returned when construction of a value violates its invariants.
// The reason string should name every violated field, not only the first.
//
// Errors:
//
//    - cistern-error-validation --
func ErrorValidation(what string, reason string, deets ...[2]string) error {
	opts := []serum.WithConstruction{
		serum.WithMessageTemplate("invalid {{what}}: {{reason}}"),
		serum.WithDetail("what", what),
		serum.WithDetail("reason", reason),
	}
	for _, d := range deets {
		opts = append(opts, serum.WithDetail(d[0], d[1]))
	}
	return serum.Error(ECodeValidation, opts...)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//    - cistern-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo,
		"io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//    - cistern-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization,
		"serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorMirror is returned when pushing a container to a mirror fails.
//
// Errors:
//
//    - cistern-error-mirror --
func ErrorMirror(source string, cause error) error {
	result := serum.Errorf(ECodeMirror,
		"mirroring %q failed: %w", source, cause)
	addDetails(result, [][2]string{
		{"source", source},
	})
	return result
}

// addDetails is a helper method to get around the fact that doing a type coercion within
// an expoerted function is not currently allowed by serum.
// We won't need this if serum supports an equivalent to %w in message templates OR
// supports adding details when using serum.Errorf
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
