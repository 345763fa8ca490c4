package gemini

import "time"

// Kind discriminates the classified result of one generate call.
type Kind string

const (
	// KindImage means the response carried a usable inline image part.
	KindImage Kind = "image"
	// KindBlocked means the model declined, either via a non-STOP finish
	// reason or by returning no candidate at all.
	KindBlocked Kind = "blocked"
	// KindTimeout means the call exceeded the configured deadline.
	KindTimeout Kind = "timeout"
	// KindEmpty means the response was structurally fine but contained no
	// image part. A caption-only response lands here: image presence, not
	// text presence, determines success.
	KindEmpty Kind = "empty"
	// KindTransport means the call itself failed (network, auth, quota).
	KindTransport Kind = "transport"
)

// ErrorTag sub-classifies transport failures for caller-facing messaging.
type ErrorTag string

const (
	TagTimeout    ErrorTag = "timeout"
	TagPermission ErrorTag = "permission"
	TagSafety     ErrorTag = "safety"
	TagCredential ErrorTag = "credential"
	TagGeneric    ErrorTag = "generic"
)

// Outcome is the uniform result of one remote generate call. Exactly one
// Kind applies; the other fields are populated as that kind requires.
type Outcome struct {
	Kind Kind

	// KindImage
	Image     []byte
	MediaType string
	// Caption holds any text part that arrived alongside (or instead of)
	// the image. Informational only.
	Caption string

	// KindBlocked
	BlockReason string
	BlockDetail string

	// KindTransport
	ErrTag ErrorTag
	Err    string

	Elapsed time.Duration
}
