// Typed errors shared across services. The socket layer and the REST error
// middleware decide status codes from these types; services never pick codes.
package apperror

import "fmt"

// ValidationError covers malformed input: bad room identifiers, empty frames.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AuthError covers missing or unresolvable credentials.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// NotFoundError covers lookups for entities that do not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// UpstreamError covers failures of external capabilities (LLM, cache,
// extraction backends). It is never swallowed: callers decide whether to
// retry, close, or surface an error frame.
type UpstreamError struct {
	Capability string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Capability, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
