package domain

// Credential is an ephemeral username/secret pair supplied by the end user.
// It lives only in session memory, is never persisted, and is discarded on
// logout.
type Credential struct {
	Username string `json:"-"`
	Password string `json:"-"`
}

// AuthoritySource identifies which credential backs an outbound call.
type AuthoritySource string

const (
	SourceSession     AuthoritySource = "session"
	SourceFallback    AuthoritySource = "fallback"
	SourceUnavailable AuthoritySource = "unavailable"
)

// Authority is whatever signs an outbound call to the ticketing service:
// either a personal credential (basic auth) or the configured fallback API
// key. Exactly one of Credential / APIKey is set.
type Authority struct {
	Source     AuthoritySource
	Credential *Credential
	APIKey     string
	// Username is the login the authority acts as. For a personal
	// credential it matches Credential.Username; for the fallback it is
	// the session user the call is performed on behalf of.
	Username string
}
