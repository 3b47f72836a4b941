package auth

// Identity represents the participant a credential resolves to
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Method identifies which credential authenticated a request
type Method string

const (
	MethodToken  Method = "token"
	MethodCookie Method = "cookie"
)

// Context is the per-request result of successful authentication.
// Exactly one of SessionID or Token is set, depending on Method.
type Context struct {
	Identity  Identity
	Method    Method
	ExpiresAt int64 // epoch milliseconds
	SessionID string
	Token     string
}
