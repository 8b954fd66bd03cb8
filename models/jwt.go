package models

// AdminJWT carries the claims accepted on admin routes.
type AdminJWT struct {
	Issuer    string   `json:"iss"` // optional
	Subject   string   `json:"sub"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
	Scopes    []string `json:"scopes,omitempty"` // e.g. "runs", "export"
}

// HasScope reports whether the token grants scope. A token without scopes grants all.
func (c AdminJWT) HasScope(scope string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
