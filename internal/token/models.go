package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/libdesk/internal/person"
)

// Claims identify the desk operator behind a request. Sub carries the
// registry username.
type Claims struct {
	Role person.Role `json:"role"`
	jwt.RegisteredClaims
}
