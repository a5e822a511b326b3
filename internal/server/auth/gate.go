// Package auth holds the authentication core: password hashing, token
// issuance and validation, and the authorization gate consulted by both
// transports.
package auth

import (
	"strings"

	"github.com/dmitrijs2005/userdir/internal/common"
)

// Gate turns an Authorization header value into an Identity.
type Gate struct {
	codec *TokenCodec
}

func NewGate(codec *TokenCodec) *Gate {
	return &Gate{codec: codec}
}

// Authenticate accepts only "Bearer <access token>". Every failure, whether
// a missing header, another scheme, a bad token or a refresh token, returns
// the same common.ErrUnauthenticated.
func (g *Gate) Authenticate(headerValue string) (Identity, error) {
	token, ok := strings.CutPrefix(headerValue, common.BearerPrefix)
	if !ok || token == "" {
		return Identity{}, common.ErrUnauthenticated
	}

	claims, err := g.codec.Validate(token)
	if err != nil || claims.Kind != KindAccess {
		return Identity{}, common.ErrUnauthenticated
	}

	return Identity{SubjectID: claims.Subject, SubjectEmail: claims.Email}, nil
}

// AuthorizeSelf permits a mutation only when the caller owns the target
// record. There is no administrative override.
func AuthorizeSelf(id Identity, targetID string) error {
	if id.SubjectID == "" || id.SubjectID != targetID {
		return common.ErrForbidden
	}
	return nil
}
