// Package serverid signs upload record ids before they are handed to the
// browser, so a submitted form can only reference uploads this server issued.
package serverid

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalid = errors.New("invalid server id")

type claims struct {
	UploadID string `json:"id"`
	jwtlib.RegisteredClaims
}

type Codec struct {
	secret []byte
}

func New(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(id string) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims{
		UploadID: id,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt: jwtlib.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(c.secret)
}

func (c *Codec) Decode(serverID string) (string, error) {
	token, err := jwtlib.ParseWithClaims(serverID, &claims{}, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalid
	}

	cl, ok := token.Claims.(*claims)
	if !ok || cl.UploadID == "" {
		return "", ErrInvalid
	}
	return cl.UploadID, nil
}
