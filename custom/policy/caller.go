package policy

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"tailor_shop/constants"
	"tailor_shop/custom/util"
)

// Class is the authorization tier of a request.
type Class int

const (
	Anonymous Class = iota
	Authenticated
	Administrator
)

func (c Class) String() string {
	switch c {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Administrator:
		return "administrator"
	}
	return "unknown"
}

// satisfies reports whether a caller of class c is covered by a rule naming
// target. Administrators are authenticated callers as well.
func (c Class) satisfies(target Class) bool {
	return c == target || (c == Administrator && target == Authenticated)
}

const AdminRole = "admin"

// Caller is the identity a request runs as. The zero value is the anonymous caller.
type Caller struct {
	ID   string
	Role string
}

var Anon = Caller{}

func (c Caller) Class() Class {
	if c.ID == "" {
		return Anonymous
	}
	if c.Role == AdminRole {
		return Administrator
	}
	return Authenticated
}

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for caller. Used by shopctl and tests; in
// production tokens come from the identity provider sharing the secret.
func IssueToken(secret string, caller Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Anon, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Anon, errors.New("invalid token claims")
	}
	return Caller{ID: claims.Subject, Role: claims.Role}, nil
}

// CallerFromRequest resolves the caller from a Bearer token. A request without
// an Authorization header is anonymous.
func CallerFromRequest(r *http.Request, secret string) (Caller, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Anon, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Anon, errors.New("malformed authorization header")
	}
	return ParseToken(secret, parts[1])
}

type callerKey struct{}

func NewContext(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func FromContext(ctx context.Context) Caller {
	if caller, ok := ctx.Value(callerKey{}).(Caller); ok {
		return caller
	}
	return Anon
}

// Authenticate attaches the request's caller to its context before calling next.
func Authenticate(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := CallerFromRequest(r, secret)
		if err != nil {
			util.WriteError(w, &util.StoreError{Kind: util.KindUnauthenticated, Message: constants.INVALID_TOKEN, Err: err})
			return
		}
		next(w, r.WithContext(NewContext(r.Context(), caller)))
	}
}
