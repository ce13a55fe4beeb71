// Package credentials hashes passwords and issues/verifies bearer tokens.
//
// Callers depend on Provider so tests can substitute the primitives. The default
// implementation uses bcrypt and HS256-signed JWTs.
package credentials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPassword   = errors.New("password is empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrInvalidToken    = errors.New("invalid token")
	ErrEmptySigningKey = errors.New("signing key is empty")
)

// Provider is the set of credential primitives the services depend on.
type Provider interface {
	HashPassword(plaintext string) (string, error)
	ComparePassword(plaintext, hash string) bool
	GenerateToken(userID int, email string) (string, error)
	ParseToken(token string) (Claims, error)
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}

// Options configures the default provider.
type Options struct {
	SigningKey string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

const (
	defaultTokenTTL = time.Hour
	defaultIssuer   = "user_service"
)

// BcryptJWT is the default Provider.
type BcryptJWT struct {
	key    []byte
	ttl    time.Duration
	issuer string
	cost   int
	now    func() time.Time
}

var _ Provider = (*BcryptJWT)(nil)

func NewBcryptJWT(opts Options) (*BcryptJWT, error) {
	if opts.SigningKey == "" {
		return nil, ErrEmptySigningKey
	}
	p := &BcryptJWT{
		key:    []byte(opts.SigningKey),
		ttl:    opts.TokenTTL,
		issuer: opts.Issuer,
		cost:   opts.BcryptCost,
		now:    time.Now,
	}
	if p.ttl <= 0 {
		p.ttl = defaultTokenTTL
	}
	if p.issuer == "" {
		p.issuer = defaultIssuer
	}
	if p.cost < bcrypt.MinCost || p.cost > bcrypt.MaxCost {
		p.cost = bcrypt.DefaultCost
	}
	return p, nil
}

// HashPassword returns a bcrypt hash of plaintext. Inputs longer than
// MaxPasswordBytes are rejected with ErrPasswordTooLong.
func (p *BcryptJWT) HashPassword(plaintext string) (string, error) {
	if strings.TrimSpace(plaintext) == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (p *BcryptJWT) ComparePassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// GenerateToken issues a signed JWT bound to the user id and email.
func (p *BcryptJWT) GenerateToken(userID int, email string) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Email:  email,
	})
	signed, err := token.SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm, issuer and expiry.
func (p *BcryptJWT) ParseToken(accessToken string) (Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.key, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
