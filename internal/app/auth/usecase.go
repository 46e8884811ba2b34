package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"dayplan/internal/app/ports"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidRequest = errors.New("invalid auth request")
	ErrInvalidToken   = errors.New("invalid bearer token")
)

const defaultTokenTTL = 24 * time.Hour

// TokenIssuer mints and verifies the bearer tokens the HTTP layer uses
// to identify a user. HS256 only.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t TokenIssuer) Issue(userID string) (string, error) {
	if len(t.Secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrInvalidRequest
	}
	now := t.now()
	ttl := t.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t TokenIssuer) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(t.Secret) == 0 {
		return "", ErrInvalidToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if t.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(t.Now))
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (t TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

// RegisterUseCase looks an email up or provisions a new user with an
// empty profile, and returns a bearer token either way.
type RegisterUseCase struct {
	Users     ports.UserRepository
	Profiles  ports.ProfileRepository
	TxManager ports.TxManager
	Tokens    TokenIssuer
	Now       func() time.Time
}

type RegisterRequest struct {
	Email string
}

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
	IssuedAt string `json:"issued_at"`
}

func (u RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return RegisterResponse{}, ErrInvalidRequest
	}
	if u.Users == nil || u.Profiles == nil || u.TxManager == nil {
		return RegisterResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	existing, err := u.Users.GetByEmail(ctx, email)
	if err == nil {
		return u.respond(existing.UserID, now)
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return RegisterResponse{}, err
	}

	userID, err := newUserID(now)
	if err != nil {
		return RegisterResponse{}, err
	}
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.Users.Create(txCtx, ports.UserRecord{
			UserID:    userID,
			Email:     email,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return u.Profiles.Save(txCtx, ports.ProfileRecord{UserID: userID, UpdatedAt: now})
	})
	if errors.Is(err, ports.ErrConflict) {
		// Concurrent registration with the same email; the earlier row wins.
		winner, lookupErr := u.Users.GetByEmail(ctx, email)
		if lookupErr != nil {
			return RegisterResponse{}, lookupErr
		}
		return u.respond(winner.UserID, now)
	}
	if err != nil {
		return RegisterResponse{}, err
	}
	return u.respond(userID, now)
}

func (u RegisterUseCase) respond(userID string, now time.Time) (RegisterResponse, error) {
	token, err := u.Tokens.Issue(userID)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		UserID:   userID,
		Token:    token,
		IssuedAt: now.Format(time.RFC3339),
	}, nil
}

func newUserID(now time.Time) (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "usr_" + now.Format("20060102") + "_" + base64.RawURLEncoding.EncodeToString(b), nil
}
