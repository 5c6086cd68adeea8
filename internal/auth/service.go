package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fdg312/fuel-planner/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrAuthDisabled  = errors.New("dev auth is disabled")
	ErrInvalidUserID = errors.New("user_id must be 1-64 characters of letters, digits, '-', '_' or '.'")
)

const DefaultDevUserID = "dev-user"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Service issues and verifies HS256 access tokens. The token subject is
// the owner key of the athlete's plan document.
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

// SignInDev issues a token for userID, or for DefaultDevUserID when empty.
func (s *Service) SignInDev(userID string) (*DevAuthResponse, error) {
	if s.config.AuthMode != config.AuthModeDev {
		return nil, ErrAuthDisabled
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = DefaultDevUserID
	}
	if !userIDPattern.MatchString(userID) {
		return nil, ErrInvalidUserID
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	token, err := s.generateJWT(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.config.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT returns the subject of a valid token.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
