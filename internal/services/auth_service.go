package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ticketera/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const defaultTokenTTL = 12 * time.Hour

// Claims: payload of admin access tokens.
type Claims struct {
	Username string `json:"username"`
	RoleID   int    `json:"role_id"`
	jwt.RegisteredClaims
}

type AuthService interface {
	HashPassword(password string) (string, error)
	Login(username, password string) (string, *models.AdminUser, error)
	ParseToken(token string) (*Claims, error)
}

type authService struct {
	secret []byte
	ttl    time.Duration
	users  map[string]models.AdminUser
	now    func() time.Time
}

func NewAuthService(secret string, ttl time.Duration, users []models.AdminUser) AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	byName := make(map[string]models.AdminUser, len(users))
	for _, u := range users {
		byName[strings.ToLower(strings.TrimSpace(u.Username))] = u
	}
	return &authService{secret: []byte(secret), ttl: ttl, users: byName, now: time.Now}
}

func (s *authService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) Login(username, password string) (string, *models.AdminUser, error) {
	u, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok || strings.TrimSpace(u.PasswordHash) == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Username: u.Username,
		RoleID:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

// ParseToken accepts HMAC-signed tokens only.
func (s *authService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(2*time.Minute))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
