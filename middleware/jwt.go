package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	MsgUnauthorized = "an unauthorized access"
	MsgForbidden    = "forbidden access"

	localClaims = "decoded"
	localEmail  = "email"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and verifies bearer tokens carrying a caller-supplied claim set.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, used by tests to mint expired tokens.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs claims with HS256. exp, iat and nbf are always set by the service.
func (s *TokenService) Issue(claims map[string]interface{}) (string, error) {
	now := s.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	delete(mc, "nbf")
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
func (s *TokenService) Verify(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// MapClaims.Valid uses the wall clock; re-check against the service clock.
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWT is the bearer-token gate. On success the claims and the caller email are stored in Locals.
func (g *Guard) JWT(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ErrorResponse(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return ErrorResponse(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	claims, err := g.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	email, _ := claims["email"].(string)
	c.Locals(localClaims, claims)
	c.Locals(localEmail, email)

	return c.Next()
}

// CallerEmail returns the email decoded by JWT, or "" when the route is unguarded.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}

// CallerClaims returns the full decoded claim set.
func CallerClaims(c *fiber.Ctx) jwt.MapClaims {
	claims, _ := c.Locals(localClaims).(jwt.MapClaims)
	return claims
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   true,
		"message": "Validation failed!",
		"errors":  errors,
	})
}
