package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid learner token")

// Learner is the identity carried by a learner token
type Learner struct {
	StudentID     string
	GuardianEmail string
}

type learnerClaims struct {
	jwt.RegisteredClaims
	GuardianEmail string `json:"guardian_email,omitempty"`
}

// LearnerTokens issues and verifies HS256 learner tokens. The account
// service shares the secret and issues tokens in production; Issue exists
// for tooling and tests.
type LearnerTokens struct {
	secret []byte
	Now    func() time.Time
}

func NewLearnerTokens(secret string) *LearnerTokens {
	return &LearnerTokens{secret: []byte(secret), Now: time.Now}
}

// Issue signs a token for the learner valid for ttl
func (t *LearnerTokens) Issue(learner Learner, ttl time.Duration) (string, error) {
	if learner.StudentID == "" {
		return "", fmt.Errorf("student ID is required")
	}
	now := t.Now()
	claims := learnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   learner.StudentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		GuardianEmail: learner.GuardianEmail,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign learner token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its learner
func (t *LearnerTokens) Parse(token string) (Learner, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Learner{}, fmt.Errorf("%w: token is required", ErrInvalidToken)
	}

	var claims learnerClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.Now),
	)
	if err != nil {
		return Learner{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Learner{}, fmt.Errorf("%w: subject is required", ErrInvalidToken)
	}
	return Learner{StudentID: claims.Subject, GuardianEmail: claims.GuardianEmail}, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
