package auth

import (
	"errors"
	"time"

	"github.com/VannaSem/SevaSign/internal/config"
	"github.com/VannaSem/SevaSign/internal/constant"
	"github.com/VannaSem/SevaSign/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
}

type JWTInterface interface {
	GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("development")
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		logger:    logger,
	}
}

type JWTPayload struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Role      constant.UserRole `json:"role"`
}

type JWTClaims struct {
	User JWTPayload `json:"user"`
	Type string     `json:"type"`
	IAT  int64      `json:"iat"`
	EXP  int64      `json:"exp"`
}

// Return refreshToken, accessToken, error
func (j JWT) GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error) {
	j.logger.Debugf("Generate refresh and access token for userId: %s", payload.ID)

	// Create refresh token with 7-day expiration
	refreshClaims := jwt.MapClaims{
		"user": payload,
		"type": constant.JWT_TYPE_REFRESH,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err := refresh.SignedString([]byte(j.jwtSecret))
	if err != nil {
		return nil, nil, err
	}

	// Create access token with 5-minute expiration
	accessClaims := jwt.MapClaims{
		"user": payload,
		"type": constant.JWT_TYPE_ACCESS,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(5 * time.Minute).Unix(),
	}
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err := access.SignedString([]byte(j.jwtSecret))
	if err != nil {
		return nil, nil, err
	}

	return &refreshToken, &accessToken, nil
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.jwtSecret), nil
	})
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid token: user field is missing or malformed")
	}

	tokenType, ok := claims["type"].(string)
	if !ok {
		return nil, errors.New("invalid token: type field is missing or malformed")
	}

	payload := JWTPayload{}
	if id, ok := user["id"].(string); ok {
		payload.ID = id
	}
	if email, ok := user["email"].(string); ok {
		payload.Email = email
	}
	if firstName, ok := user["firstName"].(string); ok {
		payload.FirstName = firstName
	}
	if lastName, ok := user["lastName"].(string); ok {
		payload.LastName = lastName
	}
	if role, ok := user["role"].(string); ok {
		payload.Role = constant.UserRole(role)
	}

	if payload.ID == "" {
		return nil, errors.New("invalid token: user id is missing")
	}

	return &JWTClaims{
		User: payload,
		Type: tokenType,
		IAT:  int64(claims["iat"].(float64)),
		EXP:  int64(claims["exp"].(float64)),
	}, nil
}
