package auth

import (
	"testing"

	"github.com/VannaSem/SevaSign/internal/config"
	"github.com/VannaSem/SevaSign/internal/constant"
)

// Generate a token pair and verify both to ensure VerifyJwtToken round-trips
// the payload including the role.
func TestJWT(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)

	payload := JWTPayload{
		ID:        "id1234",
		Email:     "test@gmail.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      constant.UserRoleAuthorizedSignatory,
	}

	refreshToken, accessToken, err := jwtService.GenerateRefreshAndAccessToken(payload)
	if err != nil {
		t.Fatalf("An error occurred during refresh token and access token generation. Error: %v", err)
	}

	refreshClaims, err := jwtService.VerifyJwtToken(*refreshToken)
	if err != nil {
		t.Fatalf("An error occurred during refresh token verification. Error: %v", err)
	}
	if refreshClaims.Type != constant.JWT_TYPE_REFRESH {
		t.Errorf("expected refresh token type, got %s", refreshClaims.Type)
	}

	accessClaims, err := jwtService.VerifyJwtToken(*accessToken)
	if err != nil {
		t.Fatalf("An error occurred during access token verification. Error: %v", err)
	}
	if accessClaims.Type != constant.JWT_TYPE_ACCESS {
		t.Errorf("expected access token type, got %s", accessClaims.Type)
	}
	if accessClaims.User != payload {
		t.Errorf("expected payload %+v, got %+v", payload, accessClaims.User)
	}
}

func TestVerifyJwtTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJwt(config.AuthConfig{JWT_SECRET: "secret-a"}, nil)
	verifier := NewJwt(config.AuthConfig{JWT_SECRET: "secret-b"}, nil)

	_, accessToken, err := issuer.GenerateRefreshAndAccessToken(JWTPayload{ID: "id1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := verifier.VerifyJwtToken(*accessToken); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}
