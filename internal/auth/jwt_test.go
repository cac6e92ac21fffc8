package auth

import (
	"testing"
	"time"
)

func TestBuildAndParseJWT(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	userID := "user-123"
	clinicID := "clinic-456"
	tok, err := BuildJWT(secret, userID, RoleAttendant, &clinicID, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID || claims.Role != RoleAttendant || claims.ClinicID == nil || *claims.ClinicID != clinicID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	tok, err := BuildJWT([]byte("secret-a-with-32-characters!!!!!"), "u1", RoleSuperAdmin, nil, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT([]byte("secret-b-with-32-characters!!!!!"), tok); err == nil {
		t.Fatal("ParseJWT should fail with wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	tok, err := BuildJWT(secret, "u1", RoleAttendant, nil, -time.Minute)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT(secret, tok); err == nil {
		t.Fatal("ParseJWT should reject expired token")
	}
}
