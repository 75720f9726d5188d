package security

import (
	"errors"
	"testing"
	"time"

	"github.com/waichatt/console/internal/models"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, ClientID: 7, Email: "admin@example.com", Role: models.RoleAdmin}
	token, errIssue := IssueSessionToken("secret", time.Hour, user)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}

	claims, errParse := ParseSessionToken("secret", token)
	if errParse != nil {
		t.Fatalf("ParseSessionToken: %v", errParse)
	}
	if claims.UserID != 42 || claims.ClientID != 7 {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", claims.Role)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	token, errIssue := IssueSessionToken("secret", time.Hour, user)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}
	if _, errParse := ParseSessionToken("other", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", errParse)
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	// A non-positive expiry falls back to a valid default, so use a tiny
	// positive expiry and let it lapse.
	user := &models.User{ID: 1, Email: "a@b.c"}
	shortToken, errShort := IssueSessionToken("secret", time.Nanosecond, user)
	if errShort != nil {
		t.Fatalf("IssueSessionToken: %v", errShort)
	}
	time.Sleep(10 * time.Millisecond)
	if _, errParse := ParseSessionToken("secret", shortToken); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", errParse)
	}
}

func TestParseSessionTokenNormalizesUnknownRole(t *testing.T) {
	user := &models.User{ID: 5, Email: "x@y.z", Role: models.Role("superuser")}
	token, errIssue := IssueSessionToken("secret", time.Hour, user)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}
	claims, errParse := ParseSessionToken("secret", token)
	if errParse != nil {
		t.Fatalf("ParseSessionToken: %v", errParse)
	}
	// Unknown roles collapse to the least-privileged level.
	if claims.Role != models.RoleUser {
		t.Fatalf("role = %q, want user", claims.Role)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, errHash := HashPassword("hunter2hunter2")
	if errHash != nil {
		t.Fatalf("HashPassword: %v", errHash)
	}
	if !CheckPassword(hashed, "hunter2hunter2") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hashed, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateTOTPSecret(t *testing.T) {
	secret, url, errGenerate := GenerateTOTPSecret("user@example.com")
	if errGenerate != nil {
		t.Fatalf("GenerateTOTPSecret: %v", errGenerate)
	}
	if secret == "" || url == "" {
		t.Fatalf("secret = %q url = %q, want both set", secret, url)
	}
	if ValidateTOTPCode(secret, "000000") && ValidateTOTPCode(secret, "999999") {
		t.Fatal("validator accepts arbitrary codes")
	}
}
