package security

import (
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
)

// totpIssuer is shown in authenticator apps next to the account email.
const totpIssuer = "waichatt-console"

// GenerateTOTPSecret creates a new TOTP secret for the given account email.
// Returns the secret and its otpauth provisioning URL.
func GenerateTOTPSecret(email string) (secret string, url string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: strings.TrimSpace(email),
	})
	if errGenerate != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", errGenerate)
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTPCode reports whether code matches the stored secret.
func ValidateTOTPCode(secret, code string) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
