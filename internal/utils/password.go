package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "12345678": true, "123456789": true,
	"qwertyui": true, "qwerty123": true, "iloveyou": true, "admin123": true,
	"welcome1": true, "abc12345": true, "letmein1": true, "11111111": true,
}

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordProblems lists every rule plain breaks. The rules mirror the
// usual account-site defaults: minimum length, not entirely numeric, not a
// well-known password, not the user's own email or username.
func PasswordProblems(plain string, personal ...string) []string {
	var out []string
	if len(plain) < MinPasswordLength {
		out = append(out, "This password is too short. It must contain at least 8 characters.")
	}
	if plain != "" && strings.IndexFunc(plain, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		out = append(out, "This password is entirely numeric.")
	}
	lower := strings.ToLower(plain)
	if commonPasswords[lower] {
		out = append(out, "This password is too common.")
	}
	for _, p := range personal {
		p = strings.ToLower(strings.TrimSpace(p))
		if at := strings.IndexByte(p, '@'); at > 0 {
			p = p[:at]
		}
		if len(p) >= 3 && lower == p {
			out = append(out, "The password is too similar to your personal information.")
			break
		}
	}
	return out
}
