package user

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	MinPasswordLen    = 11
	MinRecoveryKeyLen = 10
)

// Validator - интерфейс для валидации пользовательских данных
type Validator interface {
	ValidateEmail(email string) error
	ValidatePassword(password string) error
}

// charClass is one required kind of character. Anything outside
// ASCII letters and digits counts as a symbol, spaces included.
type charClass struct {
	name  string
	match func(r rune) bool
}

var (
	classUpper  = charClass{"uppercase letter", func(r rune) bool { return r >= 'A' && r <= 'Z' }}
	classLower  = charClass{"lowercase letter", func(r rune) bool { return r >= 'a' && r <= 'z' }}
	classDigit  = charClass{"digit", func(r rune) bool { return r >= '0' && r <= '9' }}
	classSymbol = charClass{"special character", func(r rune) bool {
		return !classUpper.match(r) && !classLower.match(r) && !classDigit.match(r)
	}}
)

// PasswordValidator проверяет вторичный пароль и email из OAuth профиля.
type PasswordValidator struct {
	minLen   int
	required []charClass
}

// NewPasswordValidator: минимум 11 символов, заглавная буква, цифра и символ.
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLen:   MinPasswordLen,
		required: []charClass{classUpper, classDigit, classSymbol},
	}
}

func (v *PasswordValidator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not valid", email)
	}

	return nil
}

func (v *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < v.minLen {
		return fmt.Errorf("password must be at least %d characters", v.minLen)
	}

	for _, c := range v.required {
		if !strings.ContainsFunc(password, c.match) {
			return fmt.Errorf("password must contain at least one %s", c.name)
		}
	}

	return nil
}
