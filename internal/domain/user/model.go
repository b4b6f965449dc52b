package user

import "time"

type User struct {
	ID                  int
	Email               string
	Name                string
	OAuthSubject        string
	PasswordHash        string // вторичный пароль, хэш
	RecoveryKeyHash     string
	OnboardingCompleted bool
	LastSeen            *time.Time
	CreatedAt           time.Time
}

func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u User) HasRecoveryKey() bool {
	return u.RecoveryKeyHash != ""
}
