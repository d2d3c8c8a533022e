package models

import (
	"errors"
	"golang.org/x/crypto/bcrypt"
	"html"
	"strings"
)

// User is an administrative account. Articles reference it as their author.
type User struct {
	Model
	Username string `gorm:"size:150;not null;unique" json:"username"`
	Email    string `gorm:"size:254" json:"email"`
	Password string `gorm:"size:100;not null" json:"-" mapstructure:"password"`
}

// Hash returns the bcrypt hash of password.
func Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword compares a bcrypt hash with its possible plaintext equivalent.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Prepare normalizes user input before validation.
func (u *User) Prepare() {
	u.Username = html.EscapeString(strings.TrimSpace(u.Username))
	u.Email = html.EscapeString(strings.TrimSpace(u.Email))
}

// Validate checks the fields required for a login.
func (u *User) Validate() error {
	if len(u.Username) == 0 {
		return errors.New("required username")
	}
	if len(u.Password) == 0 {
		return errors.New("required password")
	}
	return nil
}

// SetPassword replaces the password with its bcrypt hash.
func (u *User) SetPassword(password string) error {
	if len(password) == 0 {
		return errors.New("required password")
	}
	hashed, err := Hash(password)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}
