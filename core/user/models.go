package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/tourney/core"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	PasswordHash []byte `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"inputUsername" form:"inputUsername" validate:"required,min=3,max=64,alphanum_"`
	Email           string `json:"inputEmail" form:"inputEmail" validate:"required,email"`
	Password        string `json:"inputPassword" form:"inputPassword" validate:"required"`
	PasswordConfirm string `json:"inputConfirmPassword" form:"inputConfirmPassword" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nu.Username = core.CleanLower(nu.Username)
	nu.Email = core.CleanLower(nu.Email)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// Credentials are what a user logs in with.
type Credentials struct {
	Username string `json:"username" form:"inputUsername" validate:"required"`
	Password string `json:"password" form:"inputPassword" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanLower(c.Username)
	return validate.Struct(c)
}

// GetFilter selects a single User. Set fields are OR-ed.
type GetFilter struct {
	ID              string
	UsernameOrEmail []string
}
