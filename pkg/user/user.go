package user

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserDataInvalid = errors.New("invalid user data")
var ErrFamilyNotFound = errors.New("family not found")
var ErrNoFamily = errors.New("user is not a member of a family")
var ErrInvalidFamily = errors.New("invalid family data")

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	// FamilyId is the household the user shares reports with, empty when none.
	FamilyId string
}

// Family groups users of one household.
type Family struct {
	Id      string
	Name    string
	Members []User
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Uid) == "" {
		return errors.Join(ErrUserDataInvalid, errors.New("uid is required"))
	}
	if strings.TrimSpace(u.Name) == "" {
		return errors.Join(ErrUserDataInvalid, errors.New("name is required"))
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return errors.Join(ErrUserDataInvalid, errors.New("email is not valid"))
		}
	}
	return nil
}
