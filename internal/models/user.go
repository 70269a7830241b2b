package models

import "strings"

// User represents a user record owned by the users backend
type User struct {
	ID           int    `json:"id"`
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Roles        string `json:"roles"`
}

// UserDraft is the payload of a user that was not created yet.
// The backend assigns the ID, so the draft has none.
type UserDraft struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Roles        string `json:"roles"`
}

// HasRequiredFields reports whether every text field is present
func (d UserDraft) HasRequiredFields() bool {
	return hasText(d.FullName, d.MobileNumber, d.Email, d.Roles)
}

// HasRequiredFields reports whether every text field is present
func (u User) HasRequiredFields() bool {
	return hasText(u.FullName, u.MobileNumber, u.Email, u.Roles)
}

func hasText(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type FormMode string

// FormMode constants
const (
	FormNone FormMode = "none"
	FormAdd  FormMode = "add"
	FormEdit FormMode = "edit"
)
