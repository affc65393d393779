package models

import (
	"fmt"
	"strings"
)

// Account is a locally registered user.
//
// Password is stored and compared verbatim.
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks that the fields required to persist the account are set.
func (a Account) Validate() error {
	switch {
	case a.ID == "":
		return fmt.Errorf("account id is required")
	case strings.TrimSpace(a.Email) == "":
		return fmt.Errorf("account email is required")
	case a.Password == "":
		return fmt.Errorf("account password is required")
	}
	return nil
}
