package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidInitData is returned when an account line carries no usable user
var ErrInvalidInitData = errors.New("invalid init data")

// User is the Telegram user embedded in an init-data string
type User struct {
	ID        string
	FirstName string
	LastName  string
}

// Name returns "first last" with empty parts dropped
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type initUser struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// ParseInitData extracts the user from a URL-encoded init-data query string
func ParseInitData(raw string) (User, error) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	encoded := values.Get("user")
	if encoded == "" {
		return User{}, fmt.Errorf("%w: missing user field", ErrInvalidInitData)
	}

	var u initUser
	dec := json.NewDecoder(strings.NewReader(encoded))
	dec.UseNumber()
	if err := dec.Decode(&u); err != nil {
		return User{}, fmt.Errorf("%w: decode user: %v", ErrInvalidInitData, err)
	}
	if u.ID == "" {
		return User{}, fmt.Errorf("%w: user has no id", ErrInvalidInitData)
	}
	if _, err := strconv.ParseInt(u.ID.String(), 10, 64); err != nil {
		return User{}, fmt.Errorf("%w: non-integer user id %q", ErrInvalidInitData, u.ID)
	}

	return User{ID: u.ID.String(), FirstName: u.FirstName, LastName: u.LastName}, nil
}
