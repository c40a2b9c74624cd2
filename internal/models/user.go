package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of caller roles
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(value string) (Role, error) {
	switch role := Role(strings.ToUpper(strings.TrimSpace(value))); role {
	case RoleUser, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

type User struct {
	Id        string    `db:"id"`
	Username  string    `db:"username"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
