package api

import (
	"context"
	"strings"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"
)

// Identity is the authenticated caller as supplied by the session layer.
type Identity struct {
	UserID string
	Role   models.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

func (id Identity) validate() error {
	if strings.TrimSpace(id.UserID) == "" {
		return store.Forbidden("Authentication required")
	}
	switch id.Role {
	case models.RoleUser, models.RoleAdmin:
		return nil
	default:
		return store.Forbidden("Unknown role")
	}
}

func requireAdmin(id Identity) error {
	if err := id.validate(); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return store.Forbidden("Admin role required")
	}
	return nil
}

// requireCardAccess lets admins through and otherwise requires ownership.
func (s *CardService) requireCardAccess(ctx context.Context, id Identity, cardId string) error {
	if err := id.validate(); err != nil {
		return err
	}
	if id.IsAdmin() {
		return nil
	}
	return s.requireCardOwner(ctx, id, cardId)
}

// requireCardOwner enforces ownership for every role.
func (s *CardService) requireCardOwner(ctx context.Context, id Identity, cardId string) error {
	if err := id.validate(); err != nil {
		return err
	}
	owned, err := s.store.IsCardOwnedBy(ctx, cardId, id.UserID)
	if err != nil {
		return err
	}
	if !owned {
		return store.Forbidden("Access denied to this card")
	}
	return nil
}
