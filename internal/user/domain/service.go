package domain

import (
	"context"
	"errors"
	"strings"
)

type UpsertUserRequest struct {
	UID         string
	DisplayName string
	Email       string
	AvatarURL   string
}

type Service interface {
	Upsert(ctx context.Context, req UpsertUserRequest) (User, error)
	GetByUID(ctx context.Context, uid string) (User, error)
}

var (
	ErrInvalidUID = errors.New("invalid_uid")
	ErrNotFound   = errors.New("user_not_found")
)

func splitName(name string) []string {
	return strings.Fields(strings.TrimSpace(name))
}

func joinName(fields []string) string {
	return strings.Join(fields, " ")
}
