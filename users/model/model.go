package model

import (
	"context"
	"errors"
)

// UserProfile is keyed by the identity provider's subject id; a minimal row
// is upserted the first time an authenticated caller shows up.
type UserProfile struct {
	UserID    string `json:"userId" dynamodbav:"userId"`
	Email     string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Name      string `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Phone     string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Address   string `json:"address,omitempty" dynamodbav:"address,omitempty"`
	AvatarKey string `json:"avatarKey,omitempty" dynamodbav:"avatarKey,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

var UpdatableFields = map[string]struct{}{
	"name":      {},
	"phone":     {},
	"address":   {},
	"avatarKey": {},
}

var ErrUserNotFound = errors.New("user does not exist")

type UserDao interface {
	GetUser(ctx context.Context, userID string) (UserProfile, bool, error)
	PutUser(ctx context.Context, profile UserProfile) error
	UpdateUser(ctx context.Context, userID string, fields map[string]any) (UserProfile, error)
}
