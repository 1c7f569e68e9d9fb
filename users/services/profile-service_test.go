package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/users/model"
)

var caller = auth.Identity{SubjectID: "user-1", Email: "user-1@example.com"}

type fakeUserDao struct {
	mu       sync.Mutex
	profiles map[string]model.UserProfile
	fail     error
}

func newFakeUserDao() *fakeUserDao {
	return &fakeUserDao{profiles: map[string]model.UserProfile{}}
}

func (dao *fakeUserDao) GetUser(_ context.Context, userID string) (model.UserProfile, bool, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return model.UserProfile{}, false, dao.fail
	}
	profile, found := dao.profiles[userID]
	return profile, found, nil
}

func (dao *fakeUserDao) PutUser(_ context.Context, profile model.UserProfile) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return dao.fail
	}
	// First writer wins, mirroring the conditional put.
	if _, exists := dao.profiles[profile.UserID]; !exists {
		dao.profiles[profile.UserID] = profile
	}
	return nil
}

func (dao *fakeUserDao) UpdateUser(_ context.Context, userID string, fields map[string]any) (model.UserProfile, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return model.UserProfile{}, dao.fail
	}
	profile, found := dao.profiles[userID]
	if !found {
		return model.UserProfile{}, model.ErrUserNotFound
	}
	for field, value := range fields {
		switch field {
		case "name":
			profile.Name = value.(string)
		case "phone":
			profile.Phone = value.(string)
		case "updatedAt":
			profile.UpdatedAt = value.(string)
		}
	}
	dao.profiles[userID] = profile
	return profile, nil
}

func TestGetMeCreatesProfileOnFirstSight(t *testing.T) {
	dao := newFakeUserDao()
	service := NewProfileService(dao, zap.NewNop())

	profile, err := service.GetMe(context.Background(), caller)

	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "user-1@example.com", profile.Email, "email seeded from the claims")
	assert.NotEmpty(t, profile.CreatedAt)
	assert.Len(t, dao.profiles, 1)
}

func TestGetMeReturnsExistingProfile(t *testing.T) {
	dao := newFakeUserDao()
	dao.profiles["user-1"] = model.UserProfile{UserID: "user-1", Name: "Ada"}
	service := NewProfileService(dao, zap.NewNop())

	profile, err := service.GetMe(context.Background(), caller)

	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name, "an existing row is never overwritten")
}

func TestGetMeUnauthenticated(t *testing.T) {
	service := NewProfileService(newFakeUserDao(), zap.NewNop())

	_, err := service.GetMe(context.Background(), auth.Identity{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated), "got %v", err)
}

func TestUpdateMeAllowlist(t *testing.T) {
	dao := newFakeUserDao()
	dao.profiles["user-1"] = model.UserProfile{UserID: "user-1"}
	service := NewProfileService(dao, zap.NewNop())

	profile, err := service.UpdateMe(context.Background(), caller, map[string]any{
		"name":   "Ada",
		"userId": "user-hijacked", // not updatable, must be dropped
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "Ada", profile.Name)
	assert.NotEmpty(t, profile.UpdatedAt)
}

func TestUpdateMeRejectsEmptyPatch(t *testing.T) {
	service := NewProfileService(newFakeUserDao(), zap.NewNop())

	_, err := service.UpdateMe(context.Background(), caller, map[string]any{"email": "x@example.com"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidRequest), "got %v", err)
}

// A PATCH that arrives before any GET must create the row and then apply.
func TestUpdateMeBeforeFirstGet(t *testing.T) {
	dao := newFakeUserDao()
	service := NewProfileService(dao, zap.NewNop())

	profile, err := service.UpdateMe(context.Background(), caller, map[string]any{"phone": "555-0101"})

	require.NoError(t, err)
	assert.Equal(t, "555-0101", profile.Phone)
	assert.Equal(t, "user-1@example.com", dao.profiles["user-1"].Email)
}

func TestUpdateMeStoreFailure(t *testing.T) {
	dao := newFakeUserDao()
	dao.fail = errors.New("connection reset")
	service := NewProfileService(dao, zap.NewNop())

	_, err := service.UpdateMe(context.Background(), caller, map[string]any{"name": "Ada"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable), "got %v", err)
}
