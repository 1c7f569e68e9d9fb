package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/users/model"
)

// ProfileService manages the caller's own profile. There is no cross-user
// surface; every operation is scoped to the authenticated subject.
type ProfileService struct {
	userDao model.UserDao
	logger  *zap.Logger
}

func NewProfileService(userDao model.UserDao, logger *zap.Logger) *ProfileService {
	return &ProfileService{userDao: userDao, logger: logger}
}

// GetMe fetches the caller's profile, creating a minimal one from the claims
// the first time the subject is seen.
func (s *ProfileService) GetMe(ctx context.Context, identity auth.Identity) (model.UserProfile, error) {
	if !identity.IsAuthenticated() {
		return model.UserProfile{}, apperrors.Unauthenticated()
	}

	profile, found, err := s.userDao.GetUser(ctx, identity.SubjectID)
	if err != nil {
		return model.UserProfile{}, apperrors.StoreUnavailable("could not load profile", err)
	}
	if found {
		return profile, nil
	}

	profile = model.UserProfile{
		UserID:    identity.SubjectID,
		Email:     identity.Email,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.userDao.PutUser(ctx, profile); err != nil {
		return model.UserProfile{}, apperrors.StoreUnavailable("could not create profile", err)
	}
	s.logger.Info("profile created", zap.String("userId", profile.UserID))
	return profile, nil
}

func (s *ProfileService) UpdateMe(ctx context.Context, identity auth.Identity, fields map[string]any) (model.UserProfile, error) {
	if !identity.IsAuthenticated() {
		return model.UserProfile{}, apperrors.Unauthenticated()
	}

	patch := make(map[string]any, len(fields))
	for field, value := range fields {
		if _, ok := model.UpdatableFields[field]; ok {
			patch[field] = value
		}
	}
	if len(patch) == 0 {
		return model.UserProfile{}, apperrors.InvalidRequest("no fields to update")
	}
	patch["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	profile, err := s.userDao.UpdateUser(ctx, identity.SubjectID, patch)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// First PATCH before any GET: create the row, then apply.
			if _, getErr := s.GetMe(ctx, identity); getErr != nil {
				return model.UserProfile{}, getErr
			}
			profile, err = s.userDao.UpdateUser(ctx, identity.SubjectID, patch)
			if err == nil {
				return profile, nil
			}
		}
		return model.UserProfile{}, apperrors.StoreUnavailable("could not update profile", err)
	}
	return profile, nil
}
