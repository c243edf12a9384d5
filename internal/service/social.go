package service

import (
	"context"
	"errors"
	"fmt"

	"skillconnect/internal/store"
)

type SocialService struct {
	users UserRepository
}

func NewSocialService(users UserRepository) *SocialService {
	return &SocialService{users: users}
}

// Follow is idempotent.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followeeID == "" || followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	if err := s.users.Follow(ctx, followerID, followeeID); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return err
	}
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.users.Unfollow(ctx, followerID, followeeID)
}
