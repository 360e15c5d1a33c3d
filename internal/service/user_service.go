package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/repository"
	"github.com/LipeSan/worklog-web-app/internal/validate"
)

// UserService edits account settings. Rate changes apply to entries written
// afterwards only; stored entries keep their snapshot.
type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.User, error) {
	if err := validate.Profile(req); err != nil {
		return nil, err
	}
	return s.users.UpdateProfile(ctx, userID,
		strings.TrimSpace(req.FullName),
		validate.NormalizeAustralianPhone(req.Phone),
		decimal.NewFromFloat(*req.Rate).Round(2),
	)
}

func (s *UserService) UpdateRate(ctx context.Context, userID int64, req models.UpdateRateRequest) (*models.User, error) {
	if err := validate.Rate(req.Rate); err != nil {
		return nil, err
	}
	return s.users.UpdateRate(ctx, userID, decimal.NewFromFloat(*req.Rate).Round(2))
}
