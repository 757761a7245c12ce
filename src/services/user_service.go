package services

import (
	"context"
	"fmt"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/security/validation"
)

type userServiceImpl struct {
	api        *apiclient.Client
	dashboards DashboardService
}

func NewUserService(api *apiclient.Client, dashboards DashboardService) UserService {
	return &userServiceImpl{api: api, dashboards: dashboards}
}

func (s *userServiceImpl) Me(ctx context.Context, p *Principal) (*models.User, error) {
	return s.api.Me(ctx, p.Token)
}

func (s *userServiceImpl) List(ctx context.Context, p *Principal) ([]models.User, error) {
	return s.api.ListUsers(ctx, p.Token)
}

func (s *userServiceImpl) Create(ctx context.Context, p *Principal, in models.UserCreate) (*models.User, error) {
	if err := validation.ValidateUserCreate(&in); err != nil {
		return nil, err
	}
	u, err := s.api.CreateUser(ctx, p.Token, in)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("User created", "adminID", p.UserID, "newUserID", u.ID, "role", u.Role)
	return u, nil
}

func (s *userServiceImpl) Update(ctx context.Context, p *Principal, id int64, in models.UserUpdate) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid user id %d", validation.ErrValidationFailed, id)
	}
	if err := validation.ValidateUserUpdate(&in, true); err != nil {
		return nil, err
	}
	u, err := s.api.UpdateUser(ctx, p.Token, id, in)
	if err != nil {
		return nil, err
	}
	// Initial capital feeds the capital series.
	s.dashboards.InvalidateUser(id)
	logger.FromContext(ctx).Info("User updated", "adminID", p.UserID, "userID", id)
	return u, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, p *Principal, in models.UserUpdate) (*models.User, error) {
	if err := validation.ValidateUserUpdate(&in, false); err != nil {
		return nil, err
	}
	u, err := s.api.UpdateProfile(ctx, p.Token, p.UserID, in)
	if err != nil {
		return nil, err
	}
	s.dashboards.InvalidateUser(p.UserID)
	return u, nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, p *Principal, in models.PasswordChange) error {
	if err := validation.ValidatePasswordChange(in); err != nil {
		return err
	}
	if err := s.api.ChangePassword(ctx, p.Token, in); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Password changed", "userID", p.UserID)
	return nil
}
