// internal/services/auth_service_test.go
package services

import (
	"github.com/localbiz/directory-backend/internal/models"
)

func (s *ServiceTestSuite) TestRegisterAndLogin() {
	registered, err := s.auth.Register(s.ctx, &RegisterRequest{Name: "Lupita", Email: "Lupita@Example.com", Password: "Secret123!"})
	s.Require().NoError(err)
	s.Equal("lupita@example.com", registered.User.Email)
	s.Equal(models.UserRoleOwner, registered.User.Role)
	s.Equal("Bearer", registered.TokenType)
	s.Equal(3600, registered.ExpiresIn)

	identity, err := NewJWTIdentityResolver().Resolve(s.ctx, registered.AccessToken)
	s.Require().NoError(err)
	s.Equal(registered.User.ID, identity.UserID)
	s.Equal("owner", identity.Role)

	_, err = s.auth.Register(s.ctx, &RegisterRequest{Name: "Lupita", Email: "lupita@example.com", Password: "Secret123!"})
	s.ErrorIs(err, ErrConflict)

	_, err = s.auth.Register(s.ctx, &RegisterRequest{Name: "Lupita", Email: "other@example.com", Password: "weak"})
	s.ErrorIs(err, ErrValidation)

	loggedIn, err := s.auth.Login(s.ctx, &LoginRequest{Email: "lupita@example.com", Password: "Secret123!"})
	s.Require().NoError(err)
	s.NotNil(loggedIn.User.LastLoginAt)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "lupita@example.com", Password: "Wrong123!"})
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "nobody@example.com", Password: "Secret123!"})
	s.ErrorIs(err, ErrUnauthorized)

	refreshed, err := s.auth.RefreshToken(s.ctx, &RefreshRequest{RefreshToken: loggedIn.RefreshToken})
	s.Require().NoError(err)
	s.Equal(registered.User.ID, refreshed.User.ID)

	_, err = s.auth.RefreshToken(s.ctx, &RefreshRequest{RefreshToken: loggedIn.AccessToken})
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *ServiceTestSuite) TestSuspendedUserCannotLogin() {
	registered, err := s.auth.Register(s.ctx, &RegisterRequest{Name: "Beto", Email: "beto@example.com", Password: "Secret123!"})
	s.Require().NoError(err)

	user := registered.User
	user.Status = models.UserStatusSuspended
	s.Require().NoError(s.store.SaveUser(s.ctx, user))

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "beto@example.com", Password: "Secret123!"})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestEnsureStaff() {
	registered, err := s.auth.Register(s.ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "Secret123!"})
	s.Require().NoError(err)

	staff, err := s.auth.EnsureStaff(s.ctx, "ANA@example.com", "NewSecret123!")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, staff.ID)
	s.True(staff.IsStaff())

	loggedIn, err := s.auth.Login(s.ctx, &LoginRequest{Email: "ana@example.com", Password: "NewSecret123!"})
	s.Require().NoError(err)
	identity, err := NewJWTIdentityResolver().Resolve(s.ctx, loggedIn.AccessToken)
	s.Require().NoError(err)
	s.Equal("staff", identity.Role)

	created, err := s.auth.EnsureStaff(s.ctx, "ops@example.com", "Secret123!")
	s.Require().NoError(err)
	s.True(created.IsStaff())

	_, err = s.auth.EnsureStaff(s.ctx, "", "Secret123!")
	s.ErrorIs(err, ErrValidation)
}
