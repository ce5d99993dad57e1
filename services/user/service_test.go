package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/errutil"
	"trustfund-backend/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	return NewService(ServiceParams{DB: db, Node: node, Config: cfg})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, RoleUser, u.Role)
	require.True(t, u.IsActive)
	require.NotEqual(t, "longenough1", u.Password)

	logged, token, err := svc.Login(ctx, "asha@example.com", "longenough1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, u.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	req := RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	}
	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, req)
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusConflict, be.Status())
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "asha@example.com", "wrongpassword")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusUnauthorized, be.Status())

	_, _, err = svc.Login(ctx, "nobody@example.com", "whatever123")
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusUnauthorized, be.Status())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.users.Update(ctx, u.ID, map[string]any{"is_active": false}))

	_, _, err = svc.Login(ctx, "asha@example.com", "longenough1")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusForbidden, be.Status())
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Phone: "9876543210"})
	require.NoError(t, err)
	require.Equal(t, "Asha", updated.FirstName)
	require.Equal(t, "9876543210", updated.PhoneNumber)
}

func TestApplyDonationAccumulates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.ApplyDonation(ctx, u.ID, 25)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, float64(workers*25), got.TotalDonated)
	require.Equal(t, int64(workers), got.DonationCount)
}

func TestApplyDonationUnknownUser(t *testing.T) {
	svc := newService(t)

	err := svc.ApplyDonation(context.Background(), "missing", 25)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestIsAdmin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)
	require.False(t, svc.IsAdmin(ctx, u.ID))

	require.NoError(t, svc.users.Update(ctx, u.ID, map[string]any{"role": RoleAdmin}))
	require.True(t, svc.IsAdmin(ctx, u.ID))

	require.False(t, svc.IsAdmin(ctx, "missing"))
}

func TestFullNameFallback(t *testing.T) {
	u := &User{}
	require.Equal(t, "Valued Donor", u.FullName())

	u = &User{FirstName: "Asha", LastName: "Verma"}
	require.Equal(t, "Asha Verma", u.FullName())
}

func TestForgotAndResetPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	raw, err := svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// the row never stores the raw token
	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetPasswordToken)
	require.NotEqual(t, raw, stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpire)

	reset, token, err := svc.ResetPassword(ctx, raw, "brandnewpass1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, u.ID, reset.ID)

	_, _, err = svc.Login(ctx, "asha@example.com", "longenough1")
	require.Error(t, err)
	_, _, err = svc.Login(ctx, "asha@example.com", "brandnewpass1")
	require.NoError(t, err)

	// single use
	_, _, err = svc.ResetPassword(ctx, raw, "anotherpass12")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestResetPasswordInvalidToken(t *testing.T) {
	svc := newService(t)

	_, _, err := svc.ResetPassword(context.Background(), "bogus", "brandnewpass1")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	raw, err := svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, svc.users.Update(ctx, u.ID, map[string]any{"reset_password_expire": expired}))

	_, _, err = svc.ResetPassword(ctx, raw, "brandnewpass1")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newService(t)

	_, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestSetProfileImage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "longenough1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetProfileImage(ctx, u.ID, "http://cdn.local/profiles/1/a.png"))

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/profiles/1/a.png", got.ProfileImage)
}
