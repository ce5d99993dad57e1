package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/repository"
	"trustfund-backend/pkg/task"
	"trustfund-backend/pkg/taskname"
	"trustfund-backend/pkg/util"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	config *config.Config

	users    repository.Repository[User]
	enqueuer task.Enqueuer
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Config   *config.Config
	Enqueuer task.Enqueuer `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		config:   p.Config,
		users:    repository.ProvideStore[User](p.DB),
		enqueuer: p.Enqueuer,
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string `json:"lastName" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=100"`
	Phone     string `json:"phone"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	existing, err := s.users.FindOne(ctx, &User{Email: req.Email})
	if err != nil {
		return nil, "", errutil.Internal("failed to look up user", errutil.WithErr(err))
	}
	if existing != nil {
		return nil, "", errutil.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	u := &User{
		ID:          s.node.Generate().String(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    string(hash),
		PhoneNumber: req.Phone,
		Role:        RoleUser,
		IsActive:    true,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", errutil.Conflict("email already registered")
		}
		return nil, "", errutil.Internal("failed to create user", errutil.WithErr(err))
	}

	s.enqueueWelcomeEmail(u)

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		return nil, "", errutil.Internal("failed to look up user", errutil.WithErr(err))
	}
	if u == nil {
		return nil, "", errutil.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", errutil.Unauthorized("Invalid credentials")
	}

	if !u.IsActive {
		return nil, "", errutil.Forbidden("Account deactivated")
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.users.FindOne(ctx, &User{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to look up user", errutil.WithErr(err))
	}
	if u == nil {
		return nil, errutil.NotFound("user not found")
	}
	return u, nil
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (s *Service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	updates := map[string]any{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Phone != "" {
		updates["phone_number"] = req.Phone
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, id, updates); err != nil {
			return nil, errutil.Internal("failed to update profile", errutil.WithErr(err))
		}
	}

	return s.Get(ctx, id)
}

const resetTokenTTL = 10 * time.Minute

// The raw token travels only in the email link; the row stores its hash.
func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword stores a hashed single-use reset token against the account
// and emails a reset link carrying the raw token. The raw token is returned
// so callers holding the mail path out of band can still complete the flow.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		return "", errutil.Internal("failed to look up user", errutil.WithErr(err))
	}
	if u == nil {
		return "", errutil.NotFound("User not found")
	}

	raw := util.RandomHex(20)
	expire := time.Now().Add(resetTokenTTL)
	if err := s.users.Update(ctx, u.ID, map[string]any{
		"reset_password_token":  hashResetToken(raw),
		"reset_password_expire": expire,
	}); err != nil {
		return "", errutil.Internal("failed to store reset token", errutil.WithErr(err))
	}

	s.enqueueResetEmail(u, raw)

	return raw, nil
}

// ResetPassword redeems a reset token: the stored hash must match and must
// not have expired. The token is cleared on success so it is single use.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) (*User, string, error) {
	u, err := s.users.FindOne(ctx, &User{ResetPasswordToken: hashResetToken(rawToken)})
	if err != nil {
		return nil, "", errutil.Internal("failed to look up user", errutil.WithErr(err))
	}
	if u == nil || u.ResetPasswordExpire == nil || time.Now().After(*u.ResetPasswordExpire) {
		return nil, "", errutil.BadRequest("Invalid or expired token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	if err := s.users.Update(ctx, u.ID, map[string]any{
		"password":              string(hash),
		"reset_password_token":  "",
		"reset_password_expire": nil,
	}); err != nil {
		return nil, "", errutil.Internal("failed to reset password", errutil.WithErr(err))
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *Service) SetProfileImage(ctx context.Context, id, url string) error {
	if err := s.users.Update(ctx, id, map[string]any{"profile_image": url}); err != nil {
		return errutil.Internal("failed to set profile image", errutil.WithErr(err))
	}
	return nil
}

// IsAdmin reports whether the user exists and holds the admin role.
func (s *Service) IsAdmin(ctx context.Context, id string) bool {
	u, err := s.users.FindOne(ctx, &User{ID: id})
	return err == nil && u != nil && u.Role == RoleAdmin
}

// ApplyDonation is the donor aggregate updater: a single atomic increment of
// total_donated and donation_count. It is the only mutation path for the two
// aggregate fields.
func (s *Service) ApplyDonation(ctx context.Context, userID string, amount float64) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_donated":  gorm.Expr("total_donated + ?", amount),
			"donation_count": gorm.Expr("donation_count + 1"),
		})
	if res.Error != nil {
		return errutil.Internal("failed to update donor totals", errutil.WithErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("user not found")
	}
	return nil
}

func (s *Service) issueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(s.config.Auth.TokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return "", errutil.Internal("failed to sign token", errutil.WithErr(err))
	}
	return signed, nil
}

type WelcomeEmailPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type ResetEmailPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

func (s *Service) enqueueResetEmail(u *User, rawToken string) {
	if s.enqueuer == nil {
		return
	}

	payload, err := json.Marshal(ResetEmailPayload{
		Email:    u.Email,
		ResetURL: fmt.Sprintf("%s/resetpassword/%s", s.config.FrontendURL, rawToken),
	})
	if err != nil {
		return
	}

	if _, err := s.enqueuer.Enqueue(asynq.NewTask(taskname.EmailPasswordReset, payload), asynq.Queue("critical")); err != nil {
		zap.L().Warn("failed to enqueue reset email", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// Best effort: a failed enqueue never fails the registration.
func (s *Service) enqueueWelcomeEmail(u *User) {
	if s.enqueuer == nil {
		return
	}

	payload, err := json.Marshal(WelcomeEmailPayload{Email: u.Email, FirstName: u.FirstName})
	if err != nil {
		return
	}

	if _, err := s.enqueuer.Enqueue(asynq.NewTask(taskname.EmailWelcome, payload), asynq.Queue("low")); err != nil {
		zap.L().Warn("failed to enqueue welcome email", zap.String("user_id", u.ID), zap.Error(err))
	}
}
