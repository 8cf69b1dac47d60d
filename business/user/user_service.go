package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"swiftcart/domain"
	"swiftcart/internal/repository/redis"
	"swiftcart/pkg/logger"
	"swiftcart/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// TokenRepository contract interface
type TokenRepository interface {
	StoreToken(ctx context.Context, token string, data redis.SessionData, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, token string) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

const (
	passwordResetTTL       = 15 // minutes
	SubjectPasswordReset   = "Reset Your Password"
	EmailBodyPasswordReset = `Hello %v, open the link below to choose a new password.</br></br>%v</br>note: the link is valid for %v minutes`
)

type userService struct {
	userRepo            UserRepository
	tokenRepo           TokenRepository
	notifRepo           NotificationRepository
	validate            *validator.Validate
	appPasswordResetKey string
	appDeploymentUrl    string
}

func NewUserService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	notifRepo NotificationRepository,
	validate *validator.Validate,
	appPasswordResetKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:            userRepo,
		tokenRepo:           tokenRepo,
		notifRepo:           notifRepo,
		validate:            validate,
		appPasswordResetKey: appPasswordResetKey,
		appDeploymentUrl:    appDeploymentUrl,
	}
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Username, "required,min=3"); err != nil {
		logger.Error("Invalid username", err)
		return domain.User{}, domain.NewValidationError(err)
	}

	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, domain.NewValidationError(err)
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, domain.NewValidationError(err)
	}

	if existing, err := s.userRepo.FindByUsername(ctx, user.Username); err == nil && existing.ID > 0 {
		logger.Error("Username already taken")
		return domain.User{}, domain.ErrDuplicateUsername
	}

	if existing, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil && existing.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, domain.ErrDuplicateEmail
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		Username:      user.Username,
		Email:         user.Email,
		Password:      passwordHash,
		Address:       user.Address,
		ContactNumber: user.ContactNumber,
		Role:          domain.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return "", domain.User{}, domain.ErrUnauthorized
	}

	if ok := utils.CheckPassword(password, user.Password); !ok {
		logger.Error("User password incorrect")
		return "", domain.User{}, domain.ErrUnauthorized
	}

	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIdStr, user.Role)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	now := time.Now()
	err = s.tokenRepo.StoreToken(ctx, token, redis.SessionData{
		UserID:    userIdStr,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(utils.TokenTTL()),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}, utils.TokenTTL())
	if err != nil {
		logger.Error("Failed to store session", err)
		return "", domain.User{}, errors.New("failed to store session")
	}

	user.Password = ""
	return token, user, nil
}

// Logout invalidates the server-side session for the presented token.
func (s *userService) Logout(ctx context.Context, token string) error {
	if err := s.tokenRepo.DeleteToken(ctx, token); err != nil {
		logger.Error("Failed to delete session", err)
		return err
	}

	return nil
}

// ValidateToken is used by the auth middleware: a JWT that parses but is no
// longer in the session store counts as logged out.
func (s *userService) ValidateToken(ctx context.Context, token string) (string, error) {
	return s.tokenRepo.ValidateToken(ctx, token)
}

func (s *userService) GetProfile(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// UpdateProfile applies the non-empty fields of updateData to the user.
func (s *userService) UpdateProfile(ctx context.Context, id uint, updateData *domain.User) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if updateData.Username != "" {
		existingUser.Username = updateData.Username
	}

	if updateData.Email != "" {
		if err := s.validate.Var(updateData.Email, "required,email"); err != nil {
			logger.Error("Invalid email format", err)
			return domain.User{}, domain.NewValidationError(err)
		}

		if other, err := s.userRepo.FindByEmail(ctx, updateData.Email); err == nil && other.ID != id {
			return domain.User{}, domain.ErrDuplicateEmail
		}

		existingUser.Email = updateData.Email
	}

	existingUser.Address = updateData.Address
	existingUser.ContactNumber = updateData.ContactNumber

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

// ForgotPassword emails an expiring reset link. It reports success even for
// unknown addresses so the endpoint cannot be used to probe accounts.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.NewValidationError(err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Warn("Password reset requested for unknown email")
		return nil
	}

	expAt := time.Now().Add(time.Minute * passwordResetTTL).Unix()
	resetCode := fmt.Sprintf("%v|%v", user.Email, expAt)
	resetCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(resetCode), []byte(s.appPasswordResetKey))
	if err != nil {
		logger.Error("Failed to encrypt reset code", err)
		return errors.New("failed to build reset link")
	}
	strEncode := goshortcute.StringtoBase64Encode(resetCodeEncrypt)
	resetLink := s.appDeploymentUrl + "/api/v1/users/reset-password/" + strEncode

	err = s.notifRepo.SendEmail(user.Username, user.Email, SubjectPasswordReset,
		fmt.Sprintf(EmailBodyPasswordReset, user.Username, resetLink, passwordResetTTL))
	if err != nil {
		logger.Warn("Failed to send password reset email", err)
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, resetCodeEncrypt, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewValidationError(err)
	}

	strDecode := goshortcute.StringtoBase64Decode(resetCodeEncrypt)
	resetCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appPasswordResetKey))
	if err != nil {
		logger.Error("Password reset code error", err)
		return domain.ErrUnauthorized
	}

	resetCode := strings.Split(resetCodeDecrypt, "|")
	if len(resetCode) != 2 {
		logger.Error("Password reset code malformed")
		return domain.ErrUnauthorized
	}

	email := resetCode[0]
	ts, err := strconv.ParseInt(resetCode[1], 10, 64)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return domain.ErrUnauthorized
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Password reset for missing user", err)
		return domain.ErrUnauthorized
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return errors.New("failed to hash password")
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		logger.Error("Failed to update password", err)
		return err
	}

	return nil
}
