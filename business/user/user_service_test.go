package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"swiftcart/domain"
	"swiftcart/internal/repository/redis"
	"swiftcart/pkg/utils"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// resetCode builds a reset code the way ForgotPassword embeds it in the
// emailed link, so expiry handling can be tested directly.
func resetCode(key, email string, expires time.Time) (string, error) {
	plain := fmt.Sprintf("%v|%v", email, expires.Unix())
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(key))
	if err != nil {
		return "", err
	}
	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func init() {
	utils.InitJWT("test-signing-secret", time.Hour)
}

type mockUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[uint]domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	u.Password = passwordHash
	m.users[id] = u
	return nil
}

type mockTokenRepo struct {
	mu       sync.Mutex
	sessions map[string]redis.SessionData
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{sessions: make(map[string]redis.SessionData)}
}

func (m *mockTokenRepo) StoreToken(ctx context.Context, token string, data redis.SessionData, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = data
	return nil
}

func (m *mockTokenRepo) ValidateToken(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return data.UserID, nil
}

func (m *mockTokenRepo) DeleteToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type mockNotifRepo struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifRepo) SendEmail(toName, toEmail, subject, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockNotifRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// 32 bytes for AES-256
const testResetKey = "0123456789abcdef0123456789abcdef"

func newTestService() (*userService, *mockUserRepo, *mockTokenRepo, *mockNotifRepo) {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()
	notifRepo := &mockNotifRepo{}
	svc := NewUserService(userRepo, tokenRepo, notifRepo, validator.New(), testResetKey, "http://localhost:9090")
	return svc, userRepo, tokenRepo, notifRepo
}

func register(t *testing.T, svc *userService) domain.User {
	t.Helper()
	created, err := svc.Register(context.Background(), &domain.User{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return created
}

func TestRegister(t *testing.T) {
	svc, userRepo, _, _ := newTestService()

	created := register(t, svc)

	if created.Role != domain.RoleCustomer {
		t.Errorf("role = %q, want customer", created.Role)
	}
	if created.Password != "" {
		t.Error("password hash leaked in response")
	}

	stored, err := userRepo.FindByEmail(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.Password == "hunter22" {
		t.Error("password stored in plain text")
	}
	if !utils.CheckPassword("hunter22", stored.Password) {
		t.Error("stored hash does not match password")
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _, _ := newTestService()
	register(t, svc)

	_, err := svc.Register(context.Background(), &domain.User{
		Username: "asha", Email: "other@example.com", Password: "hunter22",
	})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Errorf("err = %v, want ErrDuplicateUsername", err)
	}

	_, err = svc.Register(context.Background(), &domain.User{
		Username: "asha2", Email: "asha@example.com", Password: "hunter22",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	cases := []domain.User{
		{Username: "ab", Email: "a@example.com", Password: "hunter22"},
		{Username: "asha", Email: "not-an-email", Password: "hunter22"},
		{Username: "asha", Email: "a@example.com", Password: "short"},
	}

	for i, u := range cases {
		if _, err := svc.Register(context.Background(), &u); !domain.IsValidationError(err) {
			t.Errorf("case %d: err = %v, want validation error", i, err)
		}
	}
}

func TestLoginAndLogout(t *testing.T) {
	svc, _, tokenRepo, _ := newTestService()
	register(t, svc)

	token, logged, err := svc.Login(context.Background(), "asha@example.com", "hunter22", "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if logged.Password != "" {
		t.Error("password hash leaked in login response")
	}

	userID, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "1" {
		t.Errorf("session user id = %q, want 1", userID)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := tokenRepo.ValidateToken(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Error("session survives logout")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _, _ := newTestService()
	register(t, svc)

	if _, _, err := svc.Login(context.Background(), "asha@example.com", "wrong", "", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("wrong password: err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22", "", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("unknown email: err = %v, want ErrUnauthorized", err)
	}
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	svc, _, _, notifRepo := newTestService()

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("forgot password should not reveal unknown emails, got %v", err)
	}
	if notifRepo.count() != 0 {
		t.Error("email sent for unknown address")
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	svc, _, _, notifRepo := newTestService()
	register(t, svc)

	if err := svc.ForgotPassword(context.Background(), "asha@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if notifRepo.count() != 1 {
		t.Fatalf("emails sent = %d, want 1", notifRepo.count())
	}

	code, err := resetCode(testResetKey, "asha@example.com", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("building code: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), code, "newpass99"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "asha@example.com", "newpass99", "", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "asha@example.com", "hunter22", "", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Error("old password still works after reset")
	}
}

func TestPasswordResetExpiredCode(t *testing.T) {
	svc, _, _, _ := newTestService()
	register(t, svc)

	code, err := resetCode(testResetKey, "asha@example.com", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("building code: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), code, "newpass99"); err == nil {
		t.Fatal("expired code accepted")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, userRepo, _, _ := newTestService()
	created := register(t, svc)

	updated, err := svc.UpdateProfile(context.Background(), created.ID, &domain.User{
		Username:      "asha",
		Email:         "asha@example.com",
		Address:       "12 Hill Rd",
		ContactNumber: "9900112233",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Address != "12 Hill Rd" {
		t.Errorf("address = %q", updated.Address)
	}

	stored, _ := userRepo.FindByID(context.Background(), created.ID)
	if stored.ContactNumber != "9900112233" {
		t.Errorf("contact = %q", stored.ContactNumber)
	}
}
