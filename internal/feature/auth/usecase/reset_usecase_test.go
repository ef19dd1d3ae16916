package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"microblog_backend/internal/feature/auth/domain/entity"
)

// mockTokenService is a mock implementation of the ResetTokenService interface.
type mockTokenService struct {
	IssueFunc  func(userID uint) (string, error)
	VerifyFunc func(token string) (uint, error)
}

func (m *mockTokenService) Issue(userID uint) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(userID)
	}
	return "mock-token", nil
}

func (m *mockTokenService) Verify(token string) (uint, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return 0, errors.New("invalid token") // Default: failure
}

// mockNotifier is a mock implementation of the ResetNotifier interface.
type mockNotifier struct {
	SendFunc  func(ctx context.Context, user *entity.User, token string) error
	sentTo    []uint
	sentToken string
}

func (m *mockNotifier) SendPasswordReset(ctx context.Context, user *entity.User, token string) error {
	m.sentTo = append(m.sentTo, user.ID)
	m.sentToken = token
	if m.SendFunc != nil {
		return m.SendFunc(ctx, user, token)
	}
	return nil
}

func TestPasswordResetUsecase_RequestReset(t *testing.T) {
	ctx := context.Background()
	testUser := &entity.User{ID: 3, Username: "alice", Email: "a@x.com"}

	t.Run("known email sends a token", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				if email == testUser.Email {
					return testUser, nil
				}
				return nil, ErrUserNotFound
			},
		}
		tokens := &mockTokenService{
			IssueFunc: func(userID uint) (string, error) {
				if userID != testUser.ID {
					t.Errorf("token issued for wrong user: %d", userID)
				}
				return "issued-token", nil
			},
		}
		notifier := &mockNotifier{}

		uc := NewPasswordResetUsecase(mockRepo, tokens, notifier)
		err := uc.RequestReset(ctx, "a@x.com")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.sentTo) != 1 || notifier.sentTo[0] != testUser.ID {
			t.Errorf("expected one mail to user %d, got %v", testUser.ID, notifier.sentTo)
		}
		if notifier.sentToken != "issued-token" {
			t.Errorf("expected issued token in mail, got %q", notifier.sentToken)
		}
	})

	t.Run("unknown email is silently ignored", func(t *testing.T) {
		mockRepo := &mockUserRepository{}
		notifier := &mockNotifier{}

		uc := NewPasswordResetUsecase(mockRepo, &mockTokenService{}, notifier)
		err := uc.RequestReset(ctx, "nobody@x.com")

		// 登録済みメールと区別できないよう、エラーにしない
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.sentTo) != 0 {
			t.Errorf("no mail should be sent for an unknown email")
		}
	})
}

func TestPasswordResetUsecase_VerifyToken(t *testing.T) {
	ctx := context.Background()
	testUser := &entity.User{ID: 3, Username: "alice"}

	t.Run("valid token resolves the user", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				if id == testUser.ID {
					return testUser, nil
				}
				return nil, ErrUserNotFound
			},
		}
		tokens := &mockTokenService{
			VerifyFunc: func(token string) (uint, error) { return testUser.ID, nil },
		}

		uc := NewPasswordResetUsecase(mockRepo, tokens, &mockNotifier{})
		user, err := uc.VerifyToken(ctx, "good-token")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != testUser.ID {
			t.Errorf("expected user %d, got %d", testUser.ID, user.ID)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := NewPasswordResetUsecase(&mockUserRepository{}, &mockTokenService{}, &mockNotifier{})

		_, err := uc.VerifyToken(ctx, "bad-token")
		if !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("expected ErrInvalidResetToken, got: %v", err)
		}
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		tokens := &mockTokenService{
			VerifyFunc: func(token string) (uint, error) { return 99, nil },
		}
		uc := NewPasswordResetUsecase(&mockUserRepository{}, tokens, &mockNotifier{})

		_, err := uc.VerifyToken(ctx, "orphan-token")
		if !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("expected ErrInvalidResetToken, got: %v", err)
		}
	})
}

func TestPasswordResetUsecase_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a new hash", func(t *testing.T) {
		testUser := &entity.User{ID: 3, Username: "alice", Password: "old-hash"}
		var updated *entity.User
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				return testUser, nil
			},
			UpdateFunc: func(ctx context.Context, user *entity.User) error {
				updated = user
				return nil
			},
		}
		tokens := &mockTokenService{
			VerifyFunc: func(token string) (uint, error) { return testUser.ID, nil },
		}

		uc := NewPasswordResetUsecase(mockRepo, tokens, &mockNotifier{})
		err := uc.ResetPassword(ctx, "good-token", "newpw456")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated == nil {
			t.Fatal("user was not updated")
		}
		if updated.Password == "newpw456" {
			t.Error("password stored in plaintext")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpw456")); err != nil {
			t.Errorf("invalid bcrypt hash: %v", err)
		}
	})

	t.Run("invalid token leaves the password untouched", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			UpdateFunc: func(ctx context.Context, user *entity.User) error {
				t.Error("Update must not be called for an invalid token")
				return nil
			},
		}

		uc := NewPasswordResetUsecase(mockRepo, &mockTokenService{}, &mockNotifier{})
		err := uc.ResetPassword(ctx, "bad-token", "newpw456")

		if !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("expected ErrInvalidResetToken, got: %v", err)
		}
	})
}
