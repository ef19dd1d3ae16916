package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"microblog_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// ResetTokenService issues and verifies signed, time-limited password-reset
// tokens tied to a user identity.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/resettoken).
type ResetTokenService interface {
	// Issue creates a reset token for the given user ID.
	Issue(userID uint) (string, error)

	// Verify returns the user ID embedded in the token if the signature is
	// valid and the token has not expired.
	Verify(token string) (uint, error)
}

// ResetNotifier delivers the password-reset link to the user.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/mail).
type ResetNotifier interface {
	// SendPasswordReset sends a reset email carrying the given token.
	SendPasswordReset(ctx context.Context, user *entity.User, token string) error
}

// passwordResetUsecase implements the password-recovery flow.
type passwordResetUsecase struct {
	users    UserRepository
	tokens   ResetTokenService
	notifier ResetNotifier
}

// NewPasswordResetUsecase creates a new passwordResetUsecase instance.
func NewPasswordResetUsecase(users UserRepository, tokens ResetTokenService, notifier ResetNotifier) *passwordResetUsecase {
	return &passwordResetUsecase{users: users, tokens: tokens, notifier: notifier}
}

// RequestReset emails a reset link to the account registered under email.
// An unknown email is not an error: the caller must behave identically in
// both cases so the endpoint cannot be used to probe registered addresses.
func (u *passwordResetUsecase) RequestReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := u.notifier.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// VerifyToken resolves a reset token to the user it was issued for.
// Invalid, expired or foreign tokens yield ErrInvalidResetToken.
func (u *passwordResetUsecase) VerifyToken(ctx context.Context, token string) (*entity.User, error) {
	userID, err := u.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	return user, nil
}

// ResetPassword verifies the token and stores a new password hash for the
// resolved user.
func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, password string) error {
	user, err := u.VerifyToken(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	return u.users.Update(ctx, user)
}
