package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog_backend/internal/feature/auth/domain/entity"
	"microblog_backend/internal/feature/auth/transport/http/dto"
	"microblog_backend/internal/platform/session"
)

// PasswordResetUsecase defines the password-recovery operations.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PasswordResetUsecase interface {
	// RequestReset emails a reset link when the address is registered.
	// Unknown addresses succeed silently.
	RequestReset(ctx context.Context, email string) error
	// VerifyToken resolves a reset token to its user.
	VerifyToken(ctx context.Context, token string) (*entity.User, error)
	// ResetPassword verifies the token and stores the new password.
	ResetPassword(ctx context.Context, token, password string) error
}

// ResetHandler handles the password-reset request and confirmation pages.
type ResetHandler struct {
	reset    PasswordResetUsecase
	sessions SessionManager
}

// NewResetHandler creates a new ResetHandler instance.
func NewResetHandler(reset PasswordResetUsecase, sessions SessionManager) *ResetHandler {
	return &ResetHandler{reset: reset, sessions: sessions}
}

// RequestReset handles /reset_password_request.
// Authenticated users are redirected home. A valid submission always
// flashes the same generic message and redirects to login, whether or not
// the email is registered, so the endpoint cannot be used to probe accounts.
func (h *ResetHandler) RequestReset(c *gin.Context) {
	if _, ok := session.UserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{"title": "Reset Password", "flashes": h.popFlashes(c)})
		return
	}

	var req dto.ResetRequestReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		slog.Error("password reset request failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.pushFlash(c, "Check your email for the instructions to reset your password")
	c.Redirect(http.StatusFound, "/login")
}

// ResetPassword handles /reset_password/:token.
// Authenticated users are redirected home. An invalid or expired token
// silently redirects home with no error message. A valid submission stores
// the new password, flashes and redirects to login.
func (h *ResetHandler) ResetPassword(c *gin.Context) {
	if _, ok := session.UserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	token := c.Param("token")
	ctx := c.Request.Context()

	if _, err := h.reset.VerifyToken(ctx, token); err != nil {
		slog.Info("reset token rejected", "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/")
		return
	}

	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{"title": "Reset Your Password", "flashes": h.popFlashes(c)})
		return
	}

	var req dto.ResetPasswordReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reset.ResetPassword(ctx, token, req.Password); err != nil {
		slog.Error("password reset failed", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/")
		return
	}

	h.pushFlash(c, "Your password has been reset.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *ResetHandler) pushFlash(c *gin.Context, message string) {
	if sid := session.ID(c); sid != "" {
		if err := h.sessions.PushFlash(c.Request.Context(), sid, message); err != nil {
			slog.Warn("failed to push flash message", "error", err)
		}
	}
}

func (h *ResetHandler) popFlashes(c *gin.Context) []string {
	sid := session.ID(c)
	if sid == "" {
		return nil
	}
	messages, err := h.sessions.PopFlashes(c.Request.Context(), sid)
	if err != nil {
		slog.Warn("failed to pop flash messages", "error", err)
		return nil
	}
	return messages
}
