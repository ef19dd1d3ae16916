// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"microblog_backend/internal/feature/auth/domain/entity"
	"microblog_backend/internal/feature/auth/transport/http/dto"
	"microblog_backend/internal/feature/auth/usecase"
	"microblog_backend/internal/platform/session"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は指定されたユーザー名・メールアドレス・パスワードで新規ユーザーを登録します。
	Register(ctx context.Context, username, email, password string) error
	// Login はユーザーを認証し、成功時に該当ユーザーを返します。
	Login(ctx context.Context, username, password string) (*entity.User, error)
}

// SessionManager はセッションのライフサイクルとフラッシュメッセージを抽象化します。
// session.Storeが実装します。
type SessionManager interface {
	Create(ctx context.Context, userID uint, remember bool, ttl time.Duration) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	PushFlash(ctx context.Context, sessionID, message string) error
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)
}

// AuthHandler はログイン・ログアウト・登録のHTTPリクエストを処理します。
type AuthHandler struct {
	auth        AuthUsecase
	sessions    SessionManager
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// sessionTTLは通常ログイン、rememberTTLはremember_me指定時のセッション寿命です。
func NewAuthHandler(auth AuthUsecase, sessions SessionManager, sessionTTL, rememberTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// Login は /login を処理します。
// 認証済みユーザーはホームにリダイレクトします。
// 認証失敗時はフラッシュを積んでログインページへリダイレクトします（エラー表示ではなくリダイレクト）。
// 成功時はゲストセッションを認証済みセッションに張り替え、nextパラメータが
// ローカルパスの場合のみそこへ、それ以外はホームへリダイレクトします。
func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := session.UserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{"title": "Sign In", "flashes": h.popFlashes(c)})
		return
	}

	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		slog.Warn("login failed", "username", req.Username, "remote_addr", c.ClientIP())
		h.pushFlash(c, "Invalid username or password")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ttl := h.sessionTTL
	if req.RememberMe {
		ttl = h.rememberTTL
	}
	sess, err := h.sessions.Create(ctx, user.ID, req.RememberMe, ttl)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// セッション固定化攻撃対策: ログイン前のゲストセッションは破棄する
	if old := session.ID(c); old != "" {
		if err := h.sessions.Delete(ctx, old); err != nil {
			slog.Warn("failed to delete guest session", "error", err)
		}
	}

	maxAge := 0
	if req.RememberMe {
		maxAge = int(ttl / time.Second)
	}
	session.SetCookie(c, sess.ID, maxAge)

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, safeNext(c.Query("next")))
}

// Logout は /logout を処理します。セッションを破棄してホームにリダイレクトします。
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid := session.ID(c); sid != "" {
		if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
			slog.Warn("failed to delete session", "error", err)
		}
	}
	session.ClearCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// Register は /register を処理します。
// 認証済みユーザーはホームにリダイレクトします。
// 有効なフォーム送信でユーザーを作成し、フラッシュを積んでログインページへリダイレクトします。
func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := session.UserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{"title": "Sign Up", "flashes": h.popFlashes(c)})
		return
	}

	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.auth.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different username."})
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different email address."})
		default:
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	slog.Info("user registered", "username", req.Username, "remote_addr", c.ClientIP())
	h.pushFlash(c, "You have registered a new account.")
	c.Redirect(http.StatusFound, "/login")
}

// safeNext はログイン後のリダイレクト先を検証します。
// ネットワークロケーション（スキームやホスト）を含むURLはオープンリダイレクト
// 防止のため拒否し、ホームにフォールバックします。
func safeNext(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return raw
}

func (h *AuthHandler) pushFlash(c *gin.Context, message string) {
	if sid := session.ID(c); sid != "" {
		if err := h.sessions.PushFlash(c.Request.Context(), sid, message); err != nil {
			slog.Warn("failed to push flash message", "error", err)
		}
	}
}

func (h *AuthHandler) popFlashes(c *gin.Context) []string {
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
