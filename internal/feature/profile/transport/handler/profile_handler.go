// Package handler はprofileフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	authentity "microblog_backend/internal/feature/auth/domain/entity"
	authusecase "microblog_backend/internal/feature/auth/usecase"
	postentity "microblog_backend/internal/feature/posts/domain/entity"
	postsdto "microblog_backend/internal/feature/posts/transport/http/dto"
	"microblog_backend/internal/feature/profile/transport/http/dto"
	"microblog_backend/internal/platform/session"
)

// ProfileUsecase はプロフィールページのユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type ProfileUsecase interface {
	// LookupUser はユーザー名でプロフィールの持ち主を解決します。
	LookupUser(ctx context.Context, username string) (*authentity.User, error)
	// ViewProfile は対象ユーザーとその投稿の1ページ分を返します。
	ViewProfile(ctx context.Context, username string, page int) (*authentity.User, *postentity.Page, error)
	// CreatePost は認証済みユーザー名義で新しい投稿を作成します。
	CreatePost(ctx context.Context, authorID uint, body string) (*postentity.Post, error)
	// EditProfile はユーザー名とabout_meを更新します。
	EditProfile(ctx context.Context, userID uint, username, aboutMe string) error
	// GetUser はIDでユーザーを取得します。
	GetUser(ctx context.Context, id uint) (*authentity.User, error)
}

// FlashStore はセッションに紐づくフラッシュメッセージの操作を抽象化します。
type FlashStore interface {
	PushFlash(ctx context.Context, sessionID, message string) error
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)
}

// ProfileHandler は /user/:username と /edit_profile を処理します。
type ProfileHandler struct {
	profile ProfileUsecase
	flashes FlashStore
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(profile ProfileUsecase, flashes FlashStore) *ProfileHandler {
	return &ProfileHandler{profile: profile, flashes: flashes}
}

// UserPage はプロフィールページを処理します。
// GET: 対象ユーザーのプロフィールと投稿フィードを返します。
// POST: 投稿フォームを検証し、認証済みユーザー名義で投稿を作成してリダイレクトします。
// 対象ユーザーが存在しない場合は404を返します。
func (h *ProfileHandler) UserPage(c *gin.Context) {
	username := c.Param("username")
	ctx := c.Request.Context()

	if c.Request.Method == http.MethodPost {
		viewed, err := h.profile.LookupUser(ctx, username)
		if err != nil {
			h.userLookupError(c, username, err)
			return
		}

		var req dto.PostReq
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		authorID, _ := session.UserID(c)
		post, err := h.profile.CreatePost(ctx, authorID, req.Body)
		if err != nil {
			slog.Error("failed to create post", "error", err, "user_id", authorID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		slog.Info("post created", "post_id", post.ID, "user_id", authorID)
		h.pushFlash(c, "Your post has been accepted! Thanks for contribution.")
		c.Redirect(http.StatusFound, "/user/"+url.PathEscape(viewed.Username))
		return
	}

	page := pageParam(c)
	viewed, feed, err := h.profile.ViewProfile(ctx, username, page)
	if err != nil {
		h.userLookupError(c, username, err)
		return
	}

	res := postsdto.FromPage(feed, func(p int) string {
		return fmt.Sprintf("/user/%s?page=%d", url.PathEscape(viewed.Username), p)
	})
	c.JSON(http.StatusOK, gin.H{
		"user":     dto.ProfileRes{ID: viewed.ID, Username: viewed.Username, AboutMe: viewed.AboutMe},
		"posts":    res.Posts,
		"next_url": res.NextURL,
		"prev_url": res.PrevURL,
		"flashes":  h.popFlashes(c),
	})
}

// EditProfile は /edit_profile を処理します。
// GET: 現在のユーザー名とabout_meをフォーム初期値として返します。
// POST: 検証・更新後、フラッシュを積んで自身にリダイレクトします。
func (h *ProfileHandler) EditProfile(c *gin.Context) {
	userID, _ := session.UserID(c)
	ctx := c.Request.Context()

	if c.Request.Method == http.MethodGet {
		user, err := h.profile.GetUser(ctx, userID)
		if err != nil {
			slog.Error("failed to load current user", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"title":    "Edit Profile",
			"username": user.Username,
			"about_me": user.AboutMe,
			"flashes":  h.popFlashes(c),
		})
		return
	}

	var req dto.EditProfileReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profile.EditProfile(ctx, userID, req.Username, req.AboutMe); err != nil {
		if errors.Is(err, authusecase.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different username."})
			return
		}
		slog.Error("failed to update profile", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	slog.Info("profile updated", "user_id", userID)
	h.pushFlash(c, "Changes have been saved")
	c.Redirect(http.StatusFound, "/edit_profile")
}

// userLookupError は対象ユーザー解決失敗時のレスポンスを組み立てます。
func (h *ProfileHandler) userLookupError(c *gin.Context, username string, err error) {
	if errors.Is(err, authusecase.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	slog.Error("failed to look up user", "error", err, "username", username)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// pageParam はpageクエリパラメータを解釈します。不正値は1にフォールバックします。
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *ProfileHandler) pushFlash(c *gin.Context, message string) {
	if sid := session.ID(c); sid != "" {
		if err := h.flashes.PushFlash(c.Request.Context(), sid, message); err != nil {
			slog.Warn("failed to push flash message", "error", err)
		}
	}
}

func (h *ProfileHandler) popFlashes(c *gin.Context) []string {
	sid := session.ID(c)
	if sid == "" {
		return nil
	}
	messages, err := h.flashes.PopFlashes(c.Request.Context(), sid)
	if err != nil {
		slog.Warn("failed to pop flash messages", "error", err)
		return nil
	}
	return messages
}
