// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"microblog_backend/internal/feature/posts/domain/entity"
	"microblog_backend/internal/feature/posts/transport/http/dto"
	"microblog_backend/internal/feature/posts/usecase"
	"microblog_backend/internal/platform/session"
)

// PostsUsecase は投稿フィードのユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type PostsUsecase interface {
	// RandomPost は全投稿から一様ランダムに1件返します。
	RandomPost(ctx context.Context) (*entity.Post, error)
	// HistoryPage は全投稿フィードの1ページ分を返します。
	HistoryPage(ctx context.Context, page int) (*entity.Page, error)
}

// FlashStore はセッションに紐づくフラッシュメッセージの取り出しを抽象化します。
type FlashStore interface {
	// PopFlashes はセッションの未表示フラッシュを返し、同時にクリアします。
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)
}

// PostsHandler はホームと履歴フィードのHTTPリクエストを処理します。
type PostsHandler struct {
	posts   PostsUsecase
	flashes FlashStore
}

// NewPostsHandler はPostsHandlerの新しいインスタンスを生成します。
func NewPostsHandler(posts PostsUsecase, flashes FlashStore) *PostsHandler {
	return &PostsHandler{posts: posts, flashes: flashes}
}

// Home は / および /index を処理し、ランダムに選んだ投稿を1件返します。
// 投稿が存在しない場合は404を返します。
func (h *PostsHandler) Home(c *gin.Context) {
	post, err := h.posts.RandomPost(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNoPosts) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no posts yet"})
			return
		}
		slog.Error("failed to pick random post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   "Home",
		"post":    dto.FromEntity(post),
		"flashes": h.popFlashes(c),
	})
}

// History は /history を処理し、ID昇順の投稿一覧をページ単位で返します。
// pageクエリパラメータは整数で、省略時・不正時は1として扱います。
func (h *PostsHandler) History(c *gin.Context) {
	page := pageParam(c)

	result, err := h.posts.HistoryPage(c.Request.Context(), page)
	if err != nil {
		slog.Error("failed to load history page", "error", err, "page", page)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	res := dto.FromPage(result, func(p int) string {
		return fmt.Sprintf("/history?page=%d", p)
	})
	res.Flashes = h.popFlashes(c)
	c.JSON(http.StatusOK, res)
}

// pageParam はpageクエリパラメータを解釈します。不正値は1にフォールバックします。
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// popFlashes は現在のセッションのフラッシュを取り出します。失敗は表示のみの問題なのでログに留めます。
func (h *PostsHandler) popFlashes(c *gin.Context) []string {
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
