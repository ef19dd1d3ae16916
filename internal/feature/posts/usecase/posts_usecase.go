package usecase

import (
	"context"
	"fmt"
	"math/rand"

	"microblog_backend/internal/feature/posts/domain/entity"
)

// PostRepository は投稿エンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PostRepository interface {
	// Count は投稿の総数を返します。
	Count(ctx context.Context) (int64, error)

	// FindByID は指定されたIDに一致する投稿を取得します。
	// 投稿が存在しない場合、ErrPostNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.Post, error)

	// FindPage はID昇順の投稿一覧から1ページ分を取得します。
	// userIDが0以外の場合、その投稿者に絞り込みます。
	FindPage(ctx context.Context, userID uint, page, perPage int) (*entity.Page, error)
}

// postsUsecase は投稿フィードのビジネスロジックを実装します。
type postsUsecase struct {
	posts   PostRepository
	perPage int
}

// NewPostsUsecase はpostsUsecaseの新しいインスタンスを生成します。
// perPage は履歴フィードのページサイズ（POSTS_PER_PAGE）です。
func NewPostsUsecase(posts PostRepository, perPage int) *postsUsecase {
	return &postsUsecase{posts: posts, perPage: perPage}
}

// RandomPost は全投稿から一様ランダムに1件選んで返します。
// 投稿が1件も存在しない場合はErrNoPostsを返します。
func (u *postsUsecase) RandomPost(ctx context.Context) (*entity.Post, error) {
	count, err := u.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if count == 0 {
		return nil, ErrNoPosts
	}

	// 投稿は削除されないため、IDは1..countの連番として扱えます。
	id := uint(rand.Int63n(count)) + 1
	return u.posts.FindByID(ctx, id)
}

// HistoryPage はID昇順の全投稿フィードから1ページ分を返します。
func (u *postsUsecase) HistoryPage(ctx context.Context, page int) (*entity.Page, error) {
	return u.posts.FindPage(ctx, 0, page, u.perPage)
}
