// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"microblog_backend/internal/feature/posts/domain/entity"
	"microblog_backend/internal/feature/posts/usecase"
)

// postMySQL はPostRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type postMySQL struct {
	db *gorm.DB
}

// postMySQLがPostRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PostRepository = (*postMySQL)(nil)

// NewPostMySQL は指定されたgorm.DB接続でpostMySQLの新しいインスタンスを生成します。
func NewPostMySQL(db *gorm.DB) *postMySQL {
	return &postMySQL{db: db}
}

// Create は投稿をデータベースに追加します。
func (r *postMySQL) Create(ctx context.Context, p *entity.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Count は投稿の総数を返します。
func (r *postMySQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Post{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByID はIDで投稿を取得します。
// 投稿が存在しない場合、usecase.ErrPostNotFoundを返します。
func (r *postMySQL) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var p entity.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPage はID昇順の投稿一覧から1ページ分とナビゲーション情報を取得します。
// userIDが0以外の場合、その投稿者に絞り込みます。
// 最終ページを超えたページ番号は空のページ（HasNext=false）を返します。
func (r *postMySQL) FindPage(ctx context.Context, userID uint, page, perPage int) (*entity.Page, error) {
	if page < 1 {
		page = 1
	}

	// Countはファイナライザのため、同じチェーンを再利用せず個別に組み立てる
	countQ := r.db.WithContext(ctx).Model(&entity.Post{})
	itemsQ := r.db.WithContext(ctx)
	if userID != 0 {
		countQ = countQ.Where("user_id = ?", userID)
		itemsQ = itemsQ.Where("user_id = ?", userID)
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []entity.Post
	if err := itemsQ.Order("id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &entity.Page{
		Items:    items,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		HasNext:  int64(page)*int64(perPage) < total,
		HasPrev:  page > 1,
		NextPage: page + 1,
		PrevPage: page - 1,
	}, nil
}
