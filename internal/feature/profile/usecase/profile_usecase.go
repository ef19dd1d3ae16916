// Package usecase implements the business logic for the profile feature:
// viewing a user's page, publishing posts from it and editing one's profile.
package usecase

import (
	"context"
	"errors"
	"fmt"

	authentity "microblog_backend/internal/feature/auth/domain/entity"
	authusecase "microblog_backend/internal/feature/auth/usecase"
	postentity "microblog_backend/internal/feature/posts/domain/entity"
)

// UserRepository abstracts the user lookups and updates this feature needs.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (auth adapters).
type UserRepository interface {
	// FindByUsername retrieves a user by username.
	// It returns authusecase.ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*authentity.User, error)

	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id uint) (*authentity.User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *authentity.User) error
}

// PostRepository abstracts the post writes and profile-feed reads.
// Satisfied by the posts feature's adapter.
type PostRepository interface {
	// Create persists a new post.
	Create(ctx context.Context, post *postentity.Post) error

	// FindPage returns one page of the given user's posts, ordered by id
	// ascending.
	FindPage(ctx context.Context, userID uint, page, perPage int) (*postentity.Page, error)
}

// profileUsecase implements the profile page and edit-profile logic.
type profileUsecase struct {
	users   UserRepository
	posts   PostRepository
	perPage int
}

// NewProfileUsecase creates a new profileUsecase instance.
// perPage is the profile feed page size (POSTS_PER_PAGE_USER).
func NewProfileUsecase(users UserRepository, posts PostRepository, perPage int) *profileUsecase {
	return &profileUsecase{users: users, posts: posts, perPage: perPage}
}

// LookupUser resolves a profile's owner by username.
func (u *profileUsecase) LookupUser(ctx context.Context, username string) (*authentity.User, error) {
	return u.users.FindByUsername(ctx, username)
}

// ViewProfile returns the named user together with one page of their posts.
// The feed is filtered by the viewed user's id.
func (u *profileUsecase) ViewProfile(ctx context.Context, username string, page int) (*authentity.User, *postentity.Page, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	feed, err := u.posts.FindPage(ctx, user.ID, page, u.perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load posts for %q: %w", username, err)
	}
	return user, feed, nil
}

// CreatePost publishes a new post attributed to the authenticated author.
func (u *profileUsecase) CreatePost(ctx context.Context, authorID uint, body string) (*postentity.Post, error) {
	post := &postentity.Post{Body: body, UserID: authorID}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// EditProfile updates the user's username and about-me text.
// A username already held by another user yields authusecase.ErrUsernameTaken.
func (u *profileUsecase) EditProfile(ctx context.Context, userID uint, username, aboutMe string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if username != user.Username {
		other, err := u.users.FindByUsername(ctx, username)
		if err == nil && other.ID != userID {
			return authusecase.ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, authusecase.ErrUserNotFound) {
			return fmt.Errorf("failed to check username: %w", err)
		}
	}

	user.Username = username
	user.AboutMe = aboutMe
	return u.users.Update(ctx, user)
}

// GetUser retrieves a user by ID, used to pre-populate the edit form.
func (u *profileUsecase) GetUser(ctx context.Context, id uint) (*authentity.User, error) {
	return u.users.FindByID(ctx, id)
}
