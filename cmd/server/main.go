package main

import (
	"log"

	"microblog_backend/internal/app/router"
	"microblog_backend/internal/config"
	authadapters "microblog_backend/internal/feature/auth/adapters"
	authhandler "microblog_backend/internal/feature/auth/transport/handler"
	authusecase "microblog_backend/internal/feature/auth/usecase"
	postsadapters "microblog_backend/internal/feature/posts/adapters"
	postshandler "microblog_backend/internal/feature/posts/transport/handler"
	postsusecase "microblog_backend/internal/feature/posts/usecase"
	profilehandler "microblog_backend/internal/feature/profile/transport/handler"
	profileusecase "microblog_backend/internal/feature/profile/usecase"
	infradb "microblog_backend/internal/platform/db"
	"microblog_backend/internal/platform/mail"
	"microblog_backend/internal/platform/redis"
	"microblog_backend/internal/platform/resettoken"
	"microblog_backend/internal/platform/session"
)

func main() {
	cfg := config.Load()

	if cfg.SecretKey == "" {
		log.Println("[WARN] SECRET_KEY is not set. Set a strong secret in production.")
	}

	// db
	db := infradb.OpenDB(cfg)

	// Redis（セッションストアの基盤なので必須）
	rdb, err := redis.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Redis is required for sessions: ", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	// Repository
	userRepo := authadapters.NewUserMySQL(db)
	postRepo := postsadapters.NewPostMySQL(db)

	// Platform
	store := session.NewStore(rdb, "session", cfg.SessionTTL)
	tokens := resettoken.New(cfg.SecretKey, cfg.ResetTokenTTL)

	var notifier authusecase.ResetNotifier
	if cfg.SMTPHost != "" {
		notifier = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.BaseURL)
	} else {
		log.Println("[WARN] SMTP not configured. Password reset emails will be dropped.")
		notifier = mail.Disabled{}
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo)
	resetUC := authusecase.NewPasswordResetUsecase(userRepo, tokens, notifier)
	postsUC := postsusecase.NewPostsUsecase(postRepo, cfg.PostsPerPage)
	profileUC := profileusecase.NewProfileUsecase(userRepo, postRepo, cfg.PostsPerPageUser)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, store, cfg.SessionTTL, cfg.RememberSessionTTL)
	resetH := authhandler.NewResetHandler(resetUC, store)
	postsH := postshandler.NewPostsHandler(postsUC, store)
	profileH := profilehandler.NewProfileHandler(profileUC, store)

	// ルータ生成
	r := router.NewRouter(store, authH, resetH, postsH, profileH)

	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
