package router

import (
	authhandler "microblog_backend/internal/feature/auth/transport/handler"
	postshandler "microblog_backend/internal/feature/posts/transport/handler"
	profilehandler "microblog_backend/internal/feature/profile/transport/handler"
	"microblog_backend/internal/platform/http/handler"
	"microblog_backend/internal/platform/session"

	"github.com/gin-gonic/gin"
)

func NewRouter(store *session.Store, auth *authhandler.AuthHandler, reset *authhandler.ResetHandler,
	posts *postshandler.PostsHandler, profile *profilehandler.ProfileHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用（セッションミドルウェアの前に登録し、Redis障害の影響を受けない）
	r.GET("/healthz", handler.Health)

	// 全ページ共通: セッション解決（無ければゲストセッションを発行）
	r.Use(store.Middleware())

	// 認証不要
	r.GET("/login", auth.Login)
	r.POST("/login", auth.Login)
	r.GET("/logout", auth.Logout)
	r.GET("/register", auth.Register)
	r.POST("/register", auth.Register)
	r.GET("/reset_password_request", reset.RequestReset)
	r.POST("/reset_password_request", reset.RequestReset)
	r.GET("/reset_password/:token", reset.ResetPassword)
	r.POST("/reset_password/:token", reset.ResetPassword)

	// 認証必須のルート
	// 未認証のアクセスは /login?next=... にリダイレクトされる
	authRequired := r.Group("/")
	authRequired.Use(session.AuthRequired())
	{
		authRequired.GET("/", posts.Home)
		authRequired.POST("/", posts.Home)
		authRequired.GET("/index", posts.Home)
		authRequired.POST("/index", posts.Home)
		authRequired.GET("/history", posts.History)
		authRequired.GET("/user/:username", profile.UserPage)
		authRequired.POST("/user/:username", profile.UserPage)
		authRequired.GET("/edit_profile", profile.EditProfile)
		authRequired.POST("/edit_profile", profile.EditProfile)
	}

	return r
}
