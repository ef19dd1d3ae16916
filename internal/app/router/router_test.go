package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "microblog_backend/internal/feature/auth/adapters"
	authentity "microblog_backend/internal/feature/auth/domain/entity"
	authhandler "microblog_backend/internal/feature/auth/transport/handler"
	authusecase "microblog_backend/internal/feature/auth/usecase"
	postsadapters "microblog_backend/internal/feature/posts/adapters"
	postentity "microblog_backend/internal/feature/posts/domain/entity"
	postshandler "microblog_backend/internal/feature/posts/transport/handler"
	postsusecase "microblog_backend/internal/feature/posts/usecase"
	profilehandler "microblog_backend/internal/feature/profile/transport/handler"
	profileusecase "microblog_backend/internal/feature/profile/usecase"
	"microblog_backend/internal/platform/resettoken"
	"microblog_backend/internal/platform/session"
)

// captureNotifier records reset tokens instead of sending email.
type captureNotifier struct {
	sentTo    string
	sentToken string
}

func (n *captureNotifier) SendPasswordReset(ctx context.Context, user *authentity.User, token string) error {
	n.sentTo = user.Email
	n.sentToken = token
	return nil
}

// newTestApp wires the full application against in-memory backends.
func newTestApp(t *testing.T) (*gin.Engine, *captureNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&authentity.User{}, &postentity.Post{}))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userRepo := authadapters.NewUserMySQL(db)
	postRepo := postsadapters.NewPostMySQL(db)

	store := session.NewStore(rdb, "session", time.Hour)
	tokens := resettoken.New("test-secret", 10*time.Minute)
	notifier := &captureNotifier{}

	authUC := authusecase.NewAuthUsecase(userRepo)
	resetUC := authusecase.NewPasswordResetUsecase(userRepo, tokens, notifier)
	postsUC := postsusecase.NewPostsUsecase(postRepo, 10)
	profileUC := profileusecase.NewProfileUsecase(userRepo, postRepo, 5)

	authH := authhandler.NewAuthHandler(authUC, store, time.Hour, 24*time.Hour)
	resetH := authhandler.NewResetHandler(resetUC, store)
	postsH := postshandler.NewPostsHandler(postsUC, store)
	profileH := profilehandler.NewProfileHandler(profileUC, store)

	return NewRouter(store, authH, resetH, postsH, profileH), notifier
}

// browser carries cookies between requests like a real user agent would.
type browser struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, r: r, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req, _ = http.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.r.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

func TestApp_HealthEndpoint(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	w := b.get("/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_AnonymousAccessRedirectsToLogin(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	w := b.get("/")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2F", w.Header().Get("Location"))
	assert.Contains(t, b.cookies, session.CookieName, "a guest session cookie must be issued")
}

func TestApp_RegisterLoginAndPost(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	// 新規登録
	w := b.post("/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"},
		"password": {"pw123"}, "password2": {"pw123"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	// 間違ったパスワードでのログインは拒否され、フラッシュが積まれる
	w = b.post("/login", url.Values{"username": {"alice"}, "password": {"wrongpw"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	w = b.get("/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	// 正しいパスワードでログインするとホームにリダイレクトされる
	oldSession := b.cookies[session.CookieName].Value
	w = b.post("/login", url.Values{"username": {"alice"}, "password": {"pw123"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	assert.NotEqual(t, oldSession, b.cookies[session.CookieName].Value,
		"session id must be rotated on login")

	// 投稿がまだ無いのでホームは404
	w = b.get("/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 自分のプロフィールページから投稿する
	w = b.post("/user/alice", url.Values{"body": {"hello, world"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/user/alice", w.Header().Get("Location"))

	// 投稿はaliceに帰属し、フラッシュと共にプロフィールに表示される
	w = b.get("/user/alice")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "hello, world")
	assert.Contains(t, body, "Your post has been accepted! Thanks for contribution.")

	// フラッシュは一度表示したら消える
	w = b.get("/user/alice")
	assert.NotContains(t, w.Body.String(), "Your post has been accepted!")

	// ホームと履歴にも反映される
	w = b.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello, world")

	w = b.get("/history")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello, world")
}

func TestApp_LoginRedirectsToNextTarget(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	b.post("/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"},
		"password": {"pw123"}, "password2": {"pw123"},
	})

	// 保護ページへのアクセスがnext付きログインへ誘導する
	w := b.get("/history")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?next=%2Fhistory", w.Header().Get("Location"))

	w = b.post("/login?next=%2Fhistory", url.Values{"username": {"alice"}, "password": {"pw123"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/history", w.Header().Get("Location"))
}

func TestApp_EditProfile(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	b.post("/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"},
		"password": {"pw123"}, "password2": {"pw123"},
	})
	b.post("/login", url.Values{"username": {"alice"}, "password": {"pw123"}})

	w := b.post("/edit_profile", url.Values{"username": {"alice2"}, "about_me": {"gopher"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/edit_profile", w.Header().Get("Location"))

	w = b.get("/edit_profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice2")
	assert.Contains(t, w.Body.String(), "gopher")
	assert.Contains(t, w.Body.String(), "Changes have been saved")

	// 旧ユーザー名のプロフィールはもう存在しない
	w = b.get("/user/alice")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = b.get("/user/alice2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_PasswordResetFlow(t *testing.T) {
	r, notifier := newTestApp(t)
	b := newBrowser(t, r)

	b.post("/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"},
		"password": {"pw123"}, "password2": {"pw123"},
	})

	// リセット依頼でトークンがメール送信される
	w := b.post("/reset_password_request", url.Values{"email": {"a@x.com"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.NotEmpty(t, notifier.sentToken)
	assert.Equal(t, "a@x.com", notifier.sentTo)

	// トークンで新しいパスワードを設定する
	w = b.post("/reset_password/"+notifier.sentToken, url.Values{
		"password": {"newpw456"}, "password2": {"newpw456"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	// 旧パスワードは使えず、新パスワードでログインできる
	w = b.post("/login", url.Values{"username": {"alice"}, "password": {"pw123"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	w = b.post("/login", url.Values{"username": {"alice"}, "password": {"newpw456"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestApp_Logout(t *testing.T) {
	r, _ := newTestApp(t)
	b := newBrowser(t, r)

	b.post("/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"},
		"password": {"pw123"}, "password2": {"pw123"},
	})
	b.post("/login", url.Values{"username": {"alice"}, "password": {"pw123"}})

	w := b.get("/logout")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	// ログアウト後は保護ページに入れない
	w = b.get("/history")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?next=")
}
