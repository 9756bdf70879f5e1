package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/auth"
	jwtpkg "github.com/hmicael/email-api/internal/auth/jwt"
	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/mailer"
	"github.com/hmicael/email-api/internal/service"
	"github.com/hmicael/email-api/internal/storage/memory"
)

// fakeMailer 记录发送的邮件，便于断言内容
type fakeMailer struct {
	messages []*mailer.Message
}

func (f *fakeMailer) Send(_ context.Context, m *mailer.Message) error {
	f.messages = append(f.messages, m)
	return nil
}

type routerEnv struct {
	router     *gin.Engine
	store      *memory.Store
	mailer     *fakeMailer
	adminToken string
	userToken  string
}

const (
	testAdminEmail    = "admin@example.com"
	testUserEmail     = "operator@example.com"
	testLoginPassword = "S3cret!pass"
)

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	localCache := cache.NewLocalCache(time.Minute)
	fm := &fakeMailer{}
	log := zap.NewNop()

	hashed, err := auth.HashPassword(testLoginPassword)
	require.NoError(t, err)

	admin := &domain.User{Email: testAdminEmail, Roles: []string{domain.RoleAdmin}, Password: hashed}
	require.NoError(t, store.SaveUser(admin))
	operator := &domain.User{Email: testUserEmail, Roles: nil, Password: hashed}
	require.NoError(t, store.SaveUser(operator))

	enforcer := service.NewDomainEnforcer(store)
	jwtManager := jwtpkg.NewManager(
		"0123456789abcdef0123456789abcdef",
		"email-api-test",
		15*time.Minute,
		time.Hour,
	)

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		API:  config.APIConfig{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100},
	}

	router := NewRouter(RouterDependencies{
		Config:                cfg,
		DomainNameService:     service.NewDomainNameService(store, localCache, log),
		VirtualUserService:    service.NewVirtualUserService(store, localCache, enforcer, fm, log),
		VirtualAliasService:   service.NewVirtualAliasService(store, localCache, enforcer, log),
		VirtualForwardService: service.NewVirtualForwardService(store, localCache, enforcer, log),
		UserService:           service.NewUserService(store, localCache, fm, log, "http://localhost/reset-password", time.Hour),
		AuthService:           auth.NewService(store),
		JWTManager:            jwtManager,
		Logger:                log,
	})

	adminPair, err := jwtManager.GenerateTokenPair(admin.ID, admin.Email, admin.EffectiveRoles())
	require.NoError(t, err)
	userPair, err := jwtManager.GenerateTokenPair(operator.ID, operator.Email, operator.EffectiveRoles())
	require.NoError(t, err)

	return &routerEnv{
		router:     router,
		store:      store,
		mailer:     fm,
		adminToken: adminPair.AccessToken,
		userToken:  userPair.AccessToken,
	}
}

// do 发起一个 JSON 请求，token 为空时不带认证头
func (e *routerEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (e *routerEnv) mustCreateDomain(t *testing.T, name string) uint {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/domain-names", e.adminToken, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	return uint(body["id"].(float64))
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("登录成功返回令牌对", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/login_check", "", gin.H{
			"username": testAdminEmail,
			"password": testLoginPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.NotEmpty(t, body["token"])
		assert.NotEmpty(t, body["refreshToken"])
	})

	t.Run("密码错误返回401", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/login_check", "", gin.H{
			"username": testAdminEmail,
			"password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials.", decodeBody(t, w)["message"])
	})

	t.Run("刷新令牌换取新访问令牌", func(t *testing.T) {
		env := newRouterEnv(t)

		login := env.do(t, http.MethodPost, "/api/login_check", "", gin.H{
			"username": testAdminEmail,
			"password": testLoginPassword,
		})
		require.Equal(t, http.StatusOK, login.Code)
		refreshToken := decodeBody(t, login)["refreshToken"].(string)

		w := env.do(t, http.MethodPost, "/api/token_refresh", "", gin.H{"refreshToken": refreshToken})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["token"])
	})

	t.Run("未认证请求返回401", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodGet, "/api/domain-names", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("非法令牌返回401", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodGet, "/api/domain-names", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoleEnforcement(t *testing.T) {
	t.Run("普通角色不能写域名", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/domain-names", env.userToken, gin.H{"name": "example.com"})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "insufficient permissions", decodeBody(t, w)["message"])
	})

	t.Run("普通角色可以读域名", func(t *testing.T) {
		env := newRouterEnv(t)
		env.mustCreateDomain(t, "example.com")

		w := env.do(t, http.MethodGet, "/api/domain-names", env.userToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("普通角色不能访问管理账号", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodGet, "/api/users", env.userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("管理员可以管理账号", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/users", env.adminToken, gin.H{
			"email":    "second@example.com",
			"password": testLoginPassword,
			"roles":    []string{domain.RoleAdmin},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Contains(t, body["roles"], domain.RoleAdmin)
		assert.Contains(t, body["roles"], domain.RoleUser)
	})
}

func TestDomainNameEndpoints(t *testing.T) {
	t.Run("创建返回201和Location", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/domain-names", env.adminToken, gin.H{"name": "example.com"})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "example.com", body["name"])
		assert.Equal(t, fmt.Sprintf("/api/domain-names/%v", body["id"]), w.Header().Get("Location"))
	})

	t.Run("重复域名返回400校验失败", func(t *testing.T) {
		env := newRouterEnv(t)
		env.mustCreateDomain(t, "example.com")

		w := env.do(t, http.MethodPost, "/api/domain-names", env.adminToken, gin.H{"name": "example.com"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		violations := body["violations"].([]interface{})
		first := violations[0].(map[string]interface{})
		assert.Equal(t, "name", first["property"])
		assert.Equal(t, "This value is already used", first["message"])
	})

	t.Run("不存在的域名返回404", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodGet, "/api/domain-names/42", env.adminToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Resource not found", decodeBody(t, w)["message"])
	})

	t.Run("非数字ID返回400", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodGet, "/api/domain-names/abc", env.adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("更新和删除返回204", func(t *testing.T) {
		env := newRouterEnv(t)
		id := env.mustCreateDomain(t, "example.com")

		update := env.do(t, http.MethodPut, fmt.Sprintf("/api/domain-names/%d", id), env.adminToken, gin.H{"name": "renamed.com"})
		assert.Equal(t, http.StatusNoContent, update.Code)

		del := env.do(t, http.MethodDelete, fmt.Sprintf("/api/domain-names/%d", id), env.adminToken, nil)
		assert.Equal(t, http.StatusNoContent, del.Code)

		w := env.do(t, http.MethodGet, fmt.Sprintf("/api/domain-names/%d", id), env.adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("按关键字搜索", func(t *testing.T) {
		env := newRouterEnv(t)
		env.mustCreateDomain(t, "example.com")
		env.mustCreateDomain(t, "other.net")

		w := env.do(t, http.MethodPost, "/api/domain-names/search", env.adminToken, gin.H{"keyword": "example"})
		require.Equal(t, http.StatusOK, w.Code)

		var views []service.DomainNameView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		require.Len(t, views, 1)
		assert.Equal(t, "example.com", views[0].Name)
	})
}

func TestVirtualUserEndpoints(t *testing.T) {
	t.Run("创建时重写邮箱域名并派生邮箱目录", func(t *testing.T) {
		env := newRouterEnv(t)
		domainID := env.mustCreateDomain(t, "example.com")

		w := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, gin.H{
			"name":         "Doe",
			"email":        "john@whatever.net",
			"password":     testLoginPassword,
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "john@example.com", body["email"])
		assert.Equal(t, "example.com/john/", body["maildir"])
		require.Len(t, env.mailer.messages, 1)
		assert.Contains(t, env.mailer.messages[0].HTML, testLoginPassword)
	})

	t.Run("引用不存在的域名返回404", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, gin.H{
			"name":         "Doe",
			"email":        "john@example.com",
			"password":     testLoginPassword,
			"domainNameId": 9999,
		})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Domain id 9999 doesn't exist", decodeBody(t, w)["message"])
	})

	t.Run("弱密码返回400校验失败", func(t *testing.T) {
		env := newRouterEnv(t)
		domainID := env.mustCreateDomain(t, "example.com")

		w := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, gin.H{
			"name":         "Doe",
			"email":        "john@example.com",
			"password":     "short",
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		violations := body["violations"].([]interface{})
		first := violations[0].(map[string]interface{})
		assert.Equal(t, "password", first["property"])
	})

	t.Run("按域名过滤搜索", func(t *testing.T) {
		env := newRouterEnv(t)
		firstDomain := env.mustCreateDomain(t, "example.com")
		secondDomain := env.mustCreateDomain(t, "other.net")

		for _, u := range []gin.H{
			{"name": "Doe", "email": "john@example.com", "password": testLoginPassword, "domainNameId": firstDomain},
			{"name": "Doe", "email": "john@other.net", "password": testLoginPassword, "domainNameId": secondDomain},
		} {
			w := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, u)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := env.do(t, http.MethodPost, "/api/virtual-users/search", env.userToken, gin.H{
			"keyword":      "john",
			"domainNameId": firstDomain,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var views []service.VirtualUserView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		require.Len(t, views, 1)
		assert.Equal(t, "john@example.com", views[0].Email)
	})

	t.Run("重置密码返回204并发送邮件", func(t *testing.T) {
		env := newRouterEnv(t)
		domainID := env.mustCreateDomain(t, "example.com")

		created := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, gin.H{
			"name":         "Doe",
			"email":        "john@example.com",
			"password":     testLoginPassword,
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusCreated, created.Code)
		id := uint(decodeBody(t, created)["id"].(float64))

		w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/virtual-users/%d/reset-password", id), env.userToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Len(t, env.mailer.messages, 2)
	})
}

func TestAttachDetachEndpoints(t *testing.T) {
	t.Run("别名挂接和解除虚拟用户", func(t *testing.T) {
		env := newRouterEnv(t)
		domainID := env.mustCreateDomain(t, "example.com")

		userResp := env.do(t, http.MethodPost, "/api/virtual-users", env.userToken, gin.H{
			"name":         "Doe",
			"email":        "john@example.com",
			"password":     testLoginPassword,
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusCreated, userResp.Code)
		userID := uint(decodeBody(t, userResp)["id"].(float64))

		aliasResp := env.do(t, http.MethodPost, "/api/virtual-aliases", env.userToken, gin.H{
			"source":       "info@example.com",
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusCreated, aliasResp.Code)
		aliasID := uint(decodeBody(t, aliasResp)["id"].(float64))

		attach := env.do(t, http.MethodPatch, fmt.Sprintf("/api/virtual-aliases/%d/attach/%d", aliasID, userID), env.userToken, nil)
		require.Equal(t, http.StatusNoContent, attach.Code)

		detail := env.do(t, http.MethodGet, fmt.Sprintf("/api/virtual-aliases/%d", aliasID), env.userToken, nil)
		require.Equal(t, http.StatusOK, detail.Code)
		var aliasDetail service.VirtualAliasDetail
		require.NoError(t, json.Unmarshal(detail.Body.Bytes(), &aliasDetail))
		require.Len(t, aliasDetail.VirtualUsers, 1)
		assert.Equal(t, "john@example.com", aliasDetail.VirtualUsers[0].Email)

		detach := env.do(t, http.MethodDelete, fmt.Sprintf("/api/virtual-aliases/%d/dettach/%d", aliasID, userID), env.userToken, nil)
		require.Equal(t, http.StatusNoContent, detach.Code)

		detail = env.do(t, http.MethodGet, fmt.Sprintf("/api/virtual-aliases/%d", aliasID), env.userToken, nil)
		require.Equal(t, http.StatusOK, detail.Code)
		require.NoError(t, json.Unmarshal(detail.Body.Bytes(), &aliasDetail))
		assert.Empty(t, aliasDetail.VirtualUsers)
	})

	t.Run("转发挂接不存在的虚拟用户返回404", func(t *testing.T) {
		env := newRouterEnv(t)
		domainID := env.mustCreateDomain(t, "example.com")

		forwardResp := env.do(t, http.MethodPost, "/api/virtual-forwards", env.userToken, gin.H{
			"source":       "all@example.com",
			"domainNameId": domainID,
		})
		require.Equal(t, http.StatusCreated, forwardResp.Code)
		forwardID := uint(decodeBody(t, forwardResp)["id"].(float64))

		w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/virtual-forwards/%d/attach/9999", forwardID), env.userToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	t.Run("找回密码全流程", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/users/forgot-password", "", gin.H{"email": testAdminEmail})
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, env.mailer.messages, 1)

		html := env.mailer.messages[0].HTML
		marker := "reset-password/"
		idx := strings.Index(html, marker)
		require.Greater(t, idx, -1)
		token := html[idx+len(marker) : idx+len(marker)+64]

		reset := env.do(t, http.MethodPost, "/api/users/reset-password/"+token, "", gin.H{"password": "N3w!password"})
		require.Equal(t, http.StatusNoContent, reset.Code)

		login := env.do(t, http.MethodPost, "/api/login_check", "", gin.H{
			"username": testAdminEmail,
			"password": "N3w!password",
		})
		assert.Equal(t, http.StatusOK, login.Code)

		// 令牌只能用一次
		again := env.do(t, http.MethodPost, "/api/users/reset-password/"+token, "", gin.H{"password": "An0ther!pass"})
		assert.Equal(t, http.StatusNotFound, again.Code)
	})

	t.Run("未知邮箱同样返回204", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/users/forgot-password", "", gin.H{"email": "nobody@example.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, env.mailer.messages)
	})

	t.Run("伪造令牌返回404", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/users/reset-password/bogus-token", "", gin.H{"password": "N3w!password"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListCaching(t *testing.T) {
	t.Run("重复读取列表返回相同字节", func(t *testing.T) {
		env := newRouterEnv(t)
		env.mustCreateDomain(t, "example.com")

		first := env.do(t, http.MethodGet, "/api/domain-names", env.userToken, nil)
		require.Equal(t, http.StatusOK, first.Code)
		second := env.do(t, http.MethodGet, "/api/domain-names", env.userToken, nil)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	})

	t.Run("写操作后列表可见新数据", func(t *testing.T) {
		env := newRouterEnv(t)
		env.mustCreateDomain(t, "example.com")

		first := env.do(t, http.MethodGet, "/api/domain-names", env.userToken, nil)
		require.Equal(t, http.StatusOK, first.Code)

		env.mustCreateDomain(t, "other.net")

		second := env.do(t, http.MethodGet, "/api/domain-names", env.userToken, nil)
		require.Equal(t, http.StatusOK, second.Code)

		var page service.Page
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &page))
		assert.Equal(t, int64(2), page.Total)
	})
}
