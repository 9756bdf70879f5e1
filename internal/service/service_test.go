package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/auth"
	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/mailer"
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

type testEnv struct {
	store    *memory.Store
	cache    *cache.LocalCache
	mailer   *fakeMailer
	domains  *DomainNameService
	users    *VirtualUserService
	aliases  *VirtualAliasService
	forwards *VirtualForwardService
	admins   *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	localCache := cache.NewLocalCache(time.Minute)
	fm := &fakeMailer{}
	log := zap.NewNop()
	enforcer := NewDomainEnforcer(store)

	return &testEnv{
		store:    store,
		cache:    localCache,
		mailer:   fm,
		domains:  NewDomainNameService(store, localCache, log),
		users:    NewVirtualUserService(store, localCache, enforcer, fm, log),
		aliases:  NewVirtualAliasService(store, localCache, enforcer, log),
		forwards: NewVirtualForwardService(store, localCache, enforcer, log),
		admins:   NewUserService(store, localCache, fm, log, "http://localhost/reset-password", time.Hour),
	}
}

func (e *testEnv) mustCreateDomain(t *testing.T, name string) *DomainNameView {
	t.Helper()
	d, err := e.domains.Create(DomainNameInput{Name: name})
	require.NoError(t, err)
	return d
}

func TestDomainNameService(t *testing.T) {
	t.Run("创建和查询域名", func(t *testing.T) {
		env := newTestEnv(t)

		created := env.mustCreateDomain(t, "example.com")
		assert.NotZero(t, created.ID)
		assert.Equal(t, "example.com", created.Name)

		got, err := env.domains.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("重复域名返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateDomain(t, "example.com")

		_, err := env.domains.Create(DomainNameInput{Name: "example.com"})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "name", violations[0].Property)
		assert.Equal(t, "This value is already used", violations[0].Message)
	})

	t.Run("空名称返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.domains.Create(DomainNameInput{Name: "  "})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "This value should not be blank", violations[0].Message)
	})

	t.Run("不存在的域名返回未找到", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.domains.Get(42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, env.domains.Update(42, DomainNameInput{Name: "x.com"}), ErrNotFound)
		assert.ErrorIs(t, env.domains.Delete(42), ErrNotFound)
	})

	t.Run("列表缓存命中返回相同字节", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateDomain(t, "example.com")
		env.mustCreateDomain(t, "example.org")

		first, err := env.domains.List(1, 20)
		require.NoError(t, err)
		second, err := env.domains.List(1, 20)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Contains(t, string(first), `"total":2`)
	})

	t.Run("写入前缓存失效", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateDomain(t, "example.com")

		before, err := env.domains.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(before), `"total":1`)

		env.mustCreateDomain(t, "example.org")

		after, err := env.domains.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(after), `"total":2`)
		assert.Contains(t, string(after), "example.org")
	})

	t.Run("删除域名级联清理并失效全部资源缓存", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		_, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Firstname:    "john",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		users, err := env.users.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(users), `"total":1`)

		require.NoError(t, env.domains.Delete(d.ID))

		users, err = env.users.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(users), `"total":0`)
	})
}

func TestVirtualUserService(t *testing.T) {
	t.Run("创建时改写域名后缀并推导邮箱目录", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		created, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Firstname:    "john",
			Email:        "john@whatever.net",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", created.Email)
		assert.Equal(t, "example.com/john/", created.Maildir)
		assert.Equal(t, "example.com", created.DomainName.Name)
	})

	t.Run("创建发送带明文密码的通知邮件", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		_, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Firstname:    "john",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		require.Len(t, env.mailer.messages, 1)
		msg := env.mailer.messages[0]
		assert.Equal(t, []string{"john@example.com"}, msg.To)
		assert.Contains(t, msg.HTML, "s3cret-pass")
	})

	t.Run("域名不存在返回带 ID 的错误", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: 9999,
		})
		var notFound *DomainNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, uint(9999), notFound.ID)
		assert.Equal(t, "Domain id 9999 doesn't exist", notFound.Error())
	})

	t.Run("弱密码返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		_, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			Password:     "password",
			DomainNameID: d.ID,
		})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "password", violations[0].Property)
	})

	t.Run("更新重新执行域名改写", func(t *testing.T) {
		env := newTestEnv(t)
		d1 := env.mustCreateDomain(t, "example.com")
		d2 := env.mustCreateDomain(t, "example.org")

		created, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: d1.ID,
		})
		require.NoError(t, err)

		require.NoError(t, env.users.Update(created.ID, UpdateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			DomainNameID: d2.ID,
		}))

		got, err := env.users.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "john@example.org", got.Email)
		assert.Equal(t, "example.org/john/", got.Maildir)
	})

	t.Run("重置密码发送新密码且不失效列表缓存", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		created, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		before, err := env.users.List(1, 20)
		require.NoError(t, err)

		require.NoError(t, env.users.ResetPassword(context.Background(), created.ID))

		after, err := env.users.List(1, 20)
		require.NoError(t, err)
		assert.Equal(t, before, after, "密码重置不应触发列表缓存失效")

		require.Len(t, env.mailer.messages, 2)
		reset := env.mailer.messages[1]
		assert.Equal(t, []string{"john@example.com"}, reset.To)
		assert.Contains(t, reset.Subject, "Password reset")
	})

	t.Run("改写后超长的地址返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "longdomainexample.eu")

		// 输入本身合法，但改写成所属域名后缀后超出长度上限
		_, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "verylongmailbox@x.co",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "email", violations[0].Property)
		assert.Equal(t, "This value is too long. It should have 30 characters or less", violations[0].Message)

		list, err := env.users.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(list), `"total":0`)
		assert.Empty(t, env.mailer.messages)
	})

	t.Run("搜索可按域名过滤", func(t *testing.T) {
		env := newTestEnv(t)
		d1 := env.mustCreateDomain(t, "example.com")
		d2 := env.mustCreateDomain(t, "example.org")

		for _, in := range []CreateVirtualUserInput{
			{Name: "doe", Email: "john@example.com", Password: "s3cret-pass", DomainNameID: d1.ID},
			{Name: "doe2", Email: "jane@example.org", Password: "s3cret-pass", DomainNameID: d2.ID},
		} {
			_, err := env.users.Create(context.Background(), in)
			require.NoError(t, err)
		}

		all, err := env.users.Search("doe", 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		filtered, err := env.users.Search("doe", d1.ID)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, "john@example.com", filtered[0].Email)
	})
}

func TestVirtualAliasService(t *testing.T) {
	createUser := func(t *testing.T, env *testEnv, domainID uint, email string) *VirtualUserDetail {
		t.Helper()
		u, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         strings.SplitN(email, "@", 2)[0],
			Email:        email,
			Password:     "s3cret-pass",
			DomainNameID: domainID,
		})
		require.NoError(t, err)
		return u
	}

	t.Run("创建时改写来源地址", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		created, err := env.aliases.Create(VirtualAliasInput{
			Source:       "contact@whatever.net",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "contact@example.com", created.Source)
	})

	t.Run("域名不存在返回带 ID 的错误", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.aliases.Create(VirtualAliasInput{
			Source:       "contact@example.com",
			DomainNameID: 9999,
		})
		var notFound *DomainNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Domain id 9999 doesn't exist", notFound.Error())
	})

	t.Run("改写后超长的来源地址返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "longdomainexample.eu")

		_, err := env.aliases.Create(VirtualAliasInput{
			Source:       "verylongmailbox@x.co",
			DomainNameID: d.ID,
		})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "source", violations[0].Property)
		assert.Equal(t, "This value is too long. It should have 30 characters or less", violations[0].Message)
	})

	t.Run("挂载和摘除虚拟用户", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")
		u := createUser(t, env, d.ID, "john@example.com")

		alias, err := env.aliases.Create(VirtualAliasInput{
			Source:       "contact@example.com",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		require.NoError(t, env.aliases.Attach(alias.ID, u.ID))

		detail, err := env.aliases.Get(alias.ID)
		require.NoError(t, err)
		require.Len(t, detail.VirtualUsers, 1)
		assert.Equal(t, "john@example.com", detail.VirtualUsers[0].Email)

		userDetail, err := env.users.Get(u.ID)
		require.NoError(t, err)
		require.Len(t, userDetail.VirtualAliases, 1)
		assert.Equal(t, "contact@example.com", userDetail.VirtualAliases[0].Source)

		require.NoError(t, env.aliases.Detach(alias.ID, u.ID))

		detail, err = env.aliases.Get(alias.ID)
		require.NoError(t, err)
		assert.Empty(t, detail.VirtualUsers)
	})

	t.Run("挂载不存在的资源返回未找到", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		alias, err := env.aliases.Create(VirtualAliasInput{
			Source:       "contact@example.com",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		assert.ErrorIs(t, env.aliases.Attach(alias.ID, 9999), ErrNotFound)
		assert.ErrorIs(t, env.aliases.Attach(9999, 1), ErrNotFound)
	})

	t.Run("挂载后列表缓存失效", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")
		u := createUser(t, env, d.ID, "john@example.com")

		alias, err := env.aliases.Create(VirtualAliasInput{
			Source:       "contact@example.com",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		before, err := env.aliases.List(1, 20)
		require.NoError(t, err)
		assert.Contains(t, string(before), "contact@example.com")

		require.NoError(t, env.aliases.Attach(alias.ID, u.ID))

		after, err := env.aliases.List(1, 20)
		require.NoError(t, err)
		assert.NotNil(t, after)
	})
}

func TestVirtualForwardService(t *testing.T) {
	t.Run("创建时改写来源地址", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		created, err := env.forwards.Create(VirtualForwardInput{
			Source:       "all@whatever.net",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "all@example.com", created.Source)
	})

	t.Run("重复来源地址返回校验失败", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		_, err := env.forwards.Create(VirtualForwardInput{Source: "all@example.com", DomainNameID: d.ID})
		require.NoError(t, err)

		_, err = env.forwards.Create(VirtualForwardInput{Source: "all@example.com", DomainNameID: d.ID})
		var violations domain.Violations
		require.ErrorAs(t, err, &violations)
		assert.Equal(t, "source", violations[0].Property)
		assert.Equal(t, "This value is already used", violations[0].Message)
	})

	t.Run("挂载和摘除虚拟用户", func(t *testing.T) {
		env := newTestEnv(t)
		d := env.mustCreateDomain(t, "example.com")

		u, err := env.users.Create(context.Background(), CreateVirtualUserInput{
			Name:         "doe",
			Email:        "john@example.com",
			Password:     "s3cret-pass",
			DomainNameID: d.ID,
		})
		require.NoError(t, err)

		fwd, err := env.forwards.Create(VirtualForwardInput{Source: "all@example.com", DomainNameID: d.ID})
		require.NoError(t, err)

		require.NoError(t, env.forwards.Attach(fwd.ID, u.ID))

		detail, err := env.forwards.Get(fwd.ID)
		require.NoError(t, err)
		require.Len(t, detail.VirtualUsers, 1)
		assert.Equal(t, "john@example.com", detail.VirtualUsers[0].Email)

		require.NoError(t, env.forwards.Detach(fwd.ID, u.ID))

		detail, err = env.forwards.Get(fwd.ID)
		require.NoError(t, err)
		assert.Empty(t, detail.VirtualUsers)
	})
}

func TestUserService(t *testing.T) {
	t.Run("创建管理账号并查询", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
			Roles:    []string{domain.RoleAdmin},
		})
		require.NoError(t, err)
		assert.Contains(t, created.Roles, domain.RoleAdmin)
		assert.Contains(t, created.Roles, domain.RoleUser)

		got, err := env.admins.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("邮箱统一存成小写且大小写无关登录", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "Admin@Example.COM",
			Password: "s3cret-pass",
			Roles:    []string{domain.RoleAdmin},
		})
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", created.Email)

		logged, err := auth.NewService(env.store).Login(auth.LoginInput{
			Username: "Admin@Example.COM",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", logged.Email)
	})

	t.Run("找回密码忽略邮箱大小写", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.admins.Create(CreateUserInput{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		require.NoError(t, env.admins.ForgotPassword(context.Background(), "Admin@Example.com"))
		require.Len(t, env.mailer.messages, 1)
	})

	t.Run("角色列表始终包含基础角色", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "viewer@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{domain.RoleUser}, created.Roles)
	})

	t.Run("找回密码流程", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		require.NoError(t, env.admins.ForgotPassword(context.Background(), "admin@example.com"))
		require.Len(t, env.mailer.messages, 1)
		assert.Contains(t, env.mailer.messages[0].HTML, "http://localhost/reset-password/")

		// 从邮件链接中取出令牌
		html := env.mailer.messages[0].HTML
		start := strings.Index(html, "reset-password/") + len("reset-password/")
		token := html[start : start+64]

		require.NoError(t, env.admins.ResetPassword(token, "new-s3cret-pass"))

		// 令牌一次性有效
		assert.ErrorIs(t, env.admins.ResetPassword(token, "another-s3cret"), ErrInvalidResetToken)

		_, err = env.admins.Get(created.ID)
		require.NoError(t, err)
	})

	t.Run("未知邮箱静默返回成功", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.admins.ForgotPassword(context.Background(), "ghost@example.com"))
		assert.Empty(t, env.mailer.messages)
	})

	t.Run("无效令牌返回错误", func(t *testing.T) {
		env := newTestEnv(t)

		assert.ErrorIs(t, env.admins.ResetPassword("bogus", "new-s3cret-pass"), ErrInvalidResetToken)
	})

	t.Run("过期令牌返回错误并被清理", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		expired := &domain.PasswordResetToken{
			UserID:    created.ID,
			Token:     strings.Repeat("a", 64),
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}
		require.NoError(t, env.store.SaveResetToken(expired))

		assert.ErrorIs(t, env.admins.ResetPassword(expired.Token, "new-s3cret-pass"), ErrInvalidResetToken)
	})

	t.Run("清理过期令牌", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.admins.Create(CreateUserInput{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		require.NoError(t, env.store.SaveResetToken(&domain.PasswordResetToken{
			UserID:    created.ID,
			Token:     strings.Repeat("b", 64),
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}))

		require.NoError(t, env.admins.CleanupExpiredTokens())

		_, err = env.store.GetResetToken(strings.Repeat("b", 64))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
