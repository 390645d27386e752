// Package reconcile maps an identity authenticated by an external provider
// onto a TaskFlow backend account and persists the resulting session.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"

	"taskflow/pkg/client"
	"taskflow/pkg/logger"
	"taskflow/pkg/session"
)

const (
	DefaultLoginPath    = "/login"
	DefaultRegisterPath = "/register"
)

var (
	// ErrMissingProviderUserID 外部身份缺少 provider user id
	ErrMissingProviderUserID = errors.New("external identity has no provider user id")
)

// 登录失败时视为“账号不存在”，可以尝试注册的状态码
var registrableStatus = map[int]bool{
	http.StatusUnauthorized:        true,
	http.StatusNotFound:            true,
	http.StatusConflict:            true,
	http.StatusUnprocessableEntity: true,
}

// Poster 发起 POST 请求的客户端（*client.Client 实现）
type Poster interface {
	Post(ctx context.Context, path string, opts ...client.RequestOption) *client.Response
}

// CredentialStore 保存会话凭证（*session.Store 实现）
type CredentialStore interface {
	Save(ctx context.Context, cred session.Credential) error
}

// Config 登录/注册路径配置，为空时使用默认值
type Config struct {
	LoginPath    string
	RegisterPath string
}

// Reconciler 外部身份与后端账号的对账器
type Reconciler struct {
	client       Poster
	store        CredentialStore
	loginPath    string
	registerPath string

	flights singleflight.Group
}

// New 创建对账器，store 为 nil 时不持久化凭证
func New(c Poster, store CredentialStore, cfg Config) *Reconciler {
	r := &Reconciler{
		client:       c,
		store:        store,
		loginPath:    cfg.LoginPath,
		registerPath: cfg.RegisterPath,
	}
	if r.loginPath == "" {
		r.loginPath = DefaultLoginPath
	}
	if r.registerPath == "" {
		r.registerPath = DefaultRegisterPath
	}
	return r
}

// Reconcile 登录 → 识别失败时注册 → 重新登录，最多三次后端调用。
// 流程耗尽时返回空令牌的凭证而不是错误；同一外部身份的并发调用共享一次流程。
// ctx 结束时立即返回 ctx.Err()，共享流程继续为其他调用者完成。
func (r *Reconciler) Reconcile(ctx context.Context, p Provider, ext ExternalIdentity) (*session.Credential, error) {
	if ext.ProviderUserID == "" {
		return nil, ErrMissingProviderUserID
	}

	// 共享流程脱离发起者的取消，每次请求仍受客户端超时约束
	key := string(p) + ":" + ext.ProviderUserID
	started := false
	ch := r.flights.DoChan(key, func() (interface{}, error) {
		started = true
		return r.reconcile(context.WithoutCancel(ctx), p, ext)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if !started {
			logger.Debug("reconcile %s joined an in-flight flow", key)
		}
		cred := *res.Val.(*session.Credential)
		return &cred, nil
	}
}

func (r *Reconciler) reconcile(ctx context.Context, p Provider, ext ExternalIdentity) (*session.Credential, error) {
	local := Derive(p, ext)

	cred, resp := r.login(ctx, local.Email, local.Password)
	if cred != nil {
		logger.Info("reconciled %s identity as %s via login", p, local.Username)
		return cred, r.persist(ctx, cred)
	}
	if !registrableStatus[resp.Status] {
		logger.Warn("reconcile %s: login failed with status %d, not registering", p, resp.Status)
		return &session.Credential{}, nil
	}

	reg := r.client.Post(ctx, r.registerPath, client.WithBody(registerBody(local)))
	switch {
	case reg.OK:
		regCred := credentialFrom(reg)
		if regCred.Token != "" {
			logger.Info("reconciled %s identity as %s: registered", p, local.Username)
			return regCred, r.persist(ctx, regCred)
		}
		if again, _ := r.login(ctx, local.Email, local.Password); again != nil {
			logger.Info("reconciled %s identity as %s: registered then logged in", p, local.Username)
			return again, r.persist(ctx, again)
		}
		// 注册已返回 2xx，按 Cookie 会话视为已建立
		return regCred, r.persist(ctx, regCred)

	case reg.Status >= http.StatusInternalServerError:
		logger.Warn("reconcile %s: register failed with status %d, retrying login once", p, reg.Status)
		if again, _ := r.login(ctx, local.Email, local.Password); again != nil {
			return again, r.persist(ctx, again)
		}
	default:
		logger.Warn("reconcile %s: register rejected with status %d", p, reg.Status)
	}

	return &session.Credential{}, nil
}

// Login 表单登录，成功时持久化凭证
func (r *Reconciler) Login(ctx context.Context, email, password string) (*session.Credential, error) {
	cred, resp := r.login(ctx, email, password)
	if cred == nil {
		return nil, resp.Error()
	}
	return cred, r.persist(ctx, cred)
}

// login 返回 nil 凭证表示失败，调用方据 resp.Status 决定下一步
func (r *Reconciler) login(ctx context.Context, email, password string) (*session.Credential, *client.Response) {
	resp := r.client.Post(ctx, r.loginPath, client.WithBody(map[string]string{
		"email":    email,
		"password": password,
	}))
	if !resp.OK {
		return nil, resp
	}
	return credentialFrom(resp), resp
}

func (r *Reconciler) persist(ctx context.Context, cred *session.Credential) error {
	if r.store == nil || (!cred.Established && cred.Token == "") {
		return nil
	}
	if err := r.store.Save(ctx, *cred); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func credentialFrom(resp *client.Response) *session.Credential {
	return &session.Credential{
		Token:       ExtractToken(resp.Raw, resp.Headers),
		Established: resp.OK,
	}
}

// registerBody 同时使用多种确认密码字段名，兼容不同后端
func registerBody(local LocalIdentity) map[string]string {
	return map[string]string{
		"email":                 local.Email,
		"username":              local.Username,
		"password":              local.Password,
		"confirmedPassword":     local.Password,
		"confirmed_password":    local.Password,
		"password_confirmation": local.Password,
	}
}
