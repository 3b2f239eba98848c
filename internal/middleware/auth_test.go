package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/pkg/httpcontext"
	"github.com/taskdesk/backend/repository"
	authUC "github.com/taskdesk/backend/usecase/auth"
)

type staticRepo struct {
	snap *domain.Snapshot
}

var _ repository.SnapshotRepository = (*staticRepo)(nil)

func (r *staticRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	return r.snap.Clone(), nil
}
func (r *staticRepo) Save(ctx context.Context, snap *domain.Snapshot) error { return nil }
func (r *staticRepo) Ping(ctx context.Context) error                        { return nil }
func (r *staticRepo) Close() error                                          { return nil }

func newMiddlewareUnderTest(t *testing.T) (func(fasthttp.RequestHandler) fasthttp.RequestHandler, string) {
	t.Helper()
	svc := authUC.New(&staticRepo{snap: domain.DefaultSnapshot()},
		authUC.Config{Secret: "test-secret", Issuer: "test", TTL: time.Hour}, nil)

	_, token, err := svc.Login(context.Background(), "Admin", "", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	adapter := httpcontext.NewAdapter(time.Second)
	return SessionAuth(svc, adapter, nil), token
}

func TestSessionAuthInjectsSession(t *testing.T) {
	mw, token := newMiddlewareUnderTest(t)

	var got *domain.Session
	handler := mw(func(ctx *fasthttp.RequestCtx) {
		got = SessionFrom(ctx)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/data")
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(&ctx)

	if got == nil {
		t.Fatal("session not injected")
	}
	if !got.Admin || got.Name != "Admin" {
		t.Errorf("session = %+v", got)
	}
}

func TestSessionAuthRejectsMissingToken(t *testing.T) {
	mw, _ := newMiddlewareUnderTest(t)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/data")
	handler(&ctx)

	if called {
		t.Fatal("handler invoked without a token")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
}

func TestSessionAuthRejectsGarbageToken(t *testing.T) {
	mw, _ := newMiddlewareUnderTest(t)

	handler := mw(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler invoked with a garbage token")
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/data")
	ctx.Request.Header.Set("Authorization", "Bearer nonsense")
	handler(&ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
}
