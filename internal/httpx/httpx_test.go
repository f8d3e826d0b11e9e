package httpx

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func startServer(t *testing.T, h fasthttp.RequestHandler) *Transport {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	tr := New("test", "http://inmemory", WithRetry(3), WithTimeout(2*time.Second))
	tr.http.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }
	return tr
}

func TestDoJSONDecodes(t *testing.T) {
	tr := startServer(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Request.Header.Peek("X-Test")) != "1" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"ok":true}`)
	})
	tr.headers = func() map[string]string { return map[string]string{"X-Test": "1", "X-Empty": " "} }

	var out struct{ OK bool }
	if err := tr.DoJSON(context.Background(), fasthttp.MethodPost, "/x", map[string]int{"a": 1}, &out, false); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected ok")
	}
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	calls := 0
	tr := startServer(t, func(ctx *fasthttp.RequestCtx) {
		calls++
		if calls < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetBodyString(`{}`)
	})
	if err := tr.DoJSON(context.Background(), fasthttp.MethodGet, "/", nil, nil, true); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestDoJSONNoRetryOnClientError(t *testing.T) {
	calls := 0
	tr := startServer(t, func(ctx *fasthttp.RequestCtx) {
		calls++
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString("nope")
	})
	err := tr.DoJSON(context.Background(), fasthttp.MethodGet, "/", nil, nil, true)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != 401 {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestBackoffDurationCaps(t *testing.T) {
	if backoffDuration(1) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond {
		t.Fatalf("unexpected backoff progression")
	}
	if backoffDuration(10) != backoffDuration(6) {
		t.Fatalf("backoff not capped")
	}
}
