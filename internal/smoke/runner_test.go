package smoke_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/Veysel440/go-auth-smoke/internal/jwtauth"
	"github.com/Veysel440/go-auth-smoke/internal/logging"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
	"github.com/Veysel440/go-auth-smoke/internal/server"
	"github.com/Veysel440/go-auth-smoke/internal/smoke"
)

func authAPI(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Env:           "test",
		DBTimeout:     time.Second,
		JWTIssuer:     "authstub",
		SessionTTL:    time.Hour,
		MaxBodyBytes:  1 << 16,
		BcryptCost:    bcrypt.MinCost,
		RateRPS:       100,
		RateBurst:     100,
		RateAuthRPS:   100,
		RateAuthBurst: 100,
	}
	store := repos.NewFileUsers(filepath.Join(t.TempDir(), "users_db.json"))
	s := server.New(cfg, store, nil).
		WithLogger(logging.NewWriter(io.Discard, "error")).
		WithKeys(jwtauth.EnvProvider{Current: "k", Set: map[string][]byte{"k": []byte("s")}})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() { ts.Close(); s.Close() })
	return ts
}

func newRunner(base string, out io.Writer) *smoke.Runner {
	return smoke.New(config.Config{APIBase: base}, out, logging.NewWriter(io.Discard, "error"))
}

func TestRegister_NewUserSucceeds(t *testing.T) {
	ts := authAPI(t)
	var out bytes.Buffer
	r := newRunner(ts.URL, &out)

	u, err := r.Register(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u != smoke.DefaultUser() {
		t.Fatalf("user changed: %+v", u)
	}
	s := out.String()
	if !strings.Contains(s, "Registration response status: 200") {
		t.Fatalf("status line missing:\n%s", s)
	}
	if !strings.Contains(s, "username:testuser_direct") || !strings.Contains(s, "email:test_direct@example.com") {
		t.Fatalf("parsed body should echo the user:\n%s", s)
	}
}

func TestRegister_TwiceReportsConflictWithoutError(t *testing.T) {
	ts := authAPI(t)
	var out bytes.Buffer
	r := newRunner(ts.URL, &out)

	if _, err := r.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if _, err := r.Register(context.Background()); err != nil {
		t.Fatalf("conflict must not be an error: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "Registration response status: 409") || !strings.Contains(s, `"code":"conflict"`) {
		t.Fatalf("raw conflict text missing:\n%s", s)
	}
}

func TestLogin_AfterRegisterSucceeds(t *testing.T) {
	ts := authAPI(t)
	var out bytes.Buffer
	r := newRunner(ts.URL, &out)

	u, err := r.Register(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ok, err := r.Login(context.Background(), u)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v\n%s", ok, err, out.String())
	}
	if !strings.Contains(out.String(), "session_id:") {
		t.Fatalf("login body not printed:\n%s", out.String())
	}
}

func TestLogin_WrongPasswordReturnsFalse(t *testing.T) {
	ts := authAPI(t)
	var out bytes.Buffer
	r := newRunner(ts.URL, &out)

	u, err := r.Register(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	u.Password = "not-the-password"
	ok, err := r.Login(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("wrong password reported as success")
	}
	if !strings.Contains(out.String(), "Login response status: 401") {
		t.Fatalf("401 not printed:\n%s", out.String())
	}
}

func TestRegister_UnreachableIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	var out bytes.Buffer
	r := newRunner(base, &out)
	if _, err := r.Register(context.Background()); err == nil {
		t.Fatal("want transport error")
	}

	out.Reset()
	if _, err := r.Run(context.Background(), strings.NewReader("\n")); err == nil {
		t.Fatal("run must stop on transport error")
	}
	if strings.Contains(out.String(), "Press Enter") {
		t.Fatal("run continued past a transport error")
	}
}

type recorder struct {
	mu     sync.Mutex
	calls  []string
	forms  []map[string]string
	status map[string]int
}

func (rc *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	rc.mu.Lock()
	rc.calls = append(rc.calls, r.Method+" "+r.URL.Path)
	f := map[string]string{"content-type": r.Header.Get("Content-Type")}
	for k := range r.PostForm {
		f[k] = r.PostForm.Get(k)
	}
	rc.forms = append(rc.forms, f)
	code := rc.status[r.URL.Path]
	rc.mu.Unlock()
	if code == 0 {
		code = 200
	}
	w.WriteHeader(code)
	if code == 200 {
		_, _ = io.WriteString(w, `{"ok":true}`)
	} else {
		_, _ = io.WriteString(w, "nope")
	}
}

func (rc *recorder) snapshot() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.calls...)
}

func TestRun_ExactlyRegisterThenLogin(t *testing.T) {
	rc := &recorder{status: map[string]int{smoke.RegisterPath: http.StatusInternalServerError}}
	ts := httptest.NewServer(rc)
	defer ts.Close()

	var out bytes.Buffer
	ok, err := newRunner(ts.URL, &out).Run(context.Background(), strings.NewReader("\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("login returned 200, want true")
	}

	calls := rc.snapshot()
	want := []string{"POST " + smoke.RegisterPath, "POST " + smoke.LoginPath}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls %v, want %v", calls, want)
	}

	reg, login := rc.forms[0], rc.forms[1]
	u := smoke.DefaultUser()
	if reg["username"] != u.Username || reg["password"] != u.Password || reg["email"] != u.Email {
		t.Fatalf("register form %v", reg)
	}
	if login["username"] != u.Username || login["password"] != u.Password {
		t.Fatalf("login form %v", login)
	}
	if _, has := login["email"]; has {
		t.Fatal("login must not send email")
	}
	if reg["content-type"] != "application/x-www-form-urlencoded" {
		t.Fatalf("content type %q", reg["content-type"])
	}
	if !strings.Contains(out.String(), "Registration response: nope") {
		t.Fatalf("raw failure text not printed:\n%s", out.String())
	}
}

func TestRun_LoginWaitsForOperator(t *testing.T) {
	registered := make(chan struct{}, 1)
	rc := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc.ServeHTTP(w, r)
		if r.URL.Path == smoke.RegisterPath {
			registered <- struct{}{}
		}
	}))
	defer ts.Close()

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, err := newRunner(ts.URL, io.Discard).Run(context.Background(), pr)
		done <- err
	}()

	<-registered
	if n := len(rc.snapshot()); n != 1 {
		t.Fatalf("login ran before the operator pressed enter: %d calls", n)
	}
	if _, err := io.WriteString(pw, "\n"); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if n := len(rc.snapshot()); n != 2 {
		t.Fatalf("want 2 calls, got %d", n)
	}
}

func TestRegister_SuccessWithNonJSONBodyFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer ts.Close()

	var out bytes.Buffer
	_, err := newRunner(ts.URL, &out).Register(context.Background())
	if err == nil {
		t.Fatal("want decode error")
	}
	if !strings.Contains(out.String(), "Registration response status: 200") {
		t.Fatal("status should print before the body is parsed")
	}
}

func TestPause_EOFProceeds(t *testing.T) {
	var out bytes.Buffer
	if err := newRunner("http://unused", &out).Pause(strings.NewReader("")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Press Enter to test logging in with the created user...") {
		t.Fatalf("prompt missing: %q", out.String())
	}
}
