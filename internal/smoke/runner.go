package smoke

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Veysel440/go-auth-smoke/internal/config"
)

const (
	RegisterPath = "/api/register"
	LoginPath    = "/api/login"
)

type Runner struct {
	Base string
	HTTP *http.Client
	Out  io.Writer
	User TestUser
	Log  *slog.Logger
}

func New(cfg config.Config, out io.Writer, log *slog.Logger) *Runner {
	return &Runner{
		Base: strings.TrimRight(cfg.APIBase, "/"),
		HTTP: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Out:  out,
		User: DefaultUser(),
		Log:  log,
	}
}

func (r *Runner) post(ctx context.Context, path string, form url.Values) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read %s response: %w", path, err)
	}
	r.Log.Debug("http",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("dur", time.Since(start).String()),
		slog.Int("bytes", len(raw)),
	)
	return Result{Status: resp.StatusCode, OK: isSuccess(resp.StatusCode), Text: string(raw)}, nil
}

// show prints the status, then the parsed body on success or the raw text
// otherwise. A success body that is not JSON is an error.
func (r *Runner) show(label string, res *Result) error {
	fmt.Fprintf(r.Out, "%s response status: %d\n", label, res.Status)
	if !res.OK {
		fmt.Fprintf(r.Out, "%s response: %s\n", label, res.Text)
		return nil
	}
	if err := res.decode(); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s response: %v\n", label, res.Body)
	return nil
}

func (r *Runner) Register(ctx context.Context) (TestUser, error) {
	u := r.User
	fmt.Fprintln(r.Out, "\n===== Creating Test User =====")
	fmt.Fprintf(r.Out, "Registering user: %s\n", u.Username)

	res, err := r.post(ctx, RegisterPath, u.registerForm())
	if err != nil {
		return u, err
	}
	if err := r.show("Registration", &res); err != nil {
		return u, err
	}
	if !res.OK {
		r.Log.Warn("registration not accepted", slog.Int("status", res.Status), slog.String("username", u.Username))
	}
	return u, nil
}

// Pause blocks until the operator sends a newline. EOF counts as one so the
// command also works with stdin redirected.
func (r *Runner) Pause(in io.Reader) error {
	fmt.Fprint(r.Out, "\nPress Enter to test logging in with the created user...")
	_, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func (r *Runner) Login(ctx context.Context, u TestUser) (bool, error) {
	fmt.Fprintln(r.Out, "\n===== Testing Login =====")
	fmt.Fprintf(r.Out, "Logging in with user: %s\n", u.Username)

	res, err := r.post(ctx, LoginPath, u.loginForm())
	if err != nil {
		return false, err
	}
	if err := r.show("Login", &res); err != nil {
		return false, err
	}
	return res.OK, nil
}

// Run registers, waits for the operator, then logs in. It reports whether
// login succeeded; a failed login is not an error.
func (r *Runner) Run(ctx context.Context, in io.Reader) (bool, error) {
	u, err := r.Register(ctx)
	if err != nil {
		return false, err
	}
	if err := r.Pause(in); err != nil {
		return false, err
	}
	return r.Login(ctx, u)
}
