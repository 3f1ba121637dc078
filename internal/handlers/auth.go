package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	apperr "github.com/Veysel440/go-auth-smoke/internal/errors"
	"github.com/Veysel440/go-auth-smoke/internal/jwtauth"
	"github.com/Veysel440/go-auth-smoke/internal/metrics"
	"github.com/Veysel440/go-auth-smoke/internal/middleware"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
	"github.com/Veysel440/go-auth-smoke/internal/security"
)

// LoginGuard is satisfied by security.Brute.
type LoginGuard interface {
	Allow(ctx context.Context, r *http.Request, username string) (ok bool, remaining int, ttl time.Duration)
	Reset(ctx context.Context, r *http.Request, username string)
}

type Auth struct {
	Cfg     config.Config
	Users   repos.Store
	Keys    jwtauth.KeyProvider
	Limiter func(string) bool
	Guard   LoginGuard
	Metrics *repos.AuthMetrics
	Mx      *metrics.Registry

	dummyOnce sync.Once
	dummyHash []byte
}

type registerForm struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,min=8,max=128"`
	Email    string `validate:"required,email,max=200"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,64}$`)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}()

func validationFields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(1 << 20)
	}
	return r.ParseForm()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Auth) failed(op, reason string) {
	if h.Metrics != nil {
		h.Metrics.Failed.WithLabelValues(op, reason).Inc()
	}
}

func (h *Auth) storeErr(op string) {
	if h.Mx != nil {
		h.Mx.StoreErr.WithLabelValues(op).Inc()
	}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.failed("register", "bad_form")
		apperr.Write(w, r, apperr.E(http.StatusBadRequest, "bad_request", "bad form body", err, nil))
		return
	}
	in := registerForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
	}
	if err := validate.Struct(in); err != nil {
		h.failed("register", "invalid")
		apperr.Write(w, r, apperr.Validation(validationFields(err)))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.Cfg.BcryptCost)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.DBTimeout)
	defer cancel()

	_, err = h.Users.Create(ctx, repos.User{Username: in.Username, Email: in.Email, PasswordHash: string(hash)})
	switch {
	case errors.Is(err, repos.ErrDuplicate):
		h.failed("register", "conflict")
		apperr.Write(w, r, apperr.Conflict)
		return
	case err != nil:
		h.storeErr("create")
		apperr.Write(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.Registered.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "User registered successfully",
		"username": in.Username,
		"email":    in.Email,
	})
}

// compareUnknown burns a bcrypt comparison for unknown usernames so they
// cost the same as a wrong password.
func (h *Auth) compareUnknown(password string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.Cfg.BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.failed("login", "bad_form")
		apperr.Write(w, r, apperr.E(http.StatusBadRequest, "bad_request", "bad form body", err, nil))
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		fields := map[string]string{}
		if username == "" {
			fields["username"] = "required"
		}
		if password == "" {
			fields["password"] = "required"
		}
		h.failed("login", "invalid")
		apperr.Write(w, r, apperr.Validation(fields))
		return
	}

	if h.Guard != nil {
		if ok, _, ttl := h.Guard.Allow(r.Context(), r, username); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			h.failed("login", "rate_limited")
			apperr.Write(w, r, apperr.TooMany)
			return
		}
	} else if h.Limiter != nil && !h.Limiter(username) {
		w.Header().Set("Retry-After", "2")
		h.failed("login", "rate_limited")
		apperr.Write(w, r, apperr.TooMany)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.DBTimeout)
	defer cancel()

	u, err := h.Users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		h.compareUnknown(password)
		h.reject(w, r)
		return
	case err != nil:
		h.storeErr("find")
		apperr.Write(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		h.reject(w, r)
		return
	}

	sid, err := jwtauth.Issue(h.Keys, h.Cfg.JWTIssuer, u.Username, h.Cfg.SessionTTL)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if h.Guard != nil {
		h.Guard.Reset(r.Context(), r, username)
	}
	if h.Metrics != nil {
		h.Metrics.LoggedIn.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Login successful",
		"username":   u.Username,
		"session_id": sid,
		"token_type": "bearer",
	})
}

func (h *Auth) reject(w http.ResponseWriter, r *http.Request) {
	h.failed("login", "bad_credentials")
	if h.Cfg.LoginFailDelay > 0 {
		time.Sleep(security.JitterBackoff(h.Cfg.LoginFailDelay))
	}
	apperr.Write(w, r, apperr.Unauthorized)
}

func (h *Auth) Session(w http.ResponseWriter, r *http.Request) {
	name, ok := middleware.Username(r.Context())
	if !ok {
		apperr.Write(w, r, apperr.E(http.StatusUnauthorized, "unauthorized", "missing session", nil, nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"username": name})
}
