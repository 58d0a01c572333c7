package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	redisclient "github.com/eddyjj92/compay-storefront/pkg/redis"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey struct{}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// Manager loads and persists visitor sessions. Session IDs travel in an
// HMAC-signed cookie so a visitor cannot forge another visitor's ID.
type Manager struct {
	store  sessionStore
	cfg    config.SessionConfig
	secret []byte
	logg   *logger.Logger
}

func NewManager(client *redisclient.Client, cfg config.SessionConfig, logg *logger.Logger) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL() <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{
		store:  client,
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		logg:   logg,
	}, nil
}

// NewContext attaches a session to ctx the way the middleware does.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the request's session, or nil outside the middleware.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(ctxKey{}).(*Session); ok {
		return sess
	}
	return nil
}

// Middleware attaches a session to every request and persists it after the
// handler when it changed. New visitors get a fresh signed cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := m.load(ctx, r)

		if sess.IsNew() {
			m.issueCookie(w, sess.ID)
		}
		if m.logg != nil {
			ctx = m.logg.WithVisitorID(ctx, sess.ID)
		}
		ctx = context.WithValue(ctx, ctxKey{}, sess)

		next.ServeHTTP(w, r.WithContext(ctx))

		if sess.IsDirty() || sess.IsNew() {
			if err := m.Save(ctx, sess); err != nil && m.logg != nil {
				m.logg.Error(ctx, "session.save_failed", err)
			}
		}
	})
}

func (m *Manager) load(ctx context.Context, r *http.Request) *Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return newSession(uuid.NewString(), Data{}, true)
	}

	id, err := m.verify(cookie.Value)
	if err != nil {
		return newSession(uuid.NewString(), Data{}, true)
	}

	raw, err := m.store.Get(ctx, m.store.SessionKey(id))
	if err != nil {
		if !errors.Is(err, redisclient.ErrNotFound) && m.logg != nil {
			m.logg.Warn(m.logg.WithVisitorID(ctx, id), "session.load_failed")
		}
		return newSession(id, Data{}, true)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return newSession(id, Data{}, true)
	}
	return newSession(id, data, false)
}

// Save persists the session payload with the configured TTL.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	payload, err := sess.marshal()
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return m.store.Set(ctx, m.store.SessionKey(sess.ID), string(payload), m.cfg.TTL())
}

// Destroy removes the stored session payload.
func (m *Manager) Destroy(ctx context.Context, sess *Session) error {
	return m.store.Del(ctx, m.store.SessionKey(sess.ID))
}

func (m *Manager) issueCookie(w http.ResponseWriter, id string) {
	signed, err := m.sign(id)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL().Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) sign(id string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL())),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) verify(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.Subject, nil
}
