// Package auth issues and validates the JWTs carried in session cookies and the
// short-lived tokens used to open websocket connections and subscribe to channels.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"courtside/internal/config"
	"courtside/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Kind distinguishes session tokens so a refresh token can never be used as an access token.
type Kind string

const (
	KindAccess       Kind = "access"
	KindRefresh      Kind = "refresh"
	KindConnection   Kind = "ws_connection"
	KindSubscription Kind = "ws_subscription"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevoked      = errors.New("token has been revoked")
)

const blacklistPrefix = "blacklist:"

// Claims is the payload of every token issued by Manager.
type Claims struct {
	jwt.RegisteredClaims
	Kind     Kind   `json:"typ"`
	Username string `json:"username,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// Pair is an access/refresh token pair with their expirations.
type Pair struct {
	Access         string
	Refresh        string
	AccessExpires  time.Time
	RefreshExpires time.Time
}

// Manager signs and validates tokens. Revocations live in Redis; a nil client
// disables the blacklist.
type Manager struct {
	secret     []byte
	wsSecret   []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	wsTTL      time.Duration
	rdb        *redis.Client
	now        func() time.Time
}

// NewManager builds a Manager from configuration.
func NewManager(cfg *config.Config, rdb *redis.Client) *Manager {
	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		wsSecret:   []byte(cfg.WSTokenSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		wsTTL:      cfg.WSTokenTTL(),
		rdb:        rdb,
		now:        time.Now,
	}
}

func (m *Manager) claims(userID uint, kind Kind, ttl time.Duration) Claims {
	now := m.now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}
}

func sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Issue creates a fresh access/refresh pair for the user.
func (m *Manager) Issue(userID uint, username string) (Pair, error) {
	access := m.claims(userID, KindAccess, m.accessTTL)
	access.Username = username
	refresh := m.claims(userID, KindRefresh, m.refreshTTL)
	refresh.Username = username

	accessToken, err := sign(access, m.secret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := sign(refresh, m.secret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		Access:         accessToken,
		Refresh:        refreshToken,
		AccessExpires:  access.ExpiresAt.Time,
		RefreshExpires: refresh.ExpiresAt.Time,
	}, nil
}

func (m *Manager) parse(token string, kind Kind, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	return claims, nil
}

// Parse validates a session token of the given kind, including the revocation list.
func (m *Manager) Parse(ctx context.Context, token string, kind Kind) (*Claims, error) {
	claims, err := m.parse(token, kind, m.secret)
	if err != nil {
		return nil, err
	}
	revoked, err := m.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Refresh validates a refresh token, revokes it and issues a new pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (Pair, *Claims, error) {
	claims, err := m.Parse(ctx, refreshToken, KindRefresh)
	if err != nil {
		return Pair{}, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return Pair{}, nil, err
	}
	if err := m.Revoke(ctx, claims); err != nil {
		return Pair{}, nil, err
	}
	pair, err := m.Issue(userID, claims.Username)
	return pair, claims, err
}

// Revoke blacklists the token's jti until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := m.rdb.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("blacklist_set").Inc()
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the jti is blacklisted. Redis failures fail open.
func (m *Manager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := m.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("blacklist_exists").Inc()
		return false, nil
	}
	return n > 0, nil
}

// ConnectionToken returns a short-lived token that authorizes opening a websocket.
func (m *Manager) ConnectionToken(userID uint) (string, error) {
	return sign(m.claims(userID, KindConnection, m.wsTTL), m.wsSecret)
}

// SubscriptionToken returns a short-lived token that authorizes subscribing to one channel.
func (m *Manager) SubscriptionToken(userID uint, channel string) (string, error) {
	claims := m.claims(userID, KindSubscription, m.wsTTL)
	claims.Channel = channel
	return sign(claims, m.wsSecret)
}

// ParseConnectionToken validates a websocket connection token and returns its user.
func (m *Manager) ParseConnectionToken(token string) (uint, error) {
	claims, err := m.parse(token, KindConnection, m.wsSecret)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// ParseSubscriptionToken validates a subscription token and returns its user and channel.
func (m *Manager) ParseSubscriptionToken(token string) (uint, string, error) {
	claims, err := m.parse(token, KindSubscription, m.wsSecret)
	if err != nil {
		return 0, "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, "", err
	}
	return userID, claims.Channel, nil
}
