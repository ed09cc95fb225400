// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package token creates and validates HMAC-signed JWTs. Tokens validated with
// Consume are single use: their id is blacklisted until the token expires.
package token

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultType is the typ header of created tokens.
const DefaultType = "JWT"

var tracer = otel.Tracer("holomush/identity/token")

// Sentinel errors for errors.Is checks.
var (
	ErrInvalid          = errors.New("invalid token")
	ErrExpired          = errors.New("token is expired")
	ErrIDMissing        = errors.New("token has no id")
	ErrBlacklisted      = errors.New("token is blacklisted")
	ErrSecretMissing    = errors.New("signing secret is required")
	ErrBlacklistMissing = errors.New("no blacklist configured")
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// CreateOptions shape a created token. Zero values are omitted.
type CreateOptions struct {
	Type      string            // typ header, DefaultType when empty
	Method    jwt.SigningMethod // HS256 when nil
	Audience  []string
	Issuer    string
	ExpiresOn time.Time
	IssuedOn  time.Time
	NotBefore time.Time
}

// CreatedToken is a signed token.
type CreatedToken struct {
	Token  string
	ID     string
	Parsed *jwt.Token
}

// ValidateOptions constrain validation. Empty lists are not checked.
type ValidateOptions struct {
	ValidTypes     []string
	ValidAudiences []string
	ValidIssuers   []string
	Consume        bool
}

// ValidatedToken holds the claims of a valid token.
type ValidatedToken struct {
	Claims jwt.MapClaims
	ID     string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock replaces the time source used for time claims.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager creates and validates tokens.
type Manager struct {
	blacklist Blacklist
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a manager. blacklist may be nil when no token is ever
// validated with Consume.
func NewManager(blacklist Blacklist, opts ...Option) *Manager {
	m := &Manager{blacklist: blacklist, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create signs claims with secret. A jti is generated when claims lack one.
// claims is not modified.
func (m *Manager) Create(ctx context.Context, claims jwt.MapClaims, secret string, opts CreateOptions) (CreatedToken, error) {
	_, span := tracer.Start(ctx, "token.create")
	defer span.End()

	if secret == "" {
		return CreatedToken{}, oops.Code("TOKEN_SECRET_MISSING").Wrap(ErrSecretMissing)
	}

	out := make(jwt.MapClaims, len(claims)+6)
	maps.Copy(out, claims)
	if id, _ := out["jti"].(string); id == "" {
		out["jti"] = uuid.NewString()
	}
	switch len(opts.Audience) {
	case 0:
	case 1:
		out["aud"] = opts.Audience[0]
	default:
		out["aud"] = slices.Clone(opts.Audience)
	}
	if opts.Issuer != "" {
		out["iss"] = opts.Issuer
	}
	setTime(out, "exp", opts.ExpiresOn)
	setTime(out, "iat", opts.IssuedOn)
	setTime(out, "nbf", opts.NotBefore)

	method := opts.Method
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	typ := opts.Type
	if typ == "" {
		typ = DefaultType
	}

	tok := jwt.NewWithClaims(method, out)
	tok.Header["typ"] = typ
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		span.RecordError(err)
		return CreatedToken{}, oops.Code("TOKEN_SIGN_FAILED").With("alg", method.Alg()).Wrap(err)
	}

	id, _ := out["jti"].(string)
	span.SetAttributes(attribute.String("token.id", id))
	return CreatedToken{Token: signed, ID: id, Parsed: tok}, nil
}

func setTime(claims jwt.MapClaims, key string, t time.Time) {
	if !t.IsZero() {
		claims[key] = jwt.NewNumericDate(t.UTC())
	}
}

// Validate verifies the signature and time claims of token, then the
// constraints given in opts.
func (m *Manager) Validate(ctx context.Context, token, secret string, opts ValidateOptions) (_ ValidatedToken, err error) {
	ctx, span := tracer.Start(ctx, "token.validate", trace.WithAttributes(attribute.Bool("token.consume", opts.Consume)))
	defer func() {
		outcome := outcomeOf(err)
		validationsTotal.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String("token.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	if secret == "" {
		return ValidatedToken{}, oops.Code("TOKEN_SECRET_MISSING").Wrap(ErrSecretMissing)
	}

	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods(hmacMethods),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ValidatedToken{}, oops.Code("TOKEN_EXPIRED").Wrap(errors.Join(ErrExpired, err))
	}
	if err != nil {
		return ValidatedToken{}, oops.Code("TOKEN_INVALID").Wrap(errors.Join(ErrInvalid, err))
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ValidatedToken{}, oops.Code("TOKEN_INVALID").With("reason", "claims").Wrap(ErrInvalid)
	}

	if err := checkConstraints(parsed, claims, opts); err != nil {
		return ValidatedToken{}, err
	}

	id, _ := claims["jti"].(string)
	if opts.Consume {
		if err := m.consume(ctx, id, claims); err != nil {
			return ValidatedToken{}, err
		}
	}
	return ValidatedToken{Claims: claims, ID: id}, nil
}

func checkConstraints(parsed *jwt.Token, claims jwt.MapClaims, opts ValidateOptions) error {
	if len(opts.ValidTypes) > 0 {
		typ, _ := parsed.Header["typ"].(string)
		if !slices.Contains(opts.ValidTypes, typ) {
			return oops.Code("TOKEN_INVALID").With("reason", "type").With("type", typ).Wrap(ErrInvalid)
		}
	}
	if len(opts.ValidAudiences) > 0 {
		audiences, err := claims.GetAudience()
		if err != nil {
			return oops.Code("TOKEN_INVALID").With("reason", "audience").Wrap(errors.Join(ErrInvalid, err))
		}
		if !slices.ContainsFunc(audiences, func(a string) bool { return slices.Contains(opts.ValidAudiences, a) }) {
			return oops.Code("TOKEN_INVALID").With("reason", "audience").With("audience", []string(audiences)).Wrap(ErrInvalid)
		}
	}
	if len(opts.ValidIssuers) > 0 {
		issuer, err := claims.GetIssuer()
		if err != nil || !slices.Contains(opts.ValidIssuers, issuer) {
			return oops.Code("TOKEN_INVALID").With("reason", "issuer").With("issuer", issuer).Wrap(ErrInvalid)
		}
	}
	return nil
}

// consume rejects a blacklisted id, then blacklists it until the token expires.
func (m *Manager) consume(ctx context.Context, id string, claims jwt.MapClaims) error {
	if id == "" {
		return oops.Code("TOKEN_ID_MISSING").Wrap(ErrIDMissing)
	}
	if m.blacklist == nil {
		return oops.Code("TOKEN_BLACKLIST_MISSING").With("token_id", id).Wrap(ErrBlacklistMissing)
	}

	blacklisted, err := m.blacklist.GetBlacklisted(ctx, []string{id})
	if err != nil {
		return oops.With("token_id", id).Wrap(err)
	}
	if len(blacklisted) > 0 {
		return oops.Code("TOKEN_BLACKLISTED").With("blacklisted_ids", blacklisted).Wrap(ErrBlacklisted)
	}

	var expiresOn time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresOn = exp.Time
	}
	if err := m.blacklist.Blacklist(ctx, []string{id}, expiresOn); err != nil {
		return oops.With("token_id", id).Wrap(err)
	}
	m.logger.DebugContext(ctx, "token consumed", "token_id", id, "expires_on", expiresOn)
	return nil
}
