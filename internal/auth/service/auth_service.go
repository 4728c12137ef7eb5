// Package service orchestrates the console session lifecycle: login mints a
// token and persists the session, restoration rehydrates it at startup, and
// logout clears it.
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mallops-console/internal/audit"
	profiledomain "mallops-console/internal/profile/domain"
	sessiondomain "mallops-console/internal/session/domain"
	sessionstore "mallops-console/internal/session/store"
	"mallops-console/internal/token"
)

// State is the session lifecycle state visible to the UI.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateError          State = "error"
)

// CredentialVerifier is the minimal directory surface needed by the auth
// service.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*profiledomain.Profile, error)
	// Lookup returns the current profile for username, or nil when the
	// account no longer exists.
	Lookup(ctx context.Context, username string) (*profiledomain.Profile, error)
}

// AuthService owns the session exclusively: login, restoration, and logout
// all go through it. Operations are expected to be invoked as discrete,
// non-overlapping UI actions; the mutex only keeps internal state coherent,
// last writer wins on the session store.
type AuthService struct {
	verifier CredentialVerifier
	codec    *token.Codec
	sessions sessionstore.Store
	auditLog audit.Logger // optional
	tracer   trace.Tracer

	mu      sync.Mutex
	state   State
	current *sessiondomain.Session
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLog may be nil; tracer may be nil to disable tracing.
func NewAuthService(verifier CredentialVerifier, codec *token.Codec, sessions sessionstore.Store, auditLog audit.Logger, tracer trace.Tracer) *AuthService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("auth")
	}
	return &AuthService{
		verifier: verifier,
		codec:    codec,
		sessions: sessions,
		auditLog: auditLog,
		tracer:   tracer,
		state:    StateAnonymous,
	}
}

// Login verifies credentials, mints a token, and persists the session.
// Failures are returned as the directory's typed errors and leave any stored
// session untouched. A session-store write failure is degraded: the
// in-memory session stays authenticated and the failure is logged.
func (s *AuthService) Login(ctx context.Context, username, password string) (*profiledomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("auth.username", username)))
	defer span.End()

	s.setState(StateAuthenticating)

	p, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		s.setState(StateError)
		s.logEvent(ctx, username, audit.ActionLoginFailure, err.Error())
		return nil, err
	}

	tok, err := s.codec.Encode(p)
	if err != nil {
		s.setState(StateError)
		return nil, err
	}

	sess := &sessiondomain.Session{Profile: p, Token: tok, SavedAt: time.Now().UTC()}
	if err := s.sessions.Save(ctx, sess); err != nil {
		// Storage loss means the session will not survive a restart; the
		// live session is still usable.
		log.Printf("auth: session save failed, continuing without persistence: %v", err)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.current = sess
	s.mu.Unlock()

	s.logEvent(ctx, p.Username, audit.ActionLoginSuccess, "")
	return p.Clone(), nil
}

// RestoreSession rehydrates the session at startup. All failures are silent
// and resolve to the anonymous state: a missing session stays anonymous, a
// malformed or expired token clears storage, and an account that has since
// gone inactive or been removed clears storage. The profile's active flag is
// always re-resolved from the directory; cached claims are not authoritative
// for liveness.
func (s *AuthService) RestoreSession(ctx context.Context) *profiledomain.Profile {
	ctx, span := s.tracer.Start(ctx, "auth.restore_session")
	defer span.End()

	stored, err := s.sessions.Load(ctx)
	if err != nil {
		log.Printf("auth: session load failed, staying anonymous: %v", err)
		s.setAnonymous()
		return nil
	}
	if stored == nil {
		s.setAnonymous()
		return nil
	}

	claims, err := s.codec.Decode(stored.Token)
	if err != nil || s.codec.Expired(claims, time.Now().UTC()) {
		s.clearSilently(ctx)
		return nil
	}

	p, err := s.verifier.Lookup(ctx, claims.Username)
	if err != nil {
		// Directory unavailable: stay anonymous without destroying the
		// stored session; a later restart may succeed.
		log.Printf("auth: profile re-resolution failed, staying anonymous: %v", err)
		s.setAnonymous()
		return nil
	}
	if p == nil || !p.Active {
		s.clearSilently(ctx)
		return nil
	}

	sess := &sessiondomain.Session{Profile: p, Token: stored.Token, SavedAt: stored.SavedAt}
	s.mu.Lock()
	s.state = StateAuthenticated
	s.current = sess
	s.mu.Unlock()

	s.logEvent(ctx, p.Username, audit.ActionSessionRestore, "")
	return p.Clone()
}

// Logout clears the session and transitions to anonymous unconditionally.
// Logging out while anonymous is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "auth.logout")
	defer span.End()

	username := ""
	if p := s.CurrentProfile(); p != nil {
		username = p.Username
	}

	err := s.sessions.Clear(ctx)
	s.setAnonymous()
	if username != "" {
		s.logEvent(ctx, username, audit.ActionLogout, "")
	}
	return err
}

// State returns the current lifecycle state.
func (s *AuthService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentProfile returns a copy of the authenticated profile, or nil.
func (s *AuthService) CurrentProfile() *profiledomain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Profile.Clone()
}

// CurrentToken returns the bearer token for resource fetches, or "".
func (s *AuthService) CurrentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *AuthService) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *AuthService) setAnonymous() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.current = nil
	s.mu.Unlock()
}

func (s *AuthService) clearSilently(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil && !errors.Is(err, sessionstore.ErrStorageUnavailable) {
		log.Printf("auth: session clear failed: %v", err)
	}
	s.setAnonymous()
}

func (s *AuthService) logEvent(ctx context.Context, username, action, metadata string) {
	if s.auditLog == nil {
		return
	}
	outcome := "ok"
	if action == audit.ActionLoginFailure {
		outcome = "denied"
	}
	s.auditLog.LogEvent(ctx, username, action, outcome, metadata)
}
