package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"snaplink/internal/models"
	"snaplink/internal/repositories"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail is returned when the email doesn't meet constraints.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Session is the authenticated identity attached to requests.
type Session struct {
	UserID string
	Email  string
}

// ChangeKind describes a session lifecycle transition.
type ChangeKind string

const (
	SignedIn  ChangeKind = "signed_in"
	SignedOut ChangeKind = "signed_out"
)

// Change notifies subscribers about session transitions.
type Change struct {
	Kind    ChangeKind
	Session Session
}

// Service provides authentication operations.
type Service struct {
	profiles  repositories.ProfileRepository
	jwtConfig *JWTConfig

	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

// NewService creates a new authentication service.
func NewService(profiles repositories.ProfileRepository, jwtConfig *JWTConfig) *Service {
	return &Service{
		profiles:  profiles,
		jwtConfig: jwtConfig,
		subs:      make(map[int]chan Change),
	}
}

// SignUp registers a new account and returns the profile plus a session token.
func (s *Service) SignUp(ctx context.Context, email, username, password string) (models.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return models.Profile{}, "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return models.Profile{}, "", ErrInvalidPassword
	}

	if _, _, err := s.profiles.GetProfileByEmail(ctx, email); err == nil {
		return models.Profile{}, "", ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.Profile{}, "", err
	}

	profile, err := s.profiles.CreateProfile(ctx, models.Profile{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
	}, hash)
	if err != nil {
		return models.Profile{}, "", fmt.Errorf("create profile: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, profile.ID, profile.Email)
	if err != nil {
		return models.Profile{}, "", fmt.Errorf("generate token: %w", err)
	}
	s.notify(Change{Kind: SignedIn, Session: Session{UserID: profile.ID, Email: profile.Email}})
	return profile, token, nil
}

// SignIn verifies credentials and returns the profile plus a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, hash, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return models.Profile{}, "", ErrInvalidCredentials
	}
	if err := ComparePassword(hash, password); err != nil {
		return models.Profile{}, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, profile.ID, profile.Email)
	if err != nil {
		return models.Profile{}, "", fmt.Errorf("generate token: %w", err)
	}
	s.notify(Change{Kind: SignedIn, Session: Session{UserID: profile.ID, Email: profile.Email}})
	return profile, token, nil
}

// SignOut announces the end of a session. Tokens are stateless, so the
// transition only matters to change-stream subscribers.
func (s *Service) SignOut(session Session) {
	s.notify(Change{Kind: SignedOut, Session: session})
}

// SessionFromToken resolves the session carried by a bearer token.
func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: claims.UserID, Email: claims.Email}, nil
}

// Subscribe returns a session-change stream and a cancel function.
func (s *Service) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan Change, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *Service) notify(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// Drop if slow consumer.
		}
	}
}
