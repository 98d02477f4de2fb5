// Package session owns the logged-in identity of one browser context and
// keeps it durable across reloads and process restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"pos_terminal/internal/models"
	"pos_terminal/internal/store"
)

var ErrLoginFailed = errors.New("login failed")

const (
	tokenKey = "token"
	userKey  = "user"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

type Store struct {
	kv     store.KV
	prefix string
	auth   Authenticator
	logger *log.Logger

	mu      sync.RWMutex
	current *models.Session
}

// NewStore scopes persisted entries under "<keyPrefix>:<contextID>:".
func NewStore(kv store.KV, keyPrefix, contextID string, auth Authenticator, logger *log.Logger) *Store {
	return &Store{
		kv:     kv,
		prefix: keyPrefix + ":" + contextID + ":",
		auth:   auth,
		logger: logger,
	}
}

// Restore activates the persisted session if both entries are present and
// well formed. Anything else leaves the store logged out; it never fails.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.kv.Get(ctx, s.prefix+tokenKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Printf("Warning: failed to read persisted token: %v", err)
		}
		s.setCurrent(nil)
		return
	}
	raw, err := s.kv.Get(ctx, s.prefix+userKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Printf("Warning: failed to read persisted user record: %v", err)
		}
		s.setCurrent(nil)
		return
	}
	if strings.TrimSpace(token) == "" {
		s.logger.Printf("Ignoring persisted session with empty token")
		s.setCurrent(nil)
		return
	}

	record, err := decodeUserRecord(raw)
	if err != nil {
		s.logger.Printf("Ignoring malformed persisted user record: %v", err)
		s.setCurrent(nil)
		return
	}

	s.setCurrent(&models.Session{UserRecord: *record, Token: token})
}

// Login exchanges credentials with the remote API. The session only becomes
// active once both entries are persisted.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Session, error) {
	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	record := models.UserRecord{
		EmployeeID: resp.EmployeeID,
		Username:   resp.Username,
		FullName:   resp.FullName,
		Position:   models.Role(resp.Position),
	}
	if err := validateUserRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, fmt.Errorf("%w: response carried no token", ErrLoginFailed)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := s.kv.Set(ctx, s.prefix+tokenKey, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.kv.Set(ctx, s.prefix+userKey, string(encoded)); err != nil {
		if delErr := s.kv.Delete(ctx, s.prefix+tokenKey); delErr != nil {
			s.logger.Printf("Warning: failed to roll back persisted token: %v", delErr)
		}
		return nil, fmt.Errorf("failed to persist user record: %w", err)
	}

	sess := &models.Session{UserRecord: record, Token: resp.Token}
	s.setCurrent(sess)
	s.logger.Printf("Employee %s logged in as %s", record.EmployeeID, record.Position)

	copied := *sess
	return &copied, nil
}

// Logout clears the in-memory session first, then both persisted entries,
// whether or not anything was stored.
func (s *Store) Logout(ctx context.Context) error {
	s.setCurrent(nil)
	if err := s.kv.Delete(ctx, s.prefix+tokenKey, s.prefix+userKey); err != nil {
		return fmt.Errorf("failed to erase persisted session: %w", err)
	}
	return nil
}

func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Store) Credentials() (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", "", false
	}
	return s.current.Token, s.current.EmployeeID, true
}

func (s *Store) setCurrent(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}
