// Package session keeps the small amount of client state that survives
// between runs: the bearer token, a display copy of the account and the
// preferred guide.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crowlands/crowlands/pkg/domain"
)

// Environment overrides.
const (
	EnvHome  = "CROWLANDS_HOME"
	EnvToken = "CROWLANDS_TOKEN"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
	guideFile = "guide"
)

// ErrUnknownGuide is returned when saving a guide id that is not registered.
var ErrUnknownGuide = errors.New("unknown guide")

// DefaultDir returns $CROWLANDS_HOME, or ~/.crowlands.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".crowlands"), nil
}

// Store reads and writes session files under one directory. Every read goes
// to disk, so a login or logout from another process is seen immediately.
type Store struct {
	dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Open returns a Store rooted at DefaultDir.
func Open() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return New(dir), nil
}

// Dir is the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// Token returns the bearer token using precedence: env var > file > empty.
// It implements client.TokenSource.
func (s *Store) Token() string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	data, err := os.ReadFile(s.path(tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// HasToken reports whether a token is available.
func (s *Store) HasToken() bool { return s.Token() != "" }

// SaveToken writes the token with owner-only permissions.
func (s *Store) SaveToken(tok string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(tokenFile), []byte(strings.TrimSpace(tok)), 0600); err != nil {
		return fmt.Errorf("session.SaveToken: %w", err)
	}
	return nil
}

// CachedUser returns the account copy saved at login, or nil if there is none.
// The tier it carries is for display only.
func (s *Store) CachedUser() (*domain.User, error) {
	data, err := os.ReadFile(s.path(userFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session.CachedUser: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("session.CachedUser: %w", err)
	}
	return &u, nil
}

// SaveUser replaces the cached account copy.
func (s *Store) SaveUser(u domain.User) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("session.SaveUser: %w", err)
	}
	if err := os.WriteFile(s.path(userFile), data, 0600); err != nil {
		return fmt.Errorf("session.SaveUser: %w", err)
	}
	return nil
}

// SaveLogin stores the token and user from a login or register response.
func (s *Store) SaveLogin(resp domain.AuthResponse) error {
	if err := s.SaveToken(resp.Token); err != nil {
		return err
	}
	return s.SaveUser(resp.User)
}

// Guide returns the preferred guide id, or "" if none is set or the saved
// id is no longer registered.
func (s *Store) Guide() string {
	data, err := os.ReadFile(s.path(guideFile))
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(string(data))
	if !domain.ValidGuideID(id) {
		return ""
	}
	return id
}

// SaveGuide persists the preferred guide. An empty id clears it.
func (s *Store) SaveGuide(id string) error {
	if id == "" {
		if err := os.Remove(s.path(guideFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("session.SaveGuide: %w", err)
		}
		return nil
	}
	if !domain.ValidGuideID(id) {
		return fmt.Errorf("session.SaveGuide: %w: %q", ErrUnknownGuide, id)
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(guideFile), []byte(id), 0600); err != nil {
		return fmt.Errorf("session.SaveGuide: %w", err)
	}
	return nil
}

// Clear removes the token and cached user. It reports whether a token file
// was present.
func (s *Store) Clear() (bool, error) {
	had := true
	if err := os.Remove(s.path(tokenFile)); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("session.Clear: %w", err)
		}
		had = false
	}
	if err := os.Remove(s.path(userFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return had, fmt.Errorf("session.Clear: %w", err)
	}
	return had, nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	return nil
}
