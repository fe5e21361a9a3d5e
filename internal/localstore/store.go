// Package localstore persists the client's small amount of local state
// (bearer token, session cookies, UI preferences) in a YAML file.
package localstore

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Cookie is the persisted form of a session cookie.
type Cookie struct {
	Name     string    `yaml:"name"`
	Value    string    `yaml:"value"`
	Path     string    `yaml:"path,omitempty"`
	Domain   string    `yaml:"domain,omitempty"`
	Expires  time.Time `yaml:"expires,omitempty"`
	Secure   bool      `yaml:"secure,omitempty"`
	HTTPOnly bool      `yaml:"http_only,omitempty"`
}

type fileData struct {
	Token   string              `yaml:"token,omitempty"`
	Cookies map[string][]Cookie `yaml:"cookies,omitempty"`
	Prefs   map[string]string   `yaml:"prefs,omitempty"`
}

// Store is a file-backed key store. Every mutation is written through.
type Store struct {
	mu   sync.Mutex
	path string
	data fileData
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("localstore: parse %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Token returns the stored bearer token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

// SetToken stores the bearer token.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	return s.saveLocked()
}

// Cookies returns the non-expired cookies stored for apiURL.
func (s *Store) Cookies(apiURL string) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []*http.Cookie
	for _, c := range s.data.Cookies[apiURL] {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return out
}

// SetCookies replaces the cookies stored for apiURL. Max-Age is turned into
// an absolute expiry; deleted cookies (negative Max-Age) are dropped.
func (s *Store) SetCookies(apiURL string, cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Cookies == nil {
		s.data.Cookies = make(map[string][]Cookie)
	}
	now := time.Now()
	stored := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.MaxAge < 0 {
			continue
		}
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		stored = append(stored, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	if len(stored) == 0 {
		delete(s.data.Cookies, apiURL)
	} else {
		s.data.Cookies[apiURL] = stored
	}
	return s.saveLocked()
}

// ClearCredentials forgets the token and the cookies of apiURL.
func (s *Store) ClearCredentials(apiURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = ""
	delete(s.data.Cookies, apiURL)
	return s.saveLocked()
}

// Pref returns a UI preference, or "".
func (s *Store) Pref(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Prefs[key]
}

// SetPref stores a UI preference.
func (s *Store) SetPref(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Prefs == nil {
		s.data.Prefs = make(map[string]string)
	}
	s.data.Prefs[key] = value
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("localstore: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("localstore: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("localstore: replace %s: %w", s.path, err)
	}
	return nil
}
