// internal/auth/session.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// KeyringService is the service name for keyring storage
const KeyringService = "tablecrawl"

const manifestKey = "_manifest"

// ErrSessionExpired is returned when every cookie of a session has expired.
var ErrSessionExpired = errors.New("session expired")

// Session is a named set of cookies captured after logging in.
type Session struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// FromNetwork converts cookies read from Chrome.
func FromNetwork(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// CookieParams converts the session's cookies for network.SetCookies.
// Session cookies (no expiry) stay session cookies.
func (s *Session) CookieParams() []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			t := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &t
		}
		params = append(params, p)
	}
	return params
}

// latestExpiry sets ExpiresAt from the longest-lived cookie.
func (s *Session) latestExpiry() {
	maxExpires := 0.0
	for _, c := range s.Cookies {
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		s.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}
}

// Store persists sessions in the OS keyring, or as files in Dir when the
// keyring is unavailable (CI, containers, remote IDEs).
type Store struct {
	Service string
	Dir     string

	once     sync.Once
	fileMode bool
}

// NewStore returns a store whose file fallback lives in dir.
func NewStore(dir string) *Store {
	return &Store{Service: KeyringService, Dir: dir}
}

// NewFileStore always stores sessions as files in dir.
func NewFileStore(dir string) *Store {
	s := &Store{Service: KeyringService, Dir: dir, fileMode: true}
	s.once.Do(func() {})
	return s
}

func (s *Store) useFiles() bool {
	s.once.Do(func() {
		if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
			s.fileMode = true
			return
		}
		probe := "_probe_keyring_access_"
		if err := keyring.Set(s.Service, probe, "probe"); err != nil {
			log.Debug().Err(err).Msg("Keyring unavailable, using session files")
			s.fileMode = true
			return
		}
		_ = keyring.Delete(s.Service, probe)
	})
	return s.fileMode
}

func (s *Store) path(name string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return filepath.Join(s.Dir, name+".json"), nil
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if name == manifestKey || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// Save stores session under its name, replacing any previous one.
func (s *Store) Save(session *Session) error {
	if err := validName(session.Name); err != nil {
		return err
	}
	if session.ExpiresAt.IsZero() {
		session.latestExpiry()
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if s.useFiles() {
		path, err := s.path(session.Name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(s.Service, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(session.Name, true)
}

// Load returns the named session. Expired sessions are reported as
// ErrSessionExpired.
func (s *Store) Load(name string) (*Session, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var data []byte
	if s.useFiles() {
		path, err := s.path(name)
		if err != nil {
			return nil, err
		}
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load session %q: %w", name, err)
		}
	} else {
		v, err := keyring.Get(s.Service, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %q from keyring: %w", name, err)
		}
		data = []byte(v)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%q: %w", name, ErrSessionExpired)
	}
	return &session, nil
}

// Delete removes the named session. Deleting a missing file session is not
// an error.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	if s.useFiles() {
		path, err := s.path(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(s.Service, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(name, false)
}

// List returns the stored session names in sorted order.
func (s *Store) List() ([]string, error) {
	if s.useFiles() {
		entries, err := os.ReadDir(s.Dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, strings.TrimSuffix(e.Name(), ".json"))
			}
		}
		slices.Sort(names)
		return names, nil
	}

	// The keyring cannot enumerate entries, so names are tracked in a manifest.
	raw, err := keyring.Get(s.Service, manifestKey)
	if err != nil {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) updateManifest(name string, add bool) error {
	names, err := s.List()
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if add {
		names = append(names, name)
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return keyring.Set(s.Service, manifestKey, string(data))
}
