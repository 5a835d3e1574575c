package commands

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quillpost/gateway-client/internal/constants"
	"gopkg.in/yaml.v3"
)

const sessionFileName = "session.yml"

// storedCookie is one session cookie. A cookie jar only reveals names and
// values, so cookies are restored with the path of the URL they were read
// from.
type storedCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Path  string `yaml:"path"`
}

type sessionFile struct {
	Endpoint string         `yaml:"endpoint"`
	SavedAt  time.Time      `yaml:"saved_at"`
	Cookies  []storedCookie `yaml:"cookies"`
}

// SessionStore persists the gateway session cookies between CLI runs.
type SessionStore struct {
	mutex sync.Mutex
	path  string
}

// NewSessionStore creates a store backed by the file at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionStore returns the store at ~/.quill/session.yml.
func DefaultSessionStore() (*SessionStore, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	return NewSessionStore(filepath.Join(configDir, sessionFileName)), nil
}

// Path returns the session file location.
func (s *SessionStore) Path() string {
	return s.path
}

// Load restores the cookies saved for endpoint into jar. A missing file, or
// one saved for another endpoint, restores nothing.
func (s *SessionStore) Load(jar http.CookieJar, endpoint *url.URL) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// The path is derived from the user's home directory.
	// #nosec G304
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var file sessionFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrSessionFileCorrupt, err)
	}

	if file.Endpoint != endpoint.String() {
		return nil
	}

	for _, cookie := range file.Cookies {
		target := *endpoint
		target.Path = cookie.Path

		jar.SetCookies(&target, []*http.Cookie{{
			Name:  cookie.Name,
			Value: cookie.Value,
			Path:  cookie.Path,
		}})
	}

	return nil
}

// Save writes the session cookies the jar holds for endpoint and for each of
// paths below it.
func (s *SessionStore) Save(jar http.CookieJar, endpoint *url.URL, paths ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file := sessionFile{
		Endpoint: endpoint.String(),
		SavedAt:  time.Now().UTC(),
	}

	seen := map[string]bool{}
	targets := []*url.URL{endpoint}

	for _, path := range paths {
		targets = append(targets, endpoint.JoinPath(path))
	}

	// A cookie is recorded under the least specific target that sees it.
	for _, target := range targets {
		for _, cookie := range jar.Cookies(target) {
			if !isSessionCookie(cookie.Name) || seen[cookie.Name] {
				continue
			}

			seen[cookie.Name] = true

			file.Cookies = append(file.Cookies, storedCookie{
				Name:  cookie.Name,
				Value: cookie.Value,
				Path:  cookiePath(target),
			})
		}
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear removes the session file.
func (s *SessionStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

func isSessionCookie(name string) bool {
	return name == constants.AccessTokenCookie || name == constants.RefreshTokenCookie
}

func cookiePath(target *url.URL) string {
	if target.Path == "" {
		return "/"
	}

	return target.Path
}
