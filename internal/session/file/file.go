// file — хранилище cookie в JSON-файле (по умолчанию ~/.config/account-client/cookies.json).
//
// Файл перечитывается на каждой операции: несколько запусков клиента видят одну сессию.
// Запись атомарная (временный файл + rename), права 0600.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pribylovaa/account-client/internal/session"
)

// entry — cookie в том виде, в каком она лежит на диске.
type entry struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires,omitempty"`
}

// Store реализует session.Store поверх файла.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

var _ session.Store = (*Store)(nil)

// Option — настройка Store.
type Option func(*Store)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт хранилище; каталог файла создаётся при первой записи.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("session.file.New: empty path")
	}

	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) Get(ctx context.Context, name string) (string, error) {
	const op = "session.file.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	e, ok := entries[name]
	if !ok || (!e.Expires.IsZero() && !s.now().Before(e.Expires)) {
		return "", fmt.Errorf("%s: %w", op, session.ErrNotFound)
	}

	return e.Value, nil
}

func (s *Store) Set(ctx context.Context, c *http.Cookie) error {
	const op = "session.file.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if session.IsExpired(c, now) {
		delete(entries, c.Name)
	} else {
		path := c.Path
		if path == "" {
			path = session.CookiePath
		}

		entries[c.Name] = entry{
			Name:    c.Name,
			Value:   c.Value,
			Path:    path,
			Expires: session.Deadline(c, now),
		}
	}

	if err := s.write(entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context) error {
	return session.RemoveAll(ctx, s)
}

// Close ничего не держит открытым.
func (s *Store) Close() error { return nil }

func (s *Store) read() (map[string]entry, error) {
	out := map[string]entry{}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}

	if len(b) == 0 {
		return out, nil
	}

	var list []entry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	for _, e := range list {
		out[e.Name] = e
	}

	return out, nil
}

func (s *Store) write(entries map[string]entry) error {
	list := make([]entry, 0, len(entries))
	for _, name := range []string{session.AccessCookie, session.RefreshCookie} {
		if e, ok := entries[name]; ok {
			list = append(list, e)
			delete(entries, name)
		}
	}
	for _, e := range entries {
		list = append(list, e)
	}

	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}
