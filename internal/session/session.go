// session хранит cookie сессии между запусками клиента.
//
// Сессия — это две cookie с путём "/": accessToken (короткоживущий JWT)
// и refreshToken (для выпуска нового access). Хранилище ведёт себя как
// cookie-хранилище браузера: cookie с истёкшим Expires (или MaxAge < 0)
// удаляется при записи и не возвращается при чтении.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
	CookiePath    = "/"
)

// ErrNotFound — cookie отсутствует или истекла.
var ErrNotFound = errors.New("cookie not found")

//go:generate mockgen -source=session.go -destination=../../mocks/mock_session.go -package=mocks

// Store — контракт хранилища cookie.
type Store interface {
	// Get возвращает значение cookie или ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
	// Set сохраняет cookie; истёкшая cookie удаляет запись.
	Set(ctx context.Context, c *http.Cookie) error
	// Remove удаляет обе cookie сессии.
	Remove(ctx context.Context) error
	// Close освобождает ресурсы бэкенда.
	Close() error
}

// epoch — Thu, 01 Jan 1970 00:00:00 UTC: так cookie удаляются в браузере.
var epoch = time.Unix(0, 0).UTC()

// NewCookie — сессионная cookie (без Expires) с путём "/".
func NewCookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value, Path: CookiePath}
}

// ExpiredCookie — cookie с Expires в 1970 году; её запись удаляет значение.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{Name: name, Value: "", Path: CookiePath, Expires: epoch}
}

// IsExpired сообщает, что cookie уже не должна храниться к моменту now.
func IsExpired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}

	if c.MaxAge > 0 {
		return false
	}

	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// Deadline — момент, после которого cookie истекает; zero — не истекает.
func Deadline(c *http.Cookie, now time.Time) time.Time {
	if c.MaxAge > 0 {
		return now.Add(time.Duration(c.MaxAge) * time.Second)
	}

	return c.Expires
}

// RemoveAll записывает истёкшие accessToken и refreshToken.
// Используется бэкендами для реализации Store.Remove.
func RemoveAll(ctx context.Context, s Store) error {
	if err := s.Set(ctx, ExpiredCookie(AccessCookie)); err != nil {
		return err
	}

	return s.Set(ctx, ExpiredCookie(RefreshCookie))
}
