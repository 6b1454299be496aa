package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/account-client/internal/session"
	"github.com/pribylovaa/account-client/internal/token"
)

// Status — состояние сессии по cookie, без обращения к API.
type Status struct {
	HasAccess  bool
	Expired    bool
	ExpiresAt  time.Time // zero — exp не удалось прочитать
	HasRefresh bool
}

// LoggedIn — access-токен есть и его exp ещё не наступил.
func (s Status) LoggedIn() bool { return s.HasAccess && !s.Expired }

// Status читает cookie сессии и декодирует exp access-токена.
func (a *App) Status(ctx context.Context) (Status, error) {
	const op = "app.Status"

	var st Status

	access, err := a.store.Get(ctx, session.AccessCookie)
	switch {
	case err == nil:
		st.HasAccess = true
		st.Expired = token.IsExpired(access, a.now())
		if exp, err := token.ExpiresAt(access); err == nil {
			st.ExpiresAt = exp
		}
	case !errors.Is(err, session.ErrNotFound):
		return Status{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err = a.store.Get(ctx, session.RefreshCookie)
	switch {
	case err == nil:
		st.HasRefresh = true
	case !errors.Is(err, session.ErrNotFound):
		return Status{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}
