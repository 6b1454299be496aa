// app содержит обработчики действий пользователя: вход, регистрация, страница
// профиля, обновление токена, выход и проверку доступа к защищённой странице.
//
// Основные аспекты:
//   - зависимости (API, хранилище cookie, представление, часы) передаются явно через Deps;
//   - один вызов обработчика — не больше одного запроса в API (плюс обмен refresh-токена
//     в проверке доступа), без ретраев;
//   - ошибки сети и разбора логируются и показываются пользователю сообщением
//     "Server error"; отказ авторизации очищает cookie и уводит на публичную страницу;
//   - обработчик возвращает ошибку вызывающему (CLI выставляет по ней код выхода),
//     но всю обратную связь пользователю уже выдал через View.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/account-client/internal/models"
	"github.com/pribylovaa/account-client/internal/pkg/log"
	"github.com/pribylovaa/account-client/internal/session"
	"github.com/pribylovaa/account-client/internal/validation"
)

const (
	PathPublic = "/"
	PathMe     = "/users/me"

	msgServerError  = "Server error"
	msgUnauthorized = "Unauthorized"
	msgRegistered   = "Successfully registered"

	// maxHops — предел цепочки переходов (защита от зацикливания).
	maxHops = 5
)

var (
	// ErrInvalidInput — форма не прошла клиентскую проверку; запрос не отправлялся.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRejected — API ответило ошибкой (текст уже показан в форме).
	ErrRejected = errors.New("rejected by server")

	// ErrUnauthorized — нет действующей сессии или сервер её не принял.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServer — сеть, неожиданный ответ или сбой хранилища cookie.
	ErrServer = errors.New("server error")

	// ErrNoSession — в хранилище нет refresh-токена.
	ErrNoSession = errors.New("no session")

	// ErrUnknownPage — переход на страницу, которой нет у клиента.
	ErrUnknownPage = errors.New("unknown page")

	// ErrRedirectLoop — превышен предел переходов.
	ErrRedirectLoop = errors.New("too many redirects")
)

//go:generate mockgen -source=app.go -destination=../../mocks/mock_app.go -package=mocks

// API — вызовы user-account API (реализация: api.Client).
type API interface {
	Login(ctx context.Context, email, password string) (*models.Tokens, error)
	Register(ctx context.Context, email, password string) error
	Me(ctx context.Context, accessToken string) (*models.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AccessToken, error)
}

// View — обратная связь пользователю.
type View interface {
	// Alert — блокирующее сообщение (успех регистрации, ошибка сервера).
	Alert(msg string)
	// Redirect — переход на другую страницу клиента.
	Redirect(path string)
	// ShowProfile — вывод данных профиля на странице /users/me.
	ShowProfile(p models.Profile)
}

// Deps — зависимости App.
type Deps struct {
	API   API
	Store session.Store
	View  View
	// Now — источник времени для проверки exp; nil — time.Now.
	Now func() time.Time
	// RefreshOnExpiry — при истёкшем access пробовать обменять refresh-токен.
	RefreshOnExpiry bool
}

// App — обработчики действий пользователя.
type App struct {
	api             API
	store           session.Store
	nav             *navigator
	validator       *validation.Validator
	now             func() time.Time
	refreshOnExpiry bool
}

// New создаёт App.
func New(d Deps) *App {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	return &App{
		api:             d.API,
		store:           d.Store,
		nav:             &navigator{View: d.View},
		validator:       validation.New(),
		now:             now,
		refreshOnExpiry: d.RefreshOnExpiry,
	}
}

// navigator запоминает последний запрошенный переход, чтобы App мог его выполнить.
type navigator struct {
	View
	pending string
}

func (n *navigator) Redirect(path string) {
	n.pending = path
	n.View.Redirect(path)
}

func (n *navigator) take() string {
	p := n.pending
	n.pending = ""
	return p
}

// Visit открывает страницу path и проходит по всем переходам, которые она запросила.
// Возвращается первая ошибка загрузки страницы; переходы выполняются и после неё.
func (a *App) Visit(ctx context.Context, path string) error {
	a.nav.pending = path
	return a.Follow(ctx)
}

// Follow выполняет переход, запрошенный последним обработчиком (если был).
func (a *App) Follow(ctx context.Context) error {
	const op = "app.Follow"

	var first error
	for hops := 0; ; hops++ {
		next := a.nav.take()
		if next == "" {
			return first
		}

		if hops >= maxHops {
			return fmt.Errorf("%s: %w", op, ErrRedirectLoop)
		}

		log.From(ctx).Debug("page_load", slog.String("path", next))

		if err := a.load(ctx, next); err != nil && first == nil {
			first = err
		}
	}
}

func (a *App) load(ctx context.Context, path string) error {
	switch path {
	case PathPublic, PathMe, PathMe + "/":
	default:
		return fmt.Errorf("app.load: %w: %q", ErrUnknownPage, path)
	}

	a.CorrectURL(ctx, path)
	if a.nav.pending != "" || path == PathPublic {
		return nil
	}

	return a.MePage(ctx)
}

// serverFailure — общая реакция на сбой сети/разбора: лог + Alert.
func (a *App) serverFailure(ctx context.Context, op string, err error) error {
	log.From(ctx).Error("request_failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	a.nav.Alert(msgServerError)

	return fmt.Errorf("%s: %w: %v", op, ErrServer, err)
}
