package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/account-client/internal/api"
	"github.com/pribylovaa/account-client/internal/form"
	"github.com/pribylovaa/account-client/internal/models"
	"github.com/pribylovaa/account-client/internal/pkg/log"
	"github.com/pribylovaa/account-client/internal/pkg/redact"
	"github.com/pribylovaa/account-client/internal/session"
	"github.com/pribylovaa/account-client/internal/token"
	"github.com/pribylovaa/account-client/internal/validation"
)

// Login обрабатывает отправку формы входа.
//
// Неверный ввод — общий текст ошибки в f.Error, запрос не отправляется.
// 200 — форма очищается, сохраняются обе cookie, переход на /users/me.
// Ответ API 4xx — его msg в f.Error. 5xx и сбой сети — Alert "Server error".
func (a *App) Login(ctx context.Context, f *form.LoginForm) error {
	const op = "app.Login"

	email := f.Email.Value
	ctx, lg := log.With(ctx, slog.String("email", redact.Email(email)))

	if err := validation.Login(email, f.Password.Value); err != nil {
		f.Error.Set(err.Error())
		lg.Info("login_invalid_input")
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}
	f.Error.Set("")

	tokens, err := a.api.Login(ctx, email, f.Password.Value)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && !apiErr.IsServerError() {
			f.Error.Set(messageOf(apiErr))
			lg.Warn("login_rejected", slog.Int("status", apiErr.Status))
			return fmt.Errorf("%s: %w: %v", op, ErrRejected, err)
		}

		return a.serverFailure(ctx, op, err)
	}

	f.Clear()

	if err := a.saveTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return a.serverFailure(ctx, op, err)
	}

	lg.Info("login_ok", slog.String("refresh_token", redact.Token(tokens.RefreshToken)))
	a.nav.Redirect(PathMe)

	return nil
}

// Register обрабатывает отправку формы регистрации.
//
// Ошибки клиентской проверки выводятся под каждым полем; корректное поле
// очищает свою метку. 201 — Alert "Successfully registered" и очистка формы.
// Ответ API 4xx — msg под полем, на которое указывает loc; 5xx — как сбой сети.
func (a *App) Register(ctx context.Context, f *form.RegisterForm) error {
	const op = "app.Register"

	email := f.Email.Value
	ctx, lg := log.With(ctx, slog.String("email", redact.Email(email)))

	errs := a.validator.Credentials(models.Credentials{Email: email, Password: f.Password.Value})
	f.EmailError.Set(errText(errs["email"]))
	f.PasswordError.Set(errText(errs["password"]))

	if len(errs) > 0 {
		lg.Info("register_invalid_input", slog.Int("fields", len(errs)))
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	err := a.api.Register(ctx, email, f.Password.Value)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && !apiErr.IsServerError() {
			msg := messageOf(apiErr)
			switch apiErr.Field() {
			case "email":
				f.EmailError.Set(msg)
			case "password":
				f.PasswordError.Set(msg)
			default:
				a.nav.Alert(msg)
			}
			lg.Warn("register_rejected",
				slog.Int("status", apiErr.Status),
				slog.String("field", apiErr.Field()),
			)
			return fmt.Errorf("%s: %w: %v", op, ErrRejected, err)
		}

		return a.serverFailure(ctx, op, err)
	}

	lg.Info("register_ok")
	a.nav.Alert(msgRegistered)
	f.Clear()

	return nil
}

// MePage загружает защищённую страницу профиля.
//
// Сначала выполняется проверка доступа (CheckAccess); без действующей сессии
// происходит переход на "/". Затем запрашивается профиль: 200 — ShowProfile,
// любой другой ответ или сбой — cookie удаляются, Alert ("Unauthorized" на 4xx,
// "Server error" на 5xx и сбой сети) и повторная проверка доступа.
func (a *App) MePage(ctx context.Context) error {
	const op = "app.MePage"

	if !a.CheckAccess(ctx) {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	access, err := a.store.Get(ctx, session.AccessCookie)
	if err != nil {
		// CheckAccess только что подтвердил cookie; пропасть она могла лишь из-за сбоя хранилища.
		return a.serverFailure(ctx, op, err)
	}

	profile, err := a.api.Me(ctx, access)
	if err == nil {
		a.nav.ShowProfile(*profile)
		return nil
	}

	lg := log.From(ctx)
	if rmErr := a.store.Remove(ctx); rmErr != nil {
		lg.Error("session_remove_failed", slog.String("err", rmErr.Error()))
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && !apiErr.IsServerError() {
		lg.Warn("me_rejected",
			slog.Int("status", apiErr.Status),
			slog.Bool("unauthorized", apiErr.IsUnauthorized()),
		)
		a.nav.Alert(msgUnauthorized)
		a.CheckAccess(ctx)
		return fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}

	ret := a.serverFailure(ctx, op, err)
	a.CheckAccess(ctx)

	return ret
}

// CheckAccess — проверка доступа к защищённой странице.
//
// Доступ есть, если cookie accessToken присутствует и её exp ещё не наступил.
// Иначе (при включённом RefreshOnExpiry) выполняется обмен refresh-токена;
// если и это не удалось — cookie удаляются и происходит переход на "/".
// Сбой сети при обмене дополнительно показывается как "Server error".
func (a *App) CheckAccess(ctx context.Context) bool {
	lg := log.From(ctx)

	access, err := a.store.Get(ctx, session.AccessCookie)
	switch {
	case err == nil && !token.IsExpired(access, a.now()):
		return true
	case err != nil && !errors.Is(err, session.ErrNotFound):
		lg.Error("session_read_failed", slog.String("err", err.Error()))
	}

	if a.refreshOnExpiry {
		err := a.refreshAccess(ctx)
		if err == nil {
			return true
		}

		if !errors.Is(err, ErrNoSession) && !isRejection(err) {
			a.nav.Alert(msgServerError)
		}
	}

	lg.Info("access_denied")
	if err := a.store.Remove(ctx); err != nil {
		lg.Error("session_remove_failed", slog.String("err", err.Error()))
	}
	a.nav.Redirect(PathPublic)

	return false
}

// Refresh — явный обмен refresh-токена на новый access (подкоманда refresh).
func (a *App) Refresh(ctx context.Context) error {
	const op = "app.Refresh"

	err := a.refreshAccess(ctx)
	switch {
	case err == nil:
		log.From(ctx).Info("refresh_ok")
		return nil
	case errors.Is(err, ErrNoSession):
		a.nav.Alert(msgUnauthorized)
		return fmt.Errorf("%s: %w", op, err)
	}

	if isRejection(err) {
		if rmErr := a.store.Remove(ctx); rmErr != nil {
			log.From(ctx).Error("session_remove_failed", slog.String("err", rmErr.Error()))
		}
		a.nav.Alert(msgUnauthorized)
		return fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}

	return a.serverFailure(ctx, op, err)
}

// Logout удаляет обе cookie и переходит на публичную страницу.
func (a *App) Logout(ctx context.Context) error {
	const op = "app.Logout"

	if err := a.store.Remove(ctx); err != nil {
		return a.serverFailure(ctx, op, err)
	}

	log.From(ctx).Info("logout_ok")
	a.nav.Redirect(PathPublic)

	return nil
}

// CorrectURL поправляет адрес по наличию сессии: с cookie accessToken
// публичная страница "/" уводит на /users/me, без неё страница "/users/me/"
// уводит на "/". Проверяется только наличие cookie, не её срок.
func (a *App) CorrectURL(ctx context.Context, path string) {
	_, err := a.store.Get(ctx, session.AccessCookie)
	hasSession := err == nil

	switch {
	case hasSession && path == PathPublic:
		a.nav.Redirect(PathMe)
	case !hasSession && path == PathMe+"/":
		a.nav.Redirect(PathPublic)
	}
}

// refreshAccess обменивает refresh-токен и сохраняет новый access.
func (a *App) refreshAccess(ctx context.Context) error {
	const op = "app.refreshAccess"

	refresh, err := a.store.Get(ctx, session.RefreshCookie)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNoSession)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	at, err := a.api.Refresh(ctx, refresh)
	if err != nil {
		log.From(ctx).Warn("refresh_failed",
			slog.String("refresh_token", redact.Token(refresh)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.store.Set(ctx, session.NewCookie(session.AccessCookie, at.AccessToken)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) saveTokens(ctx context.Context, access, refresh string) error {
	if err := a.store.Set(ctx, session.NewCookie(session.AccessCookie, access)); err != nil {
		return err
	}

	if refresh == "" {
		return nil
	}

	return a.store.Set(ctx, session.NewCookie(session.RefreshCookie, refresh))
}

// isRejection — API отклонило токен (401/403): сессия недействительна.
func isRejection(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// messageOf — текст для пользователя; при пустом msg — текст статуса.
func messageOf(e *api.APIError) string {
	if e.Msg != "" {
		return e.Msg
	}

	return http.StatusText(e.Status)
}

func errText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
