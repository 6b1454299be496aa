// token проверяет срок действия access-токена на стороне клиента.
//
// Подпись НЕ проверяется: секрета у клиента нет, проверка носит рекомендательный
// характер и нужна только чтобы не ходить в API с заведомо протухшим токеном.
// Окончательное решение всегда за сервером (401 на /users/me).
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed — не три сегмента или payload не разбирается как base64url JSON.
	ErrMalformed = errors.New("malformed token")

	// ErrNoExpiry — в payload нет claim exp.
	ErrNoExpiry = errors.New("token has no exp claim")
)

var parser = jwt.NewParser()

// ExpiresAt декодирует средний сегмент токена и возвращает момент истечения (exp).
// Заголовок не читается: alg и typ на решение не влияют.
func ExpiresAt(raw string) (time.Time, error) {
	const op = "token.ExpiresAt"

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%s: %w: %d segments", op, ErrMalformed, len(parts))
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	if exp == nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrNoExpiry)
	}

	return exp.Time, nil
}

// IsExpired сообщает, что токен истёк к моменту now.
// Любая ошибка разбора (в том числе отсутствие exp) трактуется как «истёк».
func IsExpired(raw string, now time.Time) bool {
	exp, err := ExpiresAt(raw)
	if err != nil {
		return true
	}

	return !now.Before(exp)
}
