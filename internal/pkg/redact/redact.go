// redact маскирует чувствительные данные перед записью в лог:
// e-mail, токены и секретные query-параметры запросов к API.
package redact

import (
	"net/url"
	"strings"
)

const tokenMask = "[REDACTED_TOKEN]"

// secretParams — query-параметры, значения которых в лог не попадают.
var secretParams = map[string]struct{}{
	"refresh_token": {},
	"access_token":  {},
	"password":      {},
	"client_secret": {},
}

// Email маскирует e-mail для логирования.
//
// Правила:
//   - ровно один '@', иначе "***";
//   - локальная часть сокращается до двух первых рун + "***" (если она длиннее двух рун),
//     иначе заменяется на "***";
//   - домен сохраняется как есть.
//
// Примеры:
//
//	"foobar@example.com" -> "fo***@example.com"
//	"ab@ex.com"          -> "***@ex.com"
//	"foo@"               -> "fo***@"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	local, domain, _ := strings.Cut(s, "@")

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает заглушку для непустого токена и "" для пустого,
// чтобы по логу было видно, был ли токен вообще.
func Token(s string) string {
	if s == "" {
		return ""
	}

	return tokenMask
}

// URL возвращает путь с query, где значения секретных параметров заменены заглушкой.
// Схема и хост не выводятся: они одинаковы для всех записей и есть в конфиге.
func URL(u *url.URL) string {
	if u == nil {
		return ""
	}

	if u.RawQuery == "" {
		return u.Path
	}

	q := u.Query()
	for k := range q {
		if _, ok := secretParams[strings.ToLower(k)]; ok {
			q.Set(k, tokenMask)
		}
	}

	return u.Path + "?" + q.Encode()
}
