package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedResponse — тело ответа не разбирается в ожидаемую модель.
var ErrUnexpectedResponse = errors.New("unexpected response")

// APIError — ответ API с неожиданным статусом.
//
// Msg и Loc нормализованы из трёх форм тела ошибки:
//   - {"detail": {"msg": "...", "loc": ["body", "email"]}} — доменные ошибки;
//   - {"detail": "Not authenticated"} — ошибки авторизации;
//   - {"detail": [{"loc": [...], "msg": "...", "type": "..."}]} — ошибки валидации (берётся первая).
type APIError struct {
	Status int
	Msg    string
	Loc    []string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}

	return fmt.Sprintf("api: status %d: %s", e.Status, e.Msg)
}

// Field возвращает имя поля, к которому относится ошибка (второй элемент loc), или "".
func (e *APIError) Field() string {
	if len(e.Loc) < 2 {
		return ""
	}

	return e.Loc[1]
}

// IsUnauthorized сообщает, что сервер отклонил учётные данные или токен.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsServerError сообщает о сбое на стороне сервера (5xx): текст ответа пользователю не показывается.
func (e *APIError) IsServerError() bool {
	return e.Status >= http.StatusInternalServerError
}

type errorDetail struct {
	Msg string            `json:"msg"`
	Loc []json.RawMessage `json:"loc"`
}

// parseAPIError строит APIError из статуса и тела ответа.
// Неразборчивое тело даёт APIError только со статусом.
func parseAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return out
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		out.Msg = text
		return out
	}

	var one errorDetail
	if err := json.Unmarshal(envelope.Detail, &one); err == nil {
		out.Msg, out.Loc = one.Msg, locStrings(one.Loc)
		return out
	}

	var many []errorDetail
	if err := json.Unmarshal(envelope.Detail, &many); err == nil && len(many) > 0 {
		out.Msg, out.Loc = many[0].Msg, locStrings(many[0].Loc)
	}

	return out
}

// locStrings приводит элементы loc к строкам: API кладёт туда и имена полей, и индексы.
func locStrings(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(r))
	}

	return out
}
