package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Credentials — email+пароль из формы входа/регистрации.
// Теги validate разбирает пакет validation.
type Credentials struct {
	Email    string `json:"email"    validate:"account_email"`
	Password string `json:"password" validate:"account_password"`
}

// Profile — ответ GET /users/me.
type Profile struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
}

// UserID — идентификатор пользователя. API отдаёт его числом или строкой (uuid),
// поэтому храним текстовое представление как есть.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("models.UserID: %w", err)
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("models.UserID: %w", err)
	}
	*id = UserID(n.String())

	return nil
}

func (id UserID) String() string { return string(id) }
