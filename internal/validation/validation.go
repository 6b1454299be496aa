// validation — клиентская проверка полей формы до отправки запроса в API.
//
// Функции Email/Password чистые: возвращают nil, если поле корректно, или ошибку
// с человекочитаемым текстом, который показывается под полем формы как есть.
// Те же правила зарегистрированы как теги go-playground/validator
// (account_email, account_password) для проверки models.Credentials целиком.
package validation

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/pribylovaa/account-client/internal/models"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 256
)

var (
	ErrInvalidEmail = errors.New("Invalid email address")

	ErrPasswordTooShort  = errors.New("Password should contain at least 8 characters")
	ErrPasswordTooLong   = errors.New("Password cannot exceed 256 characters")
	ErrPasswordNoLower   = errors.New("Password must include at least 1 lowercase character")
	ErrPasswordNoUpper   = errors.New("Password must include at least 1 uppercase character")
	ErrPasswordNoDigit   = errors.New("Password must include at least 1 digit")
	ErrIncorrectLoginArg = errors.New("Email address or password is incorrect")
)

var (
	emailRe = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// Email проверяет форму адреса.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// Password проверяет пароль по фиксированному набору правил.
// Возвращается первое нарушенное правило; длина считается в символах.
func Password(pw string) error {
	n := utf8.RuneCountInString(pw)

	switch {
	case n < minPasswordLen:
		return ErrPasswordTooShort
	case n > maxPasswordLen:
		return ErrPasswordTooLong
	case !lowerRe.MatchString(pw):
		return ErrPasswordNoLower
	case !upperRe.MatchString(pw):
		return ErrPasswordNoUpper
	case !digitRe.MatchString(pw):
		return ErrPasswordNoDigit
	}

	return nil
}

// Login — проверка формы входа: без подсказки, какое из полей неверно.
func Login(email, pw string) error {
	if Email(email) != nil || Password(pw) != nil {
		return ErrIncorrectLoginArg
	}

	return nil
}

// FieldErrors — сообщения по полям формы; пустая карта означает «всё корректно».
type FieldErrors map[string]error

// Validator проверяет models.Credentials через зарегистрированные теги.
type Validator struct {
	v *validator.Validate
}

// New создаёт Validator с тегами account_email и account_password.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Ошибки регистрации возможны только при пустом имени тега.
	_ = v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("account_password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String()) == nil
	})

	return &Validator{v: v}
}

// Credentials проверяет оба поля и возвращает сообщения по каждому неверному.
// Ключи карты — "email" и "password".
func (val *Validator) Credentials(c models.Credentials) FieldErrors {
	out := FieldErrors{}

	err := val.v.Struct(c)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["email"] = err
		return out
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "Email":
			out["email"] = Email(c.Email)
		case "Password":
			out["password"] = Password(c.Password)
		}
	}

	return out
}
