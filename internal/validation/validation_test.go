package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/account-client/internal/models"
)

func TestEmail_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		ok    bool
	}{
		{name: "short_valid", email: "a@b.co", ok: true},
		{name: "dotted_local", email: "first.last@example.com", ok: true},
		{name: "quoted_local", email: `"john doe"@example.org`, ok: true},
		{name: "ip_literal", email: "user@[192.168.0.1]", ok: true},
		{name: "subdomain", email: "u@mail.example.co.uk", ok: true},
		{name: "no_domain", email: "foo@", ok: false},
		{name: "no_at", email: "foo.example.com", ok: false},
		{name: "one_letter_tld", email: "a@b.c", ok: false},
		{name: "double_dot_local", email: "a..b@example.com", ok: false},
		{name: "space", email: "a b@example.com", ok: false},
		{name: "empty", email: "", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Email(tt.email)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidEmail)
			require.Equal(t, "Invalid email address", err.Error())
		})
	}
}

func TestPassword_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pw   string
		want error
	}{
		{name: "valid", pw: "Abcdef12", want: nil},
		{name: "len_7", pw: "Abcde12", want: ErrPasswordTooShort},
		{name: "empty", pw: "", want: ErrPasswordTooShort},
		{name: "len_256", pw: "Aa1" + strings.Repeat("x", 253), want: nil},
		{name: "len_257", pw: "Aa1" + strings.Repeat("x", 254), want: ErrPasswordTooLong},
		{name: "no_lower", pw: "ABCDEF12", want: ErrPasswordNoLower},
		{name: "no_upper", pw: "abcdef12", want: ErrPasswordNoUpper},
		{name: "no_digit", pw: "Abcdefgh", want: ErrPasswordNoDigit},
		// Порядок правил: длина проверяется раньше состава.
		{name: "short_and_no_digit", pw: "Abc", want: ErrPasswordTooShort},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Password(tt.pw)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPassword_Messages(t *testing.T) {
	t.Parallel()

	require.EqualError(t, Password("Abcde12"), "Password should contain at least 8 characters")
	require.EqualError(t, Password("Abcdefgh"), "Password must include at least 1 digit")
}

func TestLogin(t *testing.T) {
	t.Parallel()

	require.NoError(t, Login("a@b.co", "Abcdef12"))
	require.EqualError(t, Login("foo@", "Abcdef12"), "Email address or password is incorrect")
	require.ErrorIs(t, Login("a@b.co", "short"), ErrIncorrectLoginArg)
}

func TestValidator_Credentials(t *testing.T) {
	t.Parallel()

	v := New()

	errs := v.Credentials(models.Credentials{Email: "a@b.co", Password: "Abcdef12"})
	require.Empty(t, errs)

	errs = v.Credentials(models.Credentials{Email: "foo@", Password: "abcdefgh"})
	require.Len(t, errs, 2)
	require.ErrorIs(t, errs["email"], ErrInvalidEmail)
	require.ErrorIs(t, errs["password"], ErrPasswordNoUpper)

	errs = v.Credentials(models.Credentials{Email: "a@b.co", Password: "Abcdefgh"})
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs["password"], ErrPasswordNoDigit)
}
