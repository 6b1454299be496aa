package form

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClear_MaskedPassword(t *testing.T) {
	t.Parallel()

	email := &Input{Value: "a@b.co"}
	pw := &Input{Value: "Abcdef12", Masked: true}
	cb := &Checkbox{Checked: false}

	Clear(email, pw, cb)

	require.Empty(t, email.Value)
	require.Empty(t, pw.Value)
	require.True(t, pw.Masked)
	require.False(t, cb.Checked)
}

// Показанный пароль после очистки снова скрыт, флажок снят.
func TestClear_VisiblePassword(t *testing.T) {
	t.Parallel()

	f := NewRegisterForm("a@b.co", "Abcdef12")
	TogglePasswordVisibility(f.Password)
	f.ShowPassword.Checked = true
	require.False(t, f.Password.Masked)

	f.Clear()

	require.Empty(t, f.Email.Value)
	require.Empty(t, f.Password.Value)
	require.True(t, f.Password.Masked)
	require.False(t, f.ShowPassword.Checked)
}

func TestTogglePasswordVisibility(t *testing.T) {
	t.Parallel()

	in := &Input{Masked: true}
	TogglePasswordVisibility(in)
	require.False(t, in.Masked)
	TogglePasswordVisibility(in)
	require.True(t, in.Masked)
}

func TestLabel_SetNilSafe(t *testing.T) {
	t.Parallel()

	var l *Label
	require.NotPanics(t, func() { l.Set("x") })

	f := NewLoginForm("", "")
	f.Error.Set("boom")
	require.Equal(t, "boom", f.Error.Text)
	f.Error.Set("")
	require.Empty(t, f.Error.Text)
}
