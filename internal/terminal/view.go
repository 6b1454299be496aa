// terminal — представление клиента в консоли: сообщения, профиль, ошибки форм
// и чтение полей формы со скрытым вводом пароля.
package terminal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pribylovaa/account-client/internal/form"
	"github.com/pribylovaa/account-client/internal/models"
)

// View реализует app.View: результат — в out, сообщения и ошибки — в errOut.
type View struct {
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

// NewView создаёт представление; nil-логгер заменяется slog.Default().
func NewView(out, errOut io.Writer, lg *slog.Logger) *View {
	if lg == nil {
		lg = slog.Default()
	}

	return &View{out: out, errOut: errOut, log: lg}
}

func (v *View) Alert(msg string) {
	fmt.Fprintln(v.errOut, msg)
}

// Redirect только логируется: переход выполняет app.App.
func (v *View) Redirect(path string) {
	v.log.Debug("redirect", slog.String("path", path))
}

func (v *View) ShowProfile(p models.Profile) {
	fmt.Fprintf(v.out, "id:    %s\nemail: %s\n", p.ID, p.Email)
}

// LoginErrors выводит метку ошибки формы входа (если не пустая).
func (v *View) LoginErrors(f *form.LoginForm) {
	printLabel(v.errOut, "", f.Error)
}

// RegisterErrors выводит метки ошибок формы регистрации по полям.
func (v *View) RegisterErrors(f *form.RegisterForm) {
	printLabel(v.errOut, "email", f.EmailError)
	printLabel(v.errOut, "password", f.PasswordError)
}

func printLabel(w io.Writer, field string, l *form.Label) {
	if l == nil || l.Text == "" {
		return
	}

	if field == "" {
		fmt.Fprintln(w, l.Text)
		return
	}

	fmt.Fprintf(w, "%s: %s\n", field, l.Text)
}
