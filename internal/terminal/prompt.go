package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pribylovaa/account-client/internal/form"
)

// ErrNoInput — ввод закончился раньше, чем поле было заполнено.
var ErrNoInput = errors.New("no input")

// Prompter читает поля формы построчно. Если вход — терминал, замаскированный
// пароль читается без эха.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// NewPrompter — чтение из файла (обычно os.Stdin) с определением терминала.
func NewPrompter(in *os.File, out io.Writer) *Prompter {
	fd := int(in.Fd())

	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
}

// NewPrompterFrom — чтение из произвольного потока (пайп, тесты); эхо не отключается.
func NewPrompterFrom(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
}

// Line выводит подсказку и читает строку без завершающего перевода строки.
func (p *Prompter) Line(label string) (string, error) {
	const op = "terminal.Line"

	fmt.Fprintf(p.out, "%s: ", label)

	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %s: %w", op, label, ErrNoInput)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return strings.TrimRight(s, "\r\n"), nil
}

// Secret читает значение поля in: замаскированное поле на терминале — без эха.
func (p *Prompter) Secret(label string, in *form.Input) (string, error) {
	const op = "terminal.Secret"

	if !in.Masked || !p.isTerm {
		return p.Line(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// FillLogin запрашивает пустые поля формы входа.
func (p *Prompter) FillLogin(f *form.LoginForm) error {
	return p.fill(f.Email, f.Password)
}

// FillRegister запрашивает пустые поля формы регистрации.
func (p *Prompter) FillRegister(f *form.RegisterForm) error {
	return p.fill(f.Email, f.Password)
}

func (p *Prompter) fill(email, password *form.Input) error {
	if email.Value == "" {
		v, err := p.Line("Email")
		if err != nil {
			return err
		}
		email.Value = strings.TrimSpace(v)
	}

	if password.Value == "" {
		v, err := p.Secret("Password", password)
		if err != nil {
			return err
		}
		password.Value = v
	}

	return nil
}
