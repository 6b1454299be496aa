// form описывает состояние форм входа и регистрации.
//
// Элементы формы передаются обработчикам явно (вместо глобальных поисков по документу):
// обработчик читает значения полей, пишет сообщения об ошибках в метки и очищает форму
// после успешного запроса.
package form

// Input — текстовое поле. Masked=true — значение скрыто при вводе/выводе.
type Input struct {
	Value  string
	Masked bool
}

// Label — метка для текста ошибки под полем.
type Label struct {
	Text string
}

// Set выставляет текст метки; пустая строка очищает её.
func (l *Label) Set(text string) {
	if l == nil {
		return
	}
	l.Text = text
}

// Checkbox — флажок «показать пароль».
type Checkbox struct {
	Checked bool
}

// LoginForm — форма входа с общей меткой ошибки.
type LoginForm struct {
	Email        *Input
	Password     *Input
	ShowPassword *Checkbox
	Error        *Label
}

// RegisterForm — форма регистрации с метками ошибок по полям.
type RegisterForm struct {
	Email         *Input
	Password      *Input
	ShowPassword  *Checkbox
	EmailError    *Label
	PasswordError *Label
}

// NewLoginForm создаёт форму входа с замаскированным паролем.
func NewLoginForm(email, password string) *LoginForm {
	return &LoginForm{
		Email:        &Input{Value: email},
		Password:     &Input{Value: password, Masked: true},
		ShowPassword: &Checkbox{},
		Error:        &Label{},
	}
}

// NewRegisterForm создаёт форму регистрации с замаскированным паролем.
func NewRegisterForm(email, password string) *RegisterForm {
	return &RegisterForm{
		Email:         &Input{Value: email},
		Password:      &Input{Value: password, Masked: true},
		ShowPassword:  &Checkbox{},
		EmailError:    &Label{},
		PasswordError: &Label{},
	}
}

// Clear очищает поля; если пароль был показан, снова маскирует его и снимает флажок.
func Clear(email, password *Input, checkbox *Checkbox) {
	email.Value = ""
	password.Value = ""

	if !password.Masked {
		password.Masked = true
		if checkbox != nil {
			checkbox.Checked = false
		}
	}
}

// TogglePasswordVisibility переключает маскирование поля пароля.
func TogglePasswordVisibility(password *Input) {
	password.Masked = !password.Masked
}

// Clear очищает форму входа.
func (f *LoginForm) Clear() { Clear(f.Email, f.Password, f.ShowPassword) }

// Clear очищает форму регистрации.
func (f *RegisterForm) Clear() { Clear(f.Email, f.Password, f.ShowPassword) }
