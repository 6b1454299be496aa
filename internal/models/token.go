// Модели данных, которыми клиент обменивается с user-account API.
package models

// Tokens — ответ POST /users/login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AccessToken — ответ GET /users/refresh.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
