package response

import "chargeslot/internal/usecase"

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        *usecase.UserView `json:"user"`
}

func NewLoginResponse(token string, view *usecase.UserView) *LoginResponse {
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        view,
	}
}
