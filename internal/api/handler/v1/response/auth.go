package response

import "github.com/yizeng/gab/gin/gorm/sweet-shop/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
