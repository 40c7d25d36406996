package request

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=driver operator"`
}

// RoleOrDefault: self-signup never grants admin, the zero value is driver.
func (r SignupRequest) RoleOrDefault() string {
	if r.Role == "" {
		return "driver"
	}
	return r.Role
}
