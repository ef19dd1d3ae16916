package dto

// ResetRequestReq represents the request body for /reset_password_request.
type ResetRequestReq struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// ResetPasswordReq represents the request body for /reset_password/:token.
type ResetPasswordReq struct {
	Password  string `form:"password" json:"password" binding:"required"`
	Password2 string `form:"password2" json:"password2" binding:"required,eqfield=Password"`
}
