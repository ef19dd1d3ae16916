// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// RegisterReq represents the request body for the /register endpoint.
// Password2 must repeat Password, mirroring the confirmation field of the
// registration form.
type RegisterReq struct {
	Username  string `form:"username" json:"username" binding:"required,max=64"`
	Email     string `form:"email" json:"email" binding:"required,email"`
	Password  string `form:"password" json:"password" binding:"required"`
	Password2 string `form:"password2" json:"password2" binding:"required,eqfield=Password"`
}
