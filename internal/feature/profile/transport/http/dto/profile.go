// Package dto defines data transfer objects for the profile feature's HTTP transport layer.
package dto

// PostReq represents the post form submitted on a profile page.
type PostReq struct {
	Body string `form:"body" json:"body" binding:"required,max=140"`
}

// EditProfileReq represents the request body for /edit_profile.
type EditProfileReq struct {
	Username string `form:"username" json:"username" binding:"required,max=64"`
	AboutMe  string `form:"about_me" json:"about_me" binding:"max=140"`
}

// ProfileRes represents the public view of a user on their profile page.
// The email address is deliberately not exposed.
type ProfileRes struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	AboutMe  string `json:"about_me"`
}
