package dto

type RegisterRequest struct {
	Username          string `json:"username" binding:"required,min=3,max=150"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	ConfirmedPassword string `json:"confirmed_password" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// QuizCreateRequest carries the single input of the generation pipeline.
// The URL must additionally pass the YouTube shape check in the service.
type QuizCreateRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// QuizUpdateRequest is a partial update; only title and description are
// mutable after creation. Nil means "leave untouched".
type QuizUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
