package api

type PostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
