package models

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Username     string `json:"username"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}
