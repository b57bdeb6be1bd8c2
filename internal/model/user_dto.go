package model

type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
