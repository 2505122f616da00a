package rest

import "time"

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryDetail struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoriesListResponse struct {
	Data []CategoryDetail `json:"data"`
}

type GrantDetail struct {
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserDetail never carries the access secret.
type UserDetail struct {
	ID          string                   `json:"id"`
	Identifier  string                   `json:"identifier"`
	DisplayName string                   `json:"display_name"`
	Active      bool                     `json:"active"`
	CreatedAt   time.Time                `json:"created_at"`
	Grants      map[string][]GrantDetail `json:"grants"`
}
