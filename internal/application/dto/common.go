package dto

// PageRequest paginación 1-based de los listados (?page=&size=).
type PageRequest struct {
	Page int `query:"page"`
	Size int `query:"size"`
}

// PageResponse página de resultados.
type PageResponse[T any] struct {
	Content       []T `json:"content"`
	Page          int `json:"page"`
	TotalPages    int `json:"total_pages"`
	TotalElements int `json:"total_elements"`
	Size          int `json:"size"`
}

// ErrorResponse cuerpo de error HTTP. Available/Required solo en rechazos por stock.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	Required  *int   `json:"required,omitempty"`
}

// AuditResponse sellos de auditoría expuestos en las respuestas.
type AuditResponse struct {
	CreatedBy string  `json:"created_by"`
	CreatedAt string  `json:"created_at"`
	UpdatedBy *string `json:"updated_by,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
	DeletedBy *string `json:"deleted_by,omitempty"`
	DeletedAt *string `json:"deleted_at,omitempty"`
	Deleted   bool    `json:"deleted"`
}
