package dto

import "github.com/google/uuid"

type IDRequest struct {
	ID uuid.UUID `json:"id" validate:"required" param:"id"`
}

// IDListResponse ordered list of ids (e.g. split children)
type IDListResponse struct {
	IDs []uuid.UUID `json:"ids"`
}
