package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id"`
	UserID    int64     `json:"user_id"`
	Price     float64   `json:"price"`
	Paid      bool      `json:"paid"`
	PaymentID *string   `json:"payment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingInput struct {
	TourID int64   `json:"tour_id" validate:"required,gt=0"`
	UserID int64   `json:"user_id" validate:"required,gt=0"`
	Price  float64 `json:"price"   validate:"required,gt=0"`
	Paid   *bool   `json:"paid,omitempty"`
}

type BookingPatch struct {
	Price *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Paid  *bool    `json:"paid,omitempty"`
}
