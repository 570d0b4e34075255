package models

import "time"

type Tour struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"max_group_size"`
	Difficulty      string      `json:"difficulty"`
	Price           float64     `json:"price"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description"`
	ImageCover      string      `json:"image_cover"`
	RatingsAverage  float64     `json:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity"`
	StartDates      []time.Time `json:"start_dates"`
	CreatedAt       time.Time   `json:"created_at"`
}

type TourInput struct {
	Name         string      `json:"name"          validate:"required,min=10,max=40"`
	Duration     int         `json:"duration"      validate:"required,gt=0"`
	MaxGroupSize int         `json:"max_group_size" validate:"required,gt=0"`
	Difficulty   string      `json:"difficulty"    validate:"required,oneof=easy medium difficult"`
	Price        float64     `json:"price"         validate:"required,gt=0"`
	Summary      string      `json:"summary"       validate:"required"`
	Description  string      `json:"description"`
	ImageCover   string      `json:"image_cover"`
	StartDates   []time.Time `json:"start_dates"`
}

// TourPatch - частичное обновление, nil-поля не трогаем.
type TourPatch struct {
	Name         *string  `json:"name,omitempty"           validate:"omitempty,min=10,max=40"`
	Duration     *int     `json:"duration,omitempty"       validate:"omitempty,gt=0"`
	MaxGroupSize *int     `json:"max_group_size,omitempty" validate:"omitempty,gt=0"`
	Difficulty   *string  `json:"difficulty,omitempty"     validate:"omitempty,oneof=easy medium difficult"`
	Price        *float64 `json:"price,omitempty"          validate:"omitempty,gt=0"`
	Summary      *string  `json:"summary,omitempty"`
	Description  *string  `json:"description,omitempty"`
	ImageCover   *string  `json:"image_cover,omitempty"`
}

type TourQuery struct {
	Sort  string
	Limit int
	Page  int
}
