package domain

// Movie is a read-only catalog item.
type Movie struct {
	ID          int64  `json:"id" db:"movie_id"`
	Title       string `json:"title" db:"title" validate:"required,max=255"`
	Year        int    `json:"year" db:"year" validate:"gte=1888,lte=2100"`
	Genre       string `json:"genre" db:"genre" validate:"max=100"`
	Director    string `json:"director" db:"director" validate:"max=100"`
	Description string `json:"description,omitempty" db:"description"`
}
