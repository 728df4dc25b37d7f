package model

// Weekdays accepted for a recurring schedule.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Schedule is a doctor availability slot, recurring on DayOfWeek or on a SpecificDate.
type Schedule struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	DayOfWeek      string  `json:"day_of_week"`
	SpecificDate   *string `json:"specific_date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	IsAvailable    bool    `json:"is_available"`
	ContactNumber  *string `json:"contact_number"`
	ImageFilename  *string `json:"image_filename"`
}

// GalleryImage is a picture shown in the clinic shop gallery.
type GalleryImage struct {
	ID          int     `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"image_url"`
	OrderIndex  int     `json:"order_index"`
	IsActive    bool    `json:"is_active"`
}
