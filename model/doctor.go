package model

// Doctor is a doctor record owned by the clinic backend.
type Doctor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Phone          string  `json:"phone"`
	ImageFilename  *string `json:"image_filename"`
}

// Visit is a dated session of one doctor.
type Visit struct {
	ID            string `json:"id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"`
	TotalPatients int    `json:"totalPatients"`
}
