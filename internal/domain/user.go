package domain

// User is the minimal account record needed to reach a booking participant.
type User struct {
	ID    int32  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
