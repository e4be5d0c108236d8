package user

import "time"

// User is the identity stamped onto reports. Rows are created out of band
// (cmd/seed) and looked up by email only.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
