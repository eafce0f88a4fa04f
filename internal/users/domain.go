package users

import "time"

// User is a platform account as listed in the admin panel. CPF and Phone
// arrive masked from the API; real values only pass through reveal calls.
type User struct {
	ID        string
	Name      string
	Email     string
	CPF       string
	Phone     string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// Status returns the display status for filtering and badges.
func (u User) Status() string {
	if u.Active {
		return "active"
	}
	return "inactive"
}
