package establishments

import "time"

// Establishment is one operating unit of a company.
type Establishment struct {
	ID        string
	CompanyID string
	Name      string
	City      string
	Status    string
	CreatedAt time.Time
}

// Active reports whether the establishment is operating.
func (e Establishment) Active() bool { return e.Status == "active" }
