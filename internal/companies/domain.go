// Package companies implements the company listing and detail pages: the
// table configuration interpreted by the datatable engine, and the detail
// view where sensitive fields go through the reveal protocol.
package companies

import "time"

// Company is one tenant company as shown by the panel. CNPJ, phone and
// address components are the pre-masked values the platform listing returns.
type Company struct {
	ID                    string
	Name                  string
	TradeName             string
	CNPJ                  string
	StateRegistration     string
	MunicipalRegistration string
	Phone                 string
	City                  string
	State                 string
	Status                string
	Addresses             []Address
	CreatedAt             time.Time
}

// Address is one pre-masked company address.
type Address struct {
	ID           string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
	Country      string
}

// Active reports whether the company is active.
func (c Company) Active() bool { return c.Status == "active" }
