package domain

import "time"

// Client holds the KYC profile of a borrower.
type Client struct {
	ClientID       int64     `json:"client_id" db:"client_id"`
	BranchID       string    `json:"branch_id" db:"branch_id"`
	NationalID     string    `json:"national_id" db:"national_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	KhmerLastName  string    `json:"khmer_last_name" db:"khmer_last_name"`
	LatinLastName  string    `json:"latin_last_name" db:"latin_last_name"`
	Sex            string    `json:"sex" db:"sex"`
	DateOfBirth    string    `json:"date_of_birth" db:"date_of_birth"`
	PrimaryPhone   string    `json:"primary_phone" db:"primary_phone"`
	AltPhone       string    `json:"alt_phone" db:"alt_phone"`
	Email          string    `json:"email" db:"email"`
	VillageAddress string    `json:"village_commune_district_province" db:"village_commune_district_province"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the name parts the way the collections board displays them.
func (c *Client) FullName() string {
	name := ""
	for _, part := range []string{c.FirstName, c.KhmerLastName, c.LatinLastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	if name == "" {
		return "Unknown Client"
	}
	return name
}

// SocioEco holds socio-economic data collected alongside KYC.
type SocioEco struct {
	ClientID         int64   `json:"client_id" db:"client_id"`
	Occupation       string  `json:"occupation" db:"occupation"`
	EmployerName     string  `json:"employer_name" db:"employer_name"`
	MonthlyIncomeUSD float64 `json:"monthly_income_usd" db:"monthly_income_usd"`
	HouseholdSize    int     `json:"household_size" db:"household_size"`
	EducationLevel   string  `json:"education_level" db:"education_level"`
	CBCScore         int     `json:"cbc_score" db:"cbc_score"`
}

type CreateClientRequest struct {
	BranchID       string `json:"branch_id" validate:"required"`
	NationalID     string `json:"national_id" validate:"required"`
	FirstName      string `json:"first_name"`
	KhmerLastName  string `json:"khmer_last_name"`
	LatinLastName  string `json:"latin_last_name"`
	Sex            string `json:"sex" validate:"omitempty,oneof=male female other"`
	DateOfBirth    string `json:"date_of_birth"`
	PrimaryPhone   string `json:"primary_phone"`
	AltPhone       string `json:"alt_phone"`
	Email          string `json:"email" validate:"omitempty,email"`
	VillageAddress string `json:"village_commune_district_province"`
}

type UpdateClientRequest struct {
	FirstName      *string `json:"first_name"`
	KhmerLastName  *string `json:"khmer_last_name"`
	LatinLastName  *string `json:"latin_last_name"`
	Sex            *string `json:"sex" validate:"omitempty,oneof=male female other"`
	DateOfBirth    *string `json:"date_of_birth"`
	PrimaryPhone   *string `json:"primary_phone"`
	AltPhone       *string `json:"alt_phone"`
	Email          *string `json:"email" validate:"omitempty,email"`
	VillageAddress *string `json:"village_commune_district_province"`
}

type UpsertSocioEcoRequest struct {
	Occupation       *string  `json:"occupation"`
	EmployerName     *string  `json:"employer_name"`
	MonthlyIncomeUSD *float64 `json:"monthly_income_usd" validate:"omitempty,gte=0"`
	HouseholdSize    *int     `json:"household_size" validate:"omitempty,gte=1"`
	EducationLevel   *string  `json:"education_level"`
	CBCScore         *int     `json:"cbc_score" validate:"omitempty,gte=0"`
}
