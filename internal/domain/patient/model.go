package patient

import "time"

// Patient maps to the patients table. Notes is an append-only visit log.
type Patient struct {
	ID                 int64      `db:"id" json:"id"`
	FullName           string     `db:"full_name" json:"full_name"`
	BirthDate          *string    `db:"birth_date" json:"birth_date"`
	Gender             *string    `db:"gender" json:"gender"`
	Phone              *string    `db:"phone" json:"phone"`
	Email              *string    `db:"email" json:"email"`
	Address            *string    `db:"address" json:"address"`
	PolicyNumber       *string    `db:"policy_number" json:"policy_number"`
	BloodType          *string    `db:"blood_type" json:"blood_type"`
	Allergies          *string    `db:"allergies" json:"allergies"`
	ChronicConditions  *string    `db:"chronic_conditions" json:"chronic_conditions"`
	Medications        *string    `db:"medications" json:"medications"`
	AttendingPhysician *string    `db:"attending_physician" json:"attending_physician"`
	LastVisit          *time.Time `db:"last_visit" json:"last_visit"`
	Notes              *string    `db:"notes" json:"notes"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientInput is the body of create and update. On update only non-nil
// fields are applied.
type PatientInput struct {
	FullName           *string `json:"full_name"`
	BirthDate          *string `json:"birth_date"`
	Gender             *string `json:"gender"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	Address            *string `json:"address"`
	PolicyNumber       *string `json:"policy_number"`
	BloodType          *string `json:"blood_type"`
	Allergies          *string `json:"allergies"`
	ChronicConditions  *string `json:"chronic_conditions"`
	Medications        *string `json:"medications"`
	AttendingPhysician *string `json:"attending_physician"`
	LastVisit          *string `json:"last_visit"`
	Notes              *string `json:"notes"`
}

// apply copies every supplied field onto p. LastVisit is handled by the caller.
func (in *PatientInput) apply(p *Patient) {
	if in.FullName != nil {
		p.FullName = *in.FullName
	}
	set := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	set(&p.BirthDate, in.BirthDate)
	set(&p.Gender, in.Gender)
	set(&p.Phone, in.Phone)
	set(&p.Email, in.Email)
	set(&p.Address, in.Address)
	set(&p.PolicyNumber, in.PolicyNumber)
	set(&p.BloodType, in.BloodType)
	set(&p.Allergies, in.Allergies)
	set(&p.ChronicConditions, in.ChronicConditions)
	set(&p.Medications, in.Medications)
	set(&p.AttendingPhysician, in.AttendingPhysician)
	set(&p.Notes, in.Notes)
}
