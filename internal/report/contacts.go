package report

import "lynx/internal/core"

// ContactRow is one search hit with its primary address, phone and email.
type ContactRow struct {
	ContactID     int64     `json:"contact_id"`
	FullName      string    `json:"full_name"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	IntakeDate    core.Date `json:"intake_date"`
	AgeGroup      string    `json:"age_group"`
	County        string    `json:"county"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	AddressOne    string    `json:"address_one"`
	AddressTwo    string    `json:"address_two"`
	Suite         string    `json:"suite"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zip_code"`
	Region        string    `json:"region"`
	BadAddress    bool      `json:"bad_address"`
	DoNotContact  bool      `json:"do_not_contact"`
	Deceased      bool      `json:"deceased"`
	RemoveMailing bool      `json:"remove_mailing"`
}

var contactsHeader = []string{
	"Full Name", "First Name", "Last Name", "Intake Date", "Age Group", "County", "Email", "Phone",
	"Address 1", "Address 2", "Suite", "City", "State", "Zip Code", "Region", "Bad Address",
	"Do Not Contact", "Deceased", "Remove Mailing",
}

// SearchResultsReport exports contact search hits. Flags print as a label or
// blank.
func SearchResultsReport(rows []ContactRow) Document {
	doc := Document{Name: "Lynx Search Results", Header: contactsHeader}
	for _, r := range rows {
		doc.Rows = append(doc.Rows, []string{
			r.FullName, r.FirstName, r.LastName, r.IntakeDate.String(), r.AgeGroup, r.County,
			r.Email, r.Phone, r.AddressOne, r.AddressTwo, r.Suite, r.City, r.State, r.ZipCode,
			r.Region,
			flag(r.BadAddress, "Bad Address"),
			flag(r.DoNotContact, "Do Not Contact"),
			flag(r.Deceased, "Deceased"),
			flag(r.RemoveMailing, "Remove from Mailing List"),
		})
	}
	return doc
}

func flag(set bool, label string) string {
	if set {
		return label
	}
	return ""
}
