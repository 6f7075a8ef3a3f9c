package request

import "strings"

// Field names as used by the request form.
const (
	FieldCompanyName   = "companyName"
	FieldContactPerson = "contactPerson"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldCaptchaAnswer = "captchaAnswer"
)

// Form is the download request form.
type Form struct {
	CompanyName   string `form:"companyName" validate:"required,max=200"`
	ContactPerson string `form:"contactPerson" validate:"required,max=200"`
	Email         string `form:"email" validate:"required,basic_email,max=254"`
	Phone         string `form:"phone" validate:"required,max=50"`
	Address       string `form:"address" validate:"required,max=500"`
	CaptchaAnswer string `form:"captchaAnswer" validate:"-"`
}

// FieldErrors maps form fields to their inline error message.
type FieldErrors map[string]string

// Has reports whether field has an error.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (f Form) normalized() Form {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.ContactPerson = strings.TrimSpace(f.ContactPerson)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.CaptchaAnswer = strings.TrimSpace(f.CaptchaAnswer)

	return f
}

var fieldLabels = map[string]string{ //nolint:gochecknoglobals
	FieldCompanyName:   "Company name",
	FieldContactPerson: "Contact person",
	FieldEmail:         "Email",
	FieldPhone:         "Phone",
	FieldAddress:       "Address",
}
