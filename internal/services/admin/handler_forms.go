package admin

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// Minimum lengths enforced before a form reaches the backend.
const (
	minPasswordLength = 8
	minUserNameLength = 6
	maxRating         = 5
)

// fieldErrors maps a form field name onto a localized message.
type fieldErrors map[string]string

func (e fieldErrors) empty() bool {
	return len(e) == 0
}

func (e fieldErrors) required(loc templates.Localizer, name, value string) {
	if strings.TrimSpace(value) == "" {
		e[name] = templates.T(loc, "validation.required")
	}
}

func (e fieldErrors) email(loc templates.Localizer, name, value string) {
	if _, err := mail.ParseAddress(strings.TrimSpace(value)); err != nil {
		e[name] = templates.T(loc, "validation.email")
	}
}

func (e fieldErrors) minLength(loc templates.Localizer, name, value string, n int) {
	if utf8.RuneCountInString(value) < n {
		e[name] = templates.T(loc, "validation.min_length", n)
	}
}

func (e fieldErrors) oneOf(loc templates.Localizer, name, value string, choices ...string) {
	for _, choice := range choices {
		if value == choice {
			return
		}
	}
	e[name] = templates.T(loc, "validation.choice")
}

// apply copies errors onto the matching form fields.
func (e fieldErrors) apply(fields []templates.FormField) []templates.FormField {
	for i := range fields {
		fields[i].Error = e[fields[i].Name]
	}
	return fields
}

func formText(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formFile reads an optional upload. A missing file yields an empty File.
// The returned closer must be called once the upload has been forwarded.
func formFile(r *http.Request, field string) (backend.File, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return backend.File{}, func() {}, nil
	}
	if err != nil {
		return backend.File{}, func() {}, err
	}
	return uploadedFile(field, file, header), func() { _ = file.Close() }, nil
}

func uploadedFile(field string, file multipart.File, header *multipart.FileHeader) backend.File {
	return backend.File{
		Field:       field,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}

// userInput is the marketplace user form.
type userInput struct {
	FirstName   string
	LastName    string
	Email       string
	Location    string
	PhoneNumber string
	UserType    string
	Rating      string
	Password    string
}

func userInputFromItem(item backend.Item) userInput {
	return userInput{
		FirstName:   item.Text("firstName"),
		LastName:    item.Text("lastName"),
		Email:       item.Text("email"),
		Location:    item.Text("location"),
		PhoneNumber: item.Text("phoneNumber"),
		UserType:    item.Text("userType"),
		Rating:      item.Text("rating"),
	}
}

func userInputFromForm(r *http.Request) userInput {
	return userInput{
		FirstName:   formText(r, "firstName"),
		LastName:    formText(r, "lastName"),
		Email:       formText(r, "email"),
		Location:    formText(r, "location"),
		PhoneNumber: formText(r, "phoneNumber"),
		UserType:    formText(r, "userType"),
		Rating:      formText(r, "rating"),
		Password:    r.FormValue("password"),
	}
}

func (in userInput) validate(loc templates.Localizer, create bool) fieldErrors {
	errs := fieldErrors{}
	errs.required(loc, "firstName", in.FirstName)
	errs.required(loc, "lastName", in.LastName)
	errs.email(loc, "email", in.Email)
	errs.required(loc, "location", in.Location)
	errs.required(loc, "phoneNumber", in.PhoneNumber)
	errs.oneOf(loc, "userType", in.UserType, userTypeRenter, userTypeOwner)
	if rating, err := strconv.ParseFloat(in.Rating, 64); err != nil || rating < 0 || rating > maxRating {
		errs["rating"] = templates.T(loc, "validation.rating", maxRating)
	}
	if create {
		errs.minLength(loc, "password", in.Password, minPasswordLength)
	}
	return errs
}

func (in userInput) payload(create bool) ([]byte, error) {
	rating, _ := strconv.ParseFloat(in.Rating, 64)
	payload := backend.NewPayload().
		SetText("firstName", in.FirstName).
		SetText("lastName", in.LastName).
		SetText("email", in.Email).
		SetText("phoneNumber", in.PhoneNumber).
		SetText("userType", in.UserType).
		Set("rating", rating).
		SetText("location", in.Location).
		Set("termsAndPolicies", true)
	if create {
		payload.Set("password", in.Password)
	}
	return payload.Bytes()
}

func userForm(loc templates.Localizer, in userInput, errs fieldErrors, create bool) []templates.FormField {
	fields := []templates.FormField{
		{Name: "email", Label: templates.T(loc, "field.email"), Type: templates.InputEmail, Value: in.Email, Required: true},
	}
	if create {
		fields = append(fields, templates.FormField{Name: "password", Label: templates.T(loc, "field.password"), Type: templates.InputPassword, Required: true})
	}
	fields = append(fields,
		templates.FormField{Name: "firstName", Label: templates.T(loc, "field.first_name"), Type: templates.InputText, Value: in.FirstName, Required: true},
		templates.FormField{Name: "lastName", Label: templates.T(loc, "field.last_name"), Type: templates.InputText, Value: in.LastName, Required: true},
		templates.FormField{Name: "phoneNumber", Label: templates.T(loc, "field.phone"), Type: templates.InputText, Value: in.PhoneNumber, Required: true},
		templates.FormField{Name: "location", Label: templates.T(loc, "field.location"), Type: templates.InputText, Value: in.Location, Required: true},
		templates.FormField{Name: "rating", Label: templates.T(loc, "field.rating"), Type: templates.InputNumber, Value: in.Rating, Required: true},
		templates.FormField{Name: "userType", Label: templates.T(loc, "field.user_type"), Type: templates.InputSelect, Value: in.UserType, Required: true, Options: []templates.Option{
			{Value: userTypeRenter, Label: templates.T(loc, "user_type.renter")},
			{Value: userTypeOwner, Label: templates.T(loc, "user_type.owner")},
		}},
	)
	if create {
		fields = append(fields,
			templates.FormField{Name: "frontImage", Label: templates.T(loc, "field.front_image"), Type: templates.InputFile},
			templates.FormField{Name: "backImage", Label: templates.T(loc, "field.back_image"), Type: templates.InputFile},
		)
	}
	return errs.apply(fields)
}

// teamInput is the staff account form.
type teamInput struct {
	UserName    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Type        string
}

func teamInputFromItem(item backend.Item) teamInput {
	return teamInput{
		UserName:    item.Text("userName"),
		Email:       item.Text("email"),
		FirstName:   item.Text("firstName"),
		LastName:    item.Text("lastName"),
		PhoneNumber: item.Text("phoneNumber"),
		Type:        item.Text("type"),
	}
}

func teamInputFromForm(r *http.Request) teamInput {
	return teamInput{
		UserName:    formText(r, "userName"),
		Email:       formText(r, "email"),
		Password:    r.FormValue("password"),
		FirstName:   formText(r, "firstName"),
		LastName:    formText(r, "lastName"),
		PhoneNumber: formText(r, "phoneNumber"),
		Type:        formText(r, "type"),
	}
}

func (in teamInput) validate(loc templates.Localizer, create bool) fieldErrors {
	errs := fieldErrors{}
	errs.email(loc, "email", in.Email)
	errs.minLength(loc, "userName", in.UserName, minUserNameLength)
	if create {
		errs.minLength(loc, "password", in.Password, minPasswordLength)
	}
	errs.required(loc, "firstName", in.FirstName)
	errs.required(loc, "lastName", in.LastName)
	errs.required(loc, "phoneNumber", in.PhoneNumber)
	errs.oneOf(loc, "type", in.Type, backend.RoleAdmin, backend.RoleTeamMember)
	return errs
}

func (in teamInput) form(create bool, picture backend.File) *backend.Form {
	form := backend.NewForm().
		Field("firstName", in.FirstName).
		Field("lastName", in.LastName).
		Field("userName", in.UserName).
		Field("email", in.Email)
	if create {
		form.Field("password", in.Password)
	}
	return form.
		Field("phoneNumber", in.PhoneNumber).
		Field("type", in.Type).
		File(picture)
}

func teamForm(loc templates.Localizer, in teamInput, errs fieldErrors, create bool) []templates.FormField {
	fields := []templates.FormField{
		{Name: "userName", Label: templates.T(loc, "field.user_name"), Type: templates.InputText, Value: in.UserName, Required: true},
		{Name: "email", Label: templates.T(loc, "field.email"), Type: templates.InputEmail, Value: in.Email, Required: true},
	}
	if create {
		fields = append(fields, templates.FormField{Name: "password", Label: templates.T(loc, "field.password"), Type: templates.InputPassword, Required: true})
	}
	fields = append(fields,
		templates.FormField{Name: "firstName", Label: templates.T(loc, "field.first_name"), Type: templates.InputText, Value: in.FirstName, Required: true},
		templates.FormField{Name: "lastName", Label: templates.T(loc, "field.last_name"), Type: templates.InputText, Value: in.LastName, Required: true},
		templates.FormField{Name: "phoneNumber", Label: templates.T(loc, "field.phone"), Type: templates.InputText, Value: in.PhoneNumber, Required: true},
		templates.FormField{Name: "type", Label: templates.T(loc, "field.type"), Type: templates.InputSelect, Value: in.Type, Required: true, Options: []templates.Option{
			{Value: backend.RoleAdmin, Label: templates.T(loc, "role.admin")},
			{Value: backend.RoleTeamMember, Label: templates.T(loc, "role.team_member")},
		}},
		templates.FormField{Name: "profilePicture", Label: templates.T(loc, "field.profile_picture"), Type: templates.InputFile},
	)
	return errs.apply(fields)
}

// resetPasswordInput resets a staff member's password.
type resetPasswordInput struct {
	Email       string
	NewPassword string
}

func resetPasswordInputFromForm(r *http.Request) resetPasswordInput {
	return resetPasswordInput{
		Email:       formText(r, "email"),
		NewPassword: r.FormValue("password"),
	}
}

func (in resetPasswordInput) validate(loc templates.Localizer) fieldErrors {
	errs := fieldErrors{}
	errs.email(loc, "email", in.Email)
	errs.minLength(loc, "password", in.NewPassword, minPasswordLength)
	return errs
}

func (in resetPasswordInput) payload() ([]byte, error) {
	return backend.NewPayload().
		SetText("email", in.Email).
		Set("newPassword", in.NewPassword).
		Bytes()
}

func resetPasswordForm(loc templates.Localizer, in resetPasswordInput, errs fieldErrors) []templates.FormField {
	return errs.apply([]templates.FormField{
		{Name: "email", Label: templates.T(loc, "field.email"), Type: templates.InputEmail, Value: in.Email, Required: true},
		{Name: "password", Label: templates.T(loc, "field.new_password"), Type: templates.InputPassword, Required: true},
	})
}

// documentsForm is the identity document upload for an owner.
func documentsForm(loc templates.Localizer, email string, errs fieldErrors) []templates.FormField {
	return errs.apply([]templates.FormField{
		{Name: "email", Label: templates.T(loc, "field.email"), Type: templates.InputEmail, Value: email, Required: true},
		{Name: "frontImage", Label: templates.T(loc, "field.front_image"), Type: templates.InputFile},
		{Name: "backImage", Label: templates.T(loc, "field.back_image"), Type: templates.InputFile},
	})
}
