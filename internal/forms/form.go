// Package forms builds and validates the ticket creation form.
package forms

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/models"
)

//go:embed ticket.schema.json
var ticketSchema []byte

var schema = mustSchema(ticketSchema)

func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("forms: invalid embedded schema: %v", err))
	}
	return s
}

// TicketForm is what a requester fills in to raise a ticket.
type TicketForm struct {
	FullName      string
	Email         string
	Phone         string
	StaffLocation string
	Department    string
	Category      string
	AccLocation   string
	AccIssue      string
	Subcategory   string
	Title         string
	Details       string
	ImagePath     string
}

// SetCategory changes the category and clears the fields that depend on it.
func (f *TicketForm) SetCategory(name string) {
	f.Category = name
	f.Subcategory = ""
	f.AccIssue = ""
	f.AccLocation = ""
}

// Payload maps the form onto the multipart submission.
func (f TicketForm) Payload() models.TicketSubmission {
	location, sub := f.StaffLocation, f.Subcategory
	if f.Category == CategoryAccommodation {
		location, sub = f.AccLocation, f.AccIssue
	}
	return models.TicketSubmission{
		FullName:    strings.TrimSpace(f.FullName),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		Location:    location,
		Department:  f.Department,
		Category:    f.Category,
		SubCategory: sub,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Details),
		ImagePath:   strings.TrimSpace(f.ImagePath),
	}
}

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field, ordered by field name.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid ticket form: " + strings.Join(parts, "; ")
}

// Validate checks the payload against the ticket schema, the category
// catalog and the attached image. The returned error has code
// precondition:invalid_form and wraps a *ValidationError.
func (f TicketForm) Validate() error {
	p := f.Payload()
	var fields []FieldError

	res, err := schema.Validate(gojsonschema.NewGoLoader(p.FormFields()))
	if err != nil {
		return fmt.Errorf("validate ticket form: %w", err)
	}
	for _, re := range res.Errors() {
		field := re.Field()
		if field == "(root)" {
			if name, ok := re.Details()["property"].(string); ok {
				field = name
			}
		}
		fields = append(fields, FieldError{Field: field, Message: re.Description()})
	}

	if p.Location != "" && !contains(Locations(p.Category), p.Location) {
		fields = append(fields, FieldError{Field: "location", Message: fmt.Sprintf("%q is not a location for %s", p.Location, categoryLabel(p.Category))})
	}
	if p.SubCategory != "" {
		if subs := SubCategories(p.Category); subs != nil && !contains(subs, p.SubCategory) {
			fields = append(fields, FieldError{Field: "subCategory", Message: fmt.Sprintf("%q is not a sub-category of %s", p.SubCategory, p.Category)})
		}
	}
	if p.ImagePath != "" {
		if st, err := os.Stat(p.ImagePath); err != nil || st.IsDir() {
			fields = append(fields, FieldError{Field: "image", Message: "image file not readable"})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return apierrors.Wrap(apierrors.CodeInvalidForm, "", &ValidationError{Fields: fields})
}

func categoryLabel(name string) string {
	if name == "" {
		return "an empty category"
	}
	return name
}
