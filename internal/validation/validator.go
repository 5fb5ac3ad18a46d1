package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/portfolio-content-api/internal/models"
)

// ValidationError represents a single field error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a field-sorted list of validation errors
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return strings.Join(parts, "; ")
}

// Fields returns the names of the failing fields
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, v := range e {
		out = append(out, v.Field)
	}
	return out
}

// flatten turns ozzo's error map into Errors. Nested errors are reported
// under a dotted field name; anything else is returned unchanged.
func flatten(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return err
	}

	var out Errors
	var walk func(prefix string, errs validation.Errors)
	walk = func(prefix string, errs validation.Errors) {
		for field, fe := range errs {
			if fe == nil {
				continue
			}
			name := prefix + field
			var nested validation.Errors
			if errors.As(fe, &nested) {
				walk(name+".", nested)
				continue
			}
			out = append(out, ValidationError{Field: name, Message: fe.Error()})
		}
	}
	walk("", ve)

	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

var aspectRatioRegex = regexp.MustCompile(`^\d+/\d+$`)

var nonEmptyEntries = validation.Each(validation.Required.Error("must not be blank"))

// Project requires a title, category, description and at least one image
func Project(p models.Project) error {
	return flatten(validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Category, validation.Required),
		validation.Field(&p.Images, validation.Required.Error("at least one image is required"), nonEmptyEntries),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.AspectRatio, validation.When(p.AspectRatio != "",
			validation.Match(aspectRatioRegex).Error("must look like 16/9"))),
	))
}

// Artwork requires a title, artist, image and description, and a known
// status when one is given
func Artwork(a models.Artwork) error {
	return flatten(validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Artist, validation.Required),
		validation.Field(&a.Image, validation.Required),
		validation.Field(&a.Description, validation.Required),
		validation.Field(&a.Status, validation.In(models.StatusPending, models.StatusApproved)),
	))
}

// Submission validates a public Wall of Art submission, which does not
// require a description
func Submission(a models.Artwork) error {
	return flatten(validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Artist, validation.Required),
		validation.Field(&a.Image, validation.Required),
	))
}

// BlogPost requires a title, content and image
func BlogPost(b models.BlogPost) error {
	return flatten(validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&b.Content, validation.Required),
		validation.Field(&b.Image, validation.Required),
		validation.Field(&b.Tags, nonEmptyEntries),
	))
}

// Login validates sign-in credentials
func Login(req models.LoginRequest) error {
	return flatten(validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	))
}

var contactRequired = []string{
	"full_name",
	"email",
	"brand_name",
	"role_type",
	"website_instagram",
	"services",
	"looking_for",
	"timeline",
	"hear_about",
}

var workRequired = []string{"name", "email", "message"}

// Contact validates a contact page submission. role_details is required
// unless role_type is "Other".
func Contact(form models.ContactForm) error {
	var required []string
	switch form.Form {
	case models.FormContact:
		required = contactRequired
	case models.FormWork:
		required = workRequired
	default:
		return Errors{{Field: "form", Message: "must be one of: contact, work"}}
	}

	keys := make([]*validation.KeyRules, 0, len(required)+1)
	for _, k := range required {
		rules := []validation.Rule{validation.Required}
		if k == "email" {
			rules = append(rules, is.EmailFormat)
		}
		keys = append(keys, validation.Key(k, rules...))
	}
	if form.Form == models.FormContact {
		details := validation.Key("role_details", validation.Required)
		if form.Fields["role_type"] == "Other" {
			details = details.Optional()
		}
		keys = append(keys, details)
	}

	fields := form.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return flatten(validation.Validate(fields, validation.Map(keys...).AllowExtraKeys()))
}
