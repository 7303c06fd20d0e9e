// Package validation holds the client-side form rules. Every rule is checked independently
// so a form can show all of its problems at once.
package validation

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShape is a deliberately loose local@domain.tld check.
var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

const (
	NameMinLen     = 2
	PasswordMinLen = 6
	TitleMaxLen    = 200
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Clear drops the message for one field, leaving the others in place.
func (fe FieldErrors) Clear(field string) {
	delete(fe, field)
}

// Fields returns the failing field names in a stable order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		msgs = append(msgs, fe[f])
	}
	return strings.Join(msgs, "; ")
}

type Registration struct {
	Email           string `form:"email" validate:"required,emailshape"`
	Name            string `form:"name" validate:"required,min=2"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

var registrationMessages = map[string]map[string]string{
	"email": {
		"required":   "Please enter your email.",
		"emailshape": "Email address is not valid.",
	},
	"name": {
		"required": "Please enter your name.",
		"min":      "Name must be at least 2 characters.",
	},
	"password": {
		"required": "Please enter a password.",
		"min":      "Password must be at least 6 characters.",
	},
	"confirmPassword": {
		"required": "Please confirm your password.",
		"eqfield":  "Passwords do not match.",
	},
}

// ValidateRegistration returns one message per failing field, or nil.
func ValidateRegistration(r Registration) FieldErrors {
	return collect(r, registrationMessages)
}

type Post struct {
	Title   string `form:"title" validate:"notblank,max=200"`
	Content string `form:"content" validate:"notblank"`
}

var postMessages = map[string]map[string]string{
	"title": {
		"notblank": "Please enter a title.",
		"max":      "Title must be 200 characters or fewer.",
	},
	"content": {
		"notblank": "Please enter the content.",
	},
}

// NormalizePost trims both fields; the trimmed values are what gets validated and sent.
func NormalizePost(p Post) Post {
	return Post{Title: strings.TrimSpace(p.Title), Content: strings.TrimSpace(p.Content)}
}

// ValidatePost validates the normalized post.
func ValidatePost(p Post) FieldErrors {
	return collect(NormalizePost(p), postMessages)
}

func collect(s any, messages map[string]map[string]string) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = field + " is invalid."
		}
		out[field] = msg
	}
	return out
}
