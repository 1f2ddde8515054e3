package web

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NewValidator returns a validator that reports fields by their form name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

type postForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`
}

func (f postForm) groupID() (*int64, error) {
	if f.Group == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(f.Group, 10, 64)
	if err != nil || id <= 0 {
		return nil, errInvalidGroupValue
	}
	return &id, nil
}

var errInvalidGroupValue = errors.New("invalid group value")

type commentForm struct {
	Text string `form:"text" validate:"required"`
}

type signupForm struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// formErrors maps form field names to the message shown next to them.
// The "form" key holds errors that belong to no single field.
type formErrors map[string]string

var tagMessages = map[string]string{
	"required": "This field is required.",
	"numeric":  "Select a valid choice.",
	"username": "Use only letters, digits and @/./+/-/_ characters.",
}

func fieldErrors(err error) formErrors {
	out := formErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "The form is invalid."
		return out
	}
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		if msg, ok := tagMessages[fe.Tag()]; ok {
			out[fe.Field()] = msg
			continue
		}
		switch fe.Tag() {
		case "min":
			out[fe.Field()] = "Ensure this value has at least " + fe.Param() + " characters."
		case "max":
			out[fe.Field()] = "Ensure this value has at most " + fe.Param() + " characters."
		default:
			out[fe.Field()] = "Enter a valid value."
		}
	}
	return out
}
