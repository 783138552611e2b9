package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/game-rental/internal/model"
)

var (
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z]+$`)
	gameTitlePattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ]*[a-zA-Z0-9]$`)
	searchTitlePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ]*$`)
)

// RequestValidator plugs go-playground/validator into echo.Echo.Validator.
// Besides the built-in tags it understands username, gametitle,
// searchtitle, genre, platform, sortby and rentalstatus.
type RequestValidator struct {
	v *validator.Validate
}

func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	mustRegister(v, "username", matches(usernamePattern))
	mustRegister(v, "gametitle", matches(gameTitlePattern))
	mustRegister(v, "searchtitle", matches(searchTitlePattern))
	mustRegister(v, "genre", func(fl validator.FieldLevel) bool { return model.Genre(fl.Field().String()).Valid() })
	mustRegister(v, "platform", func(fl validator.FieldLevel) bool { return model.Platform(fl.Field().String()).Valid() })
	mustRegister(v, "sortby", func(fl validator.FieldLevel) bool { return model.SortBy(fl.Field().String()).Valid() })
	mustRegister(v, "rentalstatus", func(fl validator.FieldLevel) bool { return model.RentalStatus(fl.Field().String()).Valid() })
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool { return re.MatchString(fl.Field().String()) }
}

// describe turns validator output into one client-facing sentence per
// failed field.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "username":
		return f + " may only contain letters"
	case "gametitle":
		return f + " may only contain letters, digits and inner spaces"
	case "searchtitle":
		return f + " may only contain letters, digits and spaces and must not start with a space"
	case "genre":
		return f + " must be one of " + joinValues(model.Genres)
	case "platform":
		return f + " must be one of " + joinValues(model.Platforms)
	case "sortby":
		return f + " must be POPULARITY or TITLE"
	case "rentalstatus":
		return f + " must be ACTIVE or RETURNED"
	}
	return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
}

func joinValues[T ~string](vals []T) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
