package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

var rolePattern = regexp.MustCompile("^(brand|creator)$")

func (r *UserRole) Scan(value interface{}) error {
	*r = UserRole(value.(string))
	return nil
}

func (r UserRole) Value() (string, error) {
	return string(r), nil
}

func ValidateRole(fl validator.FieldLevel) bool {
	return rolePattern.MatchString(fl.Field().String())
}

func ValidateRoleRaw(value string) bool {
	return rolePattern.MatchString(value)
}
