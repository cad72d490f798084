// Package validator checks struct fields against `validate` tag rules.
//
// Rules are separated by semicolons. A colon introduces parameters, which
// are comma separated:
//
//	type SignupInput struct {
//		Email    string `json:"email" validate:"required;email"`
//		Password string `json:"password" validate:"required;min:6;max:72"`
//	}
//
// Errors are collected for every field and reported by JSON field name
// when one is declared.
package validator
