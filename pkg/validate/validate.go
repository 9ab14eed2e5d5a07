// Package validate runs struct-tag validation over request inputs.
//
// Rules are comma-separated in the `validate` tag and checked in order; the
// first failing rule of a field wins:
//
//	required            field must not be zero/empty
//	nullable            if empty, skip the remaining rules for this field
//	numeric             any number
//	url                 http(s) URL
//	uuid                canonical UUID
//	min=N, max=N        string length or numeric value
//	between=lo,hi       string length or numeric value, inclusive
//	in=a,b,c            value must be one of the listed items
//
// A `msg` tag overrides messages per rule, `;`-separated:
//
//	Pin string `json:"pin_code" validate:"required,between=5,10" msg:"between=Invalid PIN code"`
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// FieldError is one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors keeps failures in struct field order.
type Errors []FieldError

func (e Errors) Error() string { return e.First() }

// First returns the message of the first failing field, or "".
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// Map returns field -> message.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Message
	}
	return out
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// HasErrors reports whether errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

// Struct validates every exported field of v that carries a `validate` tag.
func Struct(v any) Errors {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var errs Errors
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		for value.Kind() == reflect.Pointer && !value.IsNil() {
			value = value.Elem()
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)
		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		overrides := parseMessages(field.Tag.Get("msg"))
		for _, rule := range rules {
			key, param, _ := strings.Cut(rule, "=")
			if key == "nullable" {
				continue
			}
			if msg := apply(key, param, name, value); msg != "" {
				if custom, ok := overrides[key]; ok {
					msg = custom
				}
				errs = append(errs, FieldError{Field: name, Rule: key, Message: msg})
				break
			}
		}
	}
	return errs
}

var uuidRE = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func apply(key, param, field string, v reflect.Value) string {
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		if key == "required" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}
	raw := fmt.Sprintf("%v", v.Interface())

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "min":
		if measure(v, raw) < parseFloat(param) {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit(v))
		}
	case "max":
		if measure(v, raw) > parseFloat(param) {
			return fmt.Sprintf("The %s must not be greater than %s%s.", field, param, unit(v))
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		if m := measure(v, raw); m < parseFloat(lo) || m > parseFloat(hi) {
			return fmt.Sprintf("The %s must be between %s and %s%s.", field, lo, hi, unit(v))
		}
	case "in":
		for _, allowed := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

// splitRules splits on commas, folding bare tokens that are not rule names
// back into the previous rule's parameter ("in=a,b,c", "between=5,10").
func splitRules(tag string) []string {
	var rules []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, _, hasParam := strings.Cut(tok, "=")
		if !hasParam && !knownRules[key] && len(rules) > 0 {
			rules[len(rules)-1] += "," + tok
			continue
		}
		rules = append(rules, tok)
	}
	return rules
}

var knownRules = map[string]bool{
	"required": true, "nullable": true, "numeric": true, "url": true, "uuid": true,
	"min": true, "max": true, "between": true, "in": true,
}

func parseMessages(tag string) map[string]string {
	if tag == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(tag, ";") {
		if key, msg, ok := strings.Cut(part, "="); ok {
			out[strings.TrimSpace(key)] = strings.TrimSpace(msg)
		}
	}
	return out
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if r == name {
			return true
		}
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// measure is the numeric value for numbers, element count for collections
// and rune length for everything else.
func measure(v reflect.Value, raw string) float64 {
	switch {
	case isNumeric(v):
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Map || v.Kind() == reflect.Array:
		return float64(v.Len())
	default:
		return float64(len([]rune(raw)))
	}
}

func unit(v reflect.Value) string {
	switch {
	case isNumeric(v):
		return ""
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Map || v.Kind() == reflect.Array:
		return " items"
	default:
		return " characters"
	}
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
