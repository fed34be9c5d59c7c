// Package validator kiểm tra shape và type của JSON body trước khi decode vào struct.
//
// Body được decode thành map với json.Number, kiểm tra bằng ozzo-validation map
// rules theo Schema, rồi mới unmarshal vào dest. Key lạ được bỏ qua.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind là kiểu dữ liệu mong đợi của một field
type Kind int

const (
	String Kind = iota
	Integer
	// Int32 cho cột INTEGER
	Int32
	Enum
)

// Field mô tả một key trong body
type Field struct {
	Name     string
	Kind     Kind
	Values   []string // chỉ dùng cho Enum
	Optional bool
	NonEmpty bool // String: không chấp nhận ""
}

type Schema []Field

// Form-level messages
const (
	MsgEmptyBody   = "body is empty"
	MsgNotObject   = "body must be a JSON object"
	MsgUndecodable = "body could not be decoded"
)

// Field-level messages, dùng chung với query filter
const (
	MsgNotInteger      = "must be an integer"
	MsgOutOfInt32Range = "must be between -2147483648 and 2147483647"
	MsgContainsNUL     = "must not contain NUL characters"
	MsgInvalidUTF8     = "must be valid UTF-8"
)

var (
	errNotString  = validation.NewError("validation_is_string", "must be a string")
	errNotInteger = validation.NewError("validation_is_integer", MsgNotInteger)
	errOutOfRange = validation.NewError("validation_int32_range", MsgOutOfInt32Range)
	errNotInEnum  = validation.NewError("validation_in_enum", "must be one of")
	errNUL        = validation.NewError("validation_no_nul", MsgContainsNUL)
	errInvalidUTF = validation.NewError("validation_utf8", MsgInvalidUTF8)
)

// CheckText trả về message lỗi nếu s không lưu được vào cột TEXT của PostgreSQL
// (NUL byte hoặc UTF-8 hỏng), "" nếu hợp lệ
func CheckText(s string) string {
	switch {
	case !utf8.ValidString(s):
		return MsgInvalidUTF8
	case strings.IndexByte(s, 0) >= 0:
		return MsgContainsNUL
	}
	return ""
}

// ValidationError chứa một message cho mỗi field sai, đã sort
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewError tạo ValidationError từ các message, sort theo thứ tự
func NewError(violations ...string) *ValidationError {
	sorted := append([]string(nil), violations...)
	sort.Strings(sorted)
	return &ValidationError{Violations: sorted}
}

// FieldError tạo ValidationError cho một field, format "name": message
func FieldError(field, message string) *ValidationError {
	return NewError(fieldMessage(field, message))
}

func fieldMessage(field, message string) string {
	return fmt.Sprintf("%q: %s", field, message)
}

// Bind validate raw theo schema rồi decode vào dest
// Không có partial success: lỗi thì dest không bị đụng tới
// dest chỉ nhận các key đúng tên trong schema, đã validate
func Bind(raw []byte, schema Schema, dest any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewError(MsgEmptyBody)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil || dec.More() {
		return NewError(MsgUndecodable)
	}

	object, ok := payload.(map[string]any)
	if !ok {
		return NewError(MsgNotObject)
	}

	if err := Validate(object, schema); err != nil {
		return err
	}

	// encoding/json match key không phân biệt hoa thường,
	// nên chỉ decode lại từ các key đã validate
	validated := make(map[string]any, len(schema))
	for _, f := range schema {
		if v, ok := object[f.Name]; ok {
			validated[f.Name] = v
		}
	}

	clean, err := json.Marshal(validated)
	if err != nil {
		return fmt.Errorf("re-encode body: %w", err)
	}
	if err := json.Unmarshal(clean, dest); err != nil {
		return NewError(MsgUndecodable)
	}
	return nil
}

// Validate chạy ozzo map rules của schema trên object đã decode
func Validate(object map[string]any, schema Schema) error {
	keys := make([]*validation.KeyRules, 0, len(schema))
	for _, f := range schema {
		keys = append(keys, keyRules(f))
	}

	err := validation.Validate(object, validation.Map(keys...).AllowExtraKeys())
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate body: %w", err)
	}

	violations := make([]string, 0, len(fieldErrs))
	for name, ferr := range fieldErrs {
		violations = append(violations, fieldMessage(name, ferr.Error()))
	}
	return NewError(violations...)
}

func keyRules(f Field) *validation.KeyRules {
	rules := []validation.Rule{}
	if !f.Optional {
		rules = append(rules, validation.NotNil)
	}

	switch f.Kind {
	case String:
		rules = append(rules, validation.By(isString))
		if f.NonEmpty {
			rules = append(rules, validation.Required)
		}
	case Integer:
		rules = append(rules, validation.By(isInteger))
	case Int32:
		rules = append(rules, validation.By(isInteger), validation.By(isInt32))
	case Enum:
		rules = append(rules, validation.By(isString), validation.By(inEnum(f.Values)))
	}

	key := validation.Key(f.Name, rules...)
	if f.Optional {
		key = key.Optional()
	}
	return key
}

func isString(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errNotString
	}
	switch CheckText(s) {
	case MsgInvalidUTF8:
		return errInvalidUTF
	case MsgContainsNUL:
		return errNUL
	}
	return nil
}

func isInteger(value interface{}) error {
	n, ok := value.(json.Number)
	if !ok {
		return errNotInteger
	}
	if _, err := n.Int64(); err != nil {
		return errNotInteger
	}
	return nil
}

func isInt32(value interface{}) error {
	n, _ := value.(json.Number)
	if _, err := strconv.ParseInt(n.String(), 10, 32); err != nil {
		return errOutOfRange
	}
	return nil
}

func inEnum(values []string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		for _, v := range values {
			if s == v {
				return nil
			}
		}
		return errNotInEnum.SetMessage("must be one of: " + strings.Join(values, ", "))
	}
}
