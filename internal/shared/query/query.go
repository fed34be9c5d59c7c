// Package query dịch query string thành mệnh đề WHERE có bind parameters.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"catalog-backend/internal/shared/utils"
	"catalog-backend/internal/shared/validator"
)

// Kind của attribute quyết định cách parse giá trị
type Kind int

const (
	Text Kind = iota
	Integer
	// Int32 cho cột INTEGER, giá trị ngoài int32 bị từ chối
	Int32
)

// Attribute map tên public sang cột SQL
type Attribute struct {
	Column string
	Kind   Kind
}

// AllowList là tập attribute được phép filter của một resource
type AllowList map[string]Attribute

// Condition là một so sánh bằng column = value
type Condition struct {
	Column string
	Value  any
}

// Filter là danh sách điều kiện AND, thứ tự theo tên attribute
type Filter struct {
	Conditions []Condition
}

// Translate kiểm tra params theo allow-list và tạo Filter
// Mọi lỗi đều là *validator.ValidationError
func (a AllowList) Translate(params url.Values) (Filter, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		filter     Filter
		violations []string
	)
	for _, name := range names {
		attr, ok := a[name]
		if !ok {
			violations = append(violations, fmt.Sprintf("%q: unknown filter attribute", name))
			continue
		}

		values := params[name]
		if len(values) != 1 {
			violations = append(violations, fmt.Sprintf("%q: must be given at most once", name))
			continue
		}

		value, err := attr.parse(values[0])
		if err != nil {
			violations = append(violations, fmt.Sprintf("%q: %s", name, err.Error()))
			continue
		}

		filter.Conditions = append(filter.Conditions, Condition{Column: attr.Column, Value: value})
	}

	if len(violations) > 0 {
		return Filter{}, validator.NewError(violations...)
	}
	return filter, nil
}

func (attr Attribute) parse(raw string) (any, error) {
	switch attr.Kind {
	case Integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New(validator.MsgNotInteger)
		}
		return n, nil
	case Int32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, errors.New(validator.MsgOutOfInt32Range)
			}
			return nil, errors.New(validator.MsgNotInteger)
		}
		return n, nil
	default:
		if msg := validator.CheckText(raw); msg != "" {
			return nil, errors.New(msg)
		}
		return raw, nil
	}
}

// Where render "WHERE col = $n AND ..." bắt đầu từ placeholder startPos
// Filter rỗng trả về "" và không có args
func (f Filter) Where(startPos int) (string, []any) {
	if len(f.Conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(f.Conditions))
	args := make([]any, 0, len(f.Conditions))
	for i, cond := range f.Conditions {
		clauses = append(clauses, cond.Column+" = "+utils.Placeholder(startPos+i))
		args = append(args, cond.Value)
	}

	return "WHERE " + utils.JoinWithAnd(clauses), args
}

// IsEmpty: không có điều kiện nào, query trả về toàn bộ bảng
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}
