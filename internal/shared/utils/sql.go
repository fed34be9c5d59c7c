package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// Placeholder trả về bind placeholder của PostgreSQL ($1, $2, ...)
func Placeholder(pos int) string {
	return fmt.Sprintf("$%d", pos)
}
