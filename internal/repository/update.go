package repository

import (
	"fmt"
	"strings"
)

type setField struct {
	col string
	set bool
	val any
}

// field описывает колонку для частичного UPDATE; nil - колонку не трогаем.
func field[T any](col string, p *T) setField {
	if p == nil {
		return setField{col: col}
	}
	return setField{col: col, set: true, val: *p}
}

// buildSet собирает "a = $1, b = $2" только из заданных полей.
func buildSet(fields []setField) (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, f := range fields {
		if !f.set {
			continue
		}
		args = append(args, f.val)
		parts = append(parts, fmt.Sprintf("%s = $%d", f.col, len(args)))
	}
	return strings.Join(parts, ", "), args
}
