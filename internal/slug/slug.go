// Package slug builds URL path segments from display names.
package slug

import "strings"

// Make lowercases name and joins its ASCII letter and digit runs with
// dashes. "Camisa Polo, Talla XL" becomes "camisa-polo-talla-xl".
func Make(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
