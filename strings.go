package fernet

import "strings"

// CamelCase converts SNAKE_CASE or snake_case to camelCase. The env overlay
// uses it to map FERNET_DEV_MODE style keys onto the option table's devMode
// convention.
func CamelCase(str string) string {
	words := strings.Split(strings.ToLower(str), "_")

	var b strings.Builder
	b.Grow(len(str))

	first := true
	for _, word := range words {
		if word == "" {
			continue
		}
		if first {
			b.WriteString(word)
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}

	return b.String()
}

// truthy implements the overlay boolean contract: "1", "true" and "yes" in
// any case are true, everything else is false.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
