package gen

import (
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
)

var (
	acronymsMu sync.RWMutex
	acronyms   = map[string]bool{
		"API":  true,
		"HTTP": true,
		"ID":   true,
		"JSON": true,
		"SQL":  true,
		"URL":  true,
		"UUID": true,
	}
)

// AddAcronym registers a word that is written in upper case in Go names.
func AddAcronym(word string) {
	acronymsMu.Lock()
	defer acronymsMu.Unlock()
	acronyms[strings.ToUpper(word)] = true
}

// pascal converts a snake_case name to PascalCase:
//
//	pascal("film_actor") // FilmActor
//	pascal("actor_id")   // ActorID
func pascal(s string) string {
	acronymsMu.RLock()
	defer acronymsMu.RUnlock()
	var b strings.Builder
	for _, w := range strings.Split(s, "_") {
		if w == "" {
			continue
		}
		if up := strings.ToUpper(w); acronyms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(inflect.Capitalize(w))
	}
	return b.String()
}

// plural returns the name of the function returning a table reference.
func plural(name string) string {
	return inflect.Pluralize(name)
}
