package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE wildcards in s using PostgreSQL's default escape
// character, so user input only ever matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern returns an ILIKE pattern matching s anywhere in the column.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
