package utils

import (
	"strconv"
	"strings"
)

// ParseRevision reads a revision from an If-Match style value: `7`, `"7"`
// or `W/"7"`. An empty value yields nil.
func ParseRevision(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return nil, &strconv.NumError{Func: "ParseRevision", Num: v, Err: strconv.ErrSyntax}
	}
	return &n, nil
}

// RevisionETag renders n the way ParseRevision accepts it back.
func RevisionETag(n int64) string {
	return `"` + strconv.FormatInt(n, 10) + `"`
}
