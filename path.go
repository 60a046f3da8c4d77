package talaria

import "strings"

// Param is a single name/value pair within an ordered set of parameters.
type Param struct {
	Name  string
	Value string
}

// Query is an ordered set of query string parameters.
//
// Parameters are serialized in the order they appear, exactly as given. Any
// percent-encoding the values require must be supplied by the caller.
type Query []Param

// encode returns the query string representation of q, without a leading "?".
func (q Query) encode() string {
	if len(q) == 0 {
		return ""
	}

	var w strings.Builder

	for i, p := range q {
		if i > 0 {
			w.WriteByte('&')
		}

		w.WriteString(p.Name)
		w.WriteByte('=')
		w.WriteString(p.Value)
	}

	return w.String()
}

// joinPath appends a request path to a base path.
//
// An empty request path is treated as "/". The two paths are concatenated
// as-is, except that a run of two or more consecutive slashes at the join
// boundary is collapsed into a single slash. No separator is inserted when
// neither side contributes one, and duplicate slashes elsewhere within either
// path are preserved.
func joinPath(base, path string) string {
	if path == "" {
		path = "/"
	}

	t := 0
	for t < len(base) && base[len(base)-1-t] == '/' {
		t++
	}

	l := 0
	for l < len(path) && path[l] == '/' {
		l++
	}

	if t+l >= 2 {
		return base[:len(base)-t] + "/" + path[l:]
	}

	return base + path
}
