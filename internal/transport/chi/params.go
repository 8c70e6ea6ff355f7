package chi

import (
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// queryBinder binds optional query parameters the way oapi-codegen generated wrappers do.
// The first failure is kept and reported once.
type queryBinder struct {
	query url.Values
	err   error
	name  string
}

func newQueryBinder(r *http.Request) *queryBinder {
	return &queryBinder{query: r.URL.Query()}
}

// form binds a repeated parameter (?v=a&v=b) or a scalar.
func (b *queryBinder) form(name string, dest any) *queryBinder {
	return b.bind(name, true, dest)
}

// csv binds a comma-separated list parameter (?v=a,b).
func (b *queryBinder) csv(name string, dest any) *queryBinder {
	return b.bind(name, false, dest)
}

func (b *queryBinder) bind(name string, explode bool, dest any) *queryBinder {
	if b.err != nil {
		return b
	}
	if err := runtime.BindQueryParameter("form", explode, false, name, b.query, dest); err != nil {
		b.err, b.name = err, name
	}
	return b
}

// ok writes a 400 for the first binding failure and reports whether binding succeeded.
func (b *queryBinder) ok(w http.ResponseWriter) bool {
	if b.err == nil {
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
		"Invalid format for parameter "+b.name+": "+b.err.Error())
	return false
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
