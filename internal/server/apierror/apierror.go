// Package apierror converts workflow failures into the (code, message) pairs
// that may be shown to callers.
package apierror

import (
	"github.com/dmitrijs2005/usersvc/internal/common"
)

const (
	GenericCode    = "error"
	GenericMessage = "There was an error."
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the translated form of a failure. Kind is empty for
// unclassified failures.
type Response struct {
	Kind   common.Kind `json:"-"`
	Errors []Error     `json:"errors"`
}

// Classified reports whether the failure was one of the known domain kinds.
func (r Response) Classified() bool { return r.Kind != "" }

var known = func() map[common.Kind]struct{} {
	m := make(map[common.Kind]struct{}, len(common.Kinds))
	for _, k := range common.Kinds {
		m[k] = struct{}{}
	}
	return m
}()

// Translate returns exactly one entry: the kind name and message for a
// known domain failure, or the generic pair for anything else. Translate(nil)
// returns an empty Response.
func Translate(err error) Response {
	if err == nil {
		return Response{}
	}
	if de, ok := common.AsDomainError(err); ok {
		if _, ok := known[de.Kind]; ok {
			return Response{
				Kind:   de.Kind,
				Errors: []Error{{Code: string(de.Kind), Message: de.Message}},
			}
		}
	}
	return Response{Errors: []Error{{Code: GenericCode, Message: GenericMessage}}}
}
