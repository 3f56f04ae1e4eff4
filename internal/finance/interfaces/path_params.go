package interfaces

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type pathParamKey string

// ValidatePathParamsMiddleware parses each named path wildcard as a positive
// integer id and stores it in the request context for PathID. A missing
// value is a 400; a value that cannot be an id is reported as not found.
func ValidatePathParamsMiddleware(respondError func(w http.ResponseWriter, status int, message string, errors ...[]string), next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			value := r.PathValue(param)
			if value == "" {
				respondError(w, http.StatusBadRequest, capitalizeFirstLetter(fmt.Sprintf("%s is required", param)))
				return
			}

			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				respondError(w, http.StatusNotFound, notFoundMessage(param))
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), pathParamKey(param), id))
		}
		next.ServeHTTP(w, r)
	})
}

// PathID returns the id stored by ValidatePathParamsMiddleware.
func PathID(r *http.Request, param string) (int64, bool) {
	id, ok := r.Context().Value(pathParamKey(param)).(int64)
	return id, ok
}

func notFoundMessage(param string) string {
	switch param {
	case "categoryID":
		return "Category not found"
	case "movementID":
		return "Movement not found"
	default:
		return "Resource not found"
	}
}

func capitalizeFirstLetter(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
