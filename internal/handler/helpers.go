package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/boardlink-dev/boardlink/internal/utils"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}

// MethodNotAllowed returns a handler for unsupported methods on a known
// resource: 405 with an Allow header listing what the resource supports.
func MethodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		utils.WriteErrorMessage(w, fmt.Sprintf("Method %s not allowed", r.Method), http.StatusMethodNotAllowed)
	}
}
