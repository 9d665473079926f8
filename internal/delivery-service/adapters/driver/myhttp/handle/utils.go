package handle

import (
	"encoding/json"
	"net/http"
	"strconv"

	"foodbridge/internal/myerrors"
)

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes an error response as JSON with the specified HTTP status code.
func JsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// serviceError maps a service-layer error onto its HTTP status code.
func serviceError(w http.ResponseWriter, err error) {
	JsonError(w, myerrors.StatusCode(err), err)
}

func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.Header.Get("X-UserId"), 10, 64)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
