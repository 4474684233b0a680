package httpx

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
)

type errorBody struct {
	Message string     `json:"message"`
	Code    model.Code `json:"code,omitempty"`
}

// writeError sends an error as {"message", "code"}.
func writeError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, http.StatusNotFound, errorBody{Message: fmt.Sprintf("%v not found", id)})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, status, errorBody{Message: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, status, errorBody{Message: errMsg})
}

// Will log a rejected campaign or survey response at DEBUG, and send an HTTP
// response with status 400 carrying the domain error code
func LogDomainError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Debugf("%s %s %s: %s", r.Method, r.URL.Path, code, err)
	body := errorBody{Message: err.Error()}
	if e, ok := model.AsError(err); ok {
		body.Code = e.Code
	}
	writeError(w, http.StatusBadRequest, body)
}
