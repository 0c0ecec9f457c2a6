package response

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

const (
	JsonContentType = "application/json"
	HtmlContentType = "text/html; charset=utf-8"
)

func WriteJson(w http.ResponseWriter, statusCode int, value any) error {
	setApiHeaders(w)
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(value)
}

// WriteRaw passes an upstream body through without re-encoding.
func WriteRaw(w http.ResponseWriter, statusCode int, body []byte) error {
	setApiHeaders(w)
	w.WriteHeader(statusCode)
	_, err := w.Write(body)
	return err
}

func WriteHtml(w http.ResponseWriter, body []byte) error {
	w.Header().Set("Content-Type", HtmlContentType)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}

func setApiHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", JsonContentType)
	w.Header().Set("Access-Control-Allow-Origin", "*")
}
