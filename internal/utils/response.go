package utils

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is negotiated through the Accept header.
const ContentTypeMsgpack = "application/msgpack"

// Envelope wraps every successful API payload.
type Envelope struct {
	Data     interface{}       `json:"data" msgpack:"data"`
	Metadata map[string]string `json:"metadata" msgpack:"metadata"`
}

// ErrorBody is returned for 4xx/5xx responses.
type ErrorBody struct {
	Error string `json:"error" msgpack:"error"`
	Field string `json:"field,omitempty" msgpack:"field,omitempty"`
}

// WantsMsgpack reports whether the client asked for msgpack.
func WantsMsgpack(r *http.Request) bool {
	if r == nil {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, ContentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// WriteData writes data inside the standard envelope.
func WriteData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	Write(w, r, status, Envelope{
		Data: data,
		Metadata: map[string]string{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// WriteError writes an error body.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message, field string) {
	Write(w, r, status, ErrorBody{Error: message, Field: field})
}

// Write encodes body as msgpack or JSON depending on the Accept header.
func Write(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	if WantsMsgpack(r) {
		payload, err := msgpack.Marshal(body)
		if err == nil {
			w.Header().Set("Content-Type", ContentTypeMsgpack)
			w.WriteHeader(status)
			_, _ = w.Write(payload)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
