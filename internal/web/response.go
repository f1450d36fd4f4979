package web

import (
	"net/http"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

// jsonAPI is a json-iterator instance compatible with encoding/json but with
// time.Time emitted as RFC3339 without fractional seconds, so timestamps in
// responses stay stable across platforms.
type timeRFC3339Encoder struct{}

func (e *timeRFC3339Encoder) IsEmpty(ptr unsafe.Pointer) bool {
	return (*time.Time)(ptr).IsZero()
}

func (e *timeRFC3339Encoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*time.Time)(ptr).Format(time.RFC3339))
}

type timeExt struct{ jsoniter.DummyExtension }

func (e *timeExt) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	if typ == reflect2.TypeOfPtr((*time.Time)(nil)).Elem() {
		return &timeRFC3339Encoder{}
	}
	return nil
}

var jsonAPI = func() jsoniter.API {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	api.RegisterExtension(&timeExt{})
	return api
}()

// Response is the normalized handler result. Either Fields (a JSON object
// merged into the success envelope) or Raw (a byte stream with its own
// content type) is set, not both.
type Response struct {
	Status      int // 0 means 200
	Header      http.Header
	Fields      map[string]any
	Raw         []byte
	ContentType string
}

// OK wraps fields into a 200 JSON response. fields may be nil.
func OK(fields map[string]any) *Response {
	return &Response{Status: http.StatusOK, Fields: fields}
}

func Status(code int, fields map[string]any) *Response {
	return &Response{Status: code, Fields: fields}
}

// Stream returns a raw byte response (downloads, exports).
func Stream(contentType string, body []byte) *Response {
	return &Response{Status: http.StatusOK, Raw: body, ContentType: contentType}
}

func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

func (r *Response) write(w http.ResponseWriter) {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if r.Raw != nil {
		ct := r.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(status)
		_, _ = w.Write(r.Raw)
		return
	}
	body := map[string]any{"error": false}
	for k, v := range r.Fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	b, err := jsonAPI.Marshal(body)
	if err != nil {
		// Should not happen for map payloads; emit a fixed fallback.
		_, _ = w.Write([]byte(`{"error":true,"message":"encoding failure"}`))
		return
	}
	_, _ = w.Write(b)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": true, "message": message})
}
