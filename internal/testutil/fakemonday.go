package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by FakeMonday.
type Call struct {
	Operation string
	Query     string
	Variables map[string]interface{}
	Header    http.Header
	Multipart bool
	FileName  string
	FileData  []byte
}

// Responder produces the HTTP status and body for a call.
type Responder func(call Call) (status int, body string)

// FakeMonday is an httptest server speaking just enough of the monday
// GraphQL endpoint for client tests. Handlers are keyed by operation name.
type FakeMonday struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]Responder
}

var operationNameRE = regexp.MustCompile(`(?:query|mutation)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// NewFakeMonday starts a fake endpoint that is closed when the test ends.
func NewFakeMonday(t *testing.T) *FakeMonday {
	t.Helper()

	f := &FakeMonday{handlers: make(map[string]Responder)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Handle registers a responder for an operation name.
func (f *FakeMonday) Handle(operation string, r Responder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[operation] = r
}

// Reply registers a fixed 200 response for an operation name.
func (f *FakeMonday) Reply(operation, body string) {
	f.Handle(operation, func(Call) (int, string) { return http.StatusOK, body })
}

// Fail registers a fixed HTTP failure for an operation name.
func (f *FakeMonday) Fail(operation string, status int) {
	f.Handle(operation, func(Call) (int, string) { return status, `{"error_message":"boom"}` })
}

// Calls returns a copy of every call received so far, in arrival order.
func (f *FakeMonday) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Operations returns the operation names received so far, in arrival order.
func (f *FakeMonday) Operations() []string {
	calls := f.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Operation
	}
	return ops
}

func (f *FakeMonday) serve(w http.ResponseWriter, r *http.Request) {
	call, err := decodeCall(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler, ok := f.handlers[call.Operation]
	f.mu.Unlock()

	status, body := http.StatusOK, fmt.Sprintf(`{"errors":[{"message":"unhandled operation %s"}]}`, call.Operation)
	if ok {
		status, body = handler(call)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func decodeCall(r *http.Request) (Call, error) {
	call := Call{Header: r.Header.Clone()}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		call.Multipart = true
		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return call, err
			}
			data, err := io.ReadAll(part)
			if err != nil {
				return call, err
			}
			switch part.FormName() {
			case "query":
				call.Query = string(data)
			case "variables":
				if err := json.Unmarshal(data, &call.Variables); err != nil {
					return call, err
				}
			case "file":
				call.FileName = part.FileName()
				call.FileData = data
			}
		}
	} else {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return call, err
		}
		call.Query = body.Query
		call.Variables = body.Variables
	}

	if m := operationNameRE.FindStringSubmatch(call.Query); m != nil {
		call.Operation = m[1]
	}
	return call, nil
}
