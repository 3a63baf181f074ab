// Package fakegateway serves an in-memory imitation of the gateway admin API for tests.
package fakegateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/jrsteele09/go-gateway-auth/gateway"
)

// Route keys used with FailNext and Calls.
const (
	RouteCreateConsumer = "POST /consumers"
	RouteListConsumers  = "GET /consumers"
	RouteGetConsumer    = "GET /consumers/{id}"
	RouteDeleteConsumer = "DELETE /consumers/{id}"
	RouteCreateKey      = "POST /consumers/{id}/key-auth"
	RouteListKeys       = "GET /consumers/{id}/key-auth"
	RouteDeleteKey      = "DELETE /consumers/{id}/key-auth/{keyID}"
	RouteStatus         = "GET /status"
)

// Request is a request observed by the fake.
type Request struct {
	Route     string
	Path      string
	RequestID string
	UserAgent string
	Body      map[string]any
}

type cannedResponse struct {
	status int
	body   string
}

type FakeGateway struct {
	*httptest.Server

	lock         sync.Mutex
	consumers    map[string]*gateway.Consumer // by id
	keys         map[string][]gateway.APIKey  // by consumer id
	nextID       int
	generatedKey string
	canned       map[string][]cannedResponse
	requests     []Request
}

func New() *FakeGateway {
	f := &FakeGateway{
		consumers: make(map[string]*gateway.Consumer),
		keys:      make(map[string][]gateway.APIKey),
		canned:    make(map[string][]cannedResponse),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(RouteCreateConsumer, f.createConsumer)
	mux.HandleFunc(RouteListConsumers, f.listConsumers)
	mux.HandleFunc(RouteGetConsumer, f.getConsumer)
	mux.HandleFunc(RouteDeleteConsumer, f.deleteConsumer)
	mux.HandleFunc(RouteCreateKey, f.createKey)
	mux.HandleFunc(RouteListKeys, f.listKeys)
	mux.HandleFunc(RouteDeleteKey, f.deleteKey)
	mux.HandleFunc(RouteStatus, f.status)

	f.Server = httptest.NewServer(f.record(mux))
	return f
}

// FailNext queues JSON error responses for a route, consumed one per request before normal handling.
func (f *FakeGateway) FailNext(route string, statuses ...int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, status := range statuses {
		body, _ := json.Marshal(map[string]string{"message": http.StatusText(status)})
		f.canned[route] = append(f.canned[route], cannedResponse{status: status, body: string(body)})
	}
}

// RespondNextRaw queues a response with a literal body.
func (f *FakeGateway) RespondNextRaw(route string, status int, body string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.canned[route] = append(f.canned[route], cannedResponse{status: status, body: body})
}

// SetGeneratedKey sets the key value handed out when a key is created without one.
func (f *FakeGateway) SetGeneratedKey(key string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.generatedKey = key
}

// Calls counts requests that matched route, including canned responses.
func (f *FakeGateway) Calls(route string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

func (f *FakeGateway) Requests() []Request {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Request(nil), f.requests...)
}

// Consumer returns a stored consumer by username or id.
func (f *FakeGateway) Consumer(usernameOrID string) (gateway.Consumer, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(usernameOrID)
	if c == nil {
		return gateway.Consumer{}, false
	}
	return *c, true
}

// Keys returns the stored keys of a consumer.
func (f *FakeGateway) Keys(usernameOrID string) []gateway.APIKey {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(usernameOrID)
	if c == nil {
		return nil
	}
	return append([]gateway.APIKey(nil), f.keys[c.ID]...)
}

func (f *FakeGateway) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, route := f.routeOf(r)

		body := map[string]any{}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		r.Body = io.NopCloser(jsonReader(body))

		f.lock.Lock()
		f.requests = append(f.requests, Request{
			Route:     route,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-ID"),
			UserAgent: r.Header.Get("User-Agent"),
			Body:      body,
		})
		var canned *cannedResponse
		if queue := f.canned[route]; len(queue) > 0 {
			canned = &queue[0]
			f.canned[route] = queue[1:]
		}
		f.lock.Unlock()

		if canned != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			_, _ = io.WriteString(w, canned.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeGateway) routeOf(r *http.Request) (http.Handler, string) {
	mux := http.NewServeMux()
	for _, route := range []string{RouteCreateConsumer, RouteListConsumers, RouteGetConsumer, RouteDeleteConsumer,
		RouteCreateKey, RouteListKeys, RouteDeleteKey, RouteStatus} {
		mux.Handle(route, http.NotFoundHandler())
	}
	return mux.Handler(r)
}

func (f *FakeGateway) lookup(usernameOrID string) *gateway.Consumer {
	if c, ok := f.consumers[usernameOrID]; ok {
		return c
	}
	for _, c := range f.consumers {
		if c.Username != "" && c.Username == usernameOrID {
			return c
		}
	}
	return nil
}

func (f *FakeGateway) createConsumer(w http.ResponseWriter, r *http.Request) {
	var req gateway.CreateConsumerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" && req.CustomID == "" {
		writeMessage(w, http.StatusBadRequest, "schema violation (at least one of these fields must be non-empty: 'custom_id', 'username')")
		return
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	for _, c := range f.consumers {
		if req.Username != "" && c.Username == req.Username {
			writeMessage(w, http.StatusConflict, fmt.Sprintf("UNIQUE violation detected on '{username=\"%s\"}'", req.Username))
			return
		}
		if req.CustomID != "" && c.CustomID == req.CustomID {
			writeMessage(w, http.StatusConflict, fmt.Sprintf("UNIQUE violation detected on '{custom_id=\"%s\"}'", req.CustomID))
			return
		}
	}

	f.nextID++
	consumer := &gateway.Consumer{
		ID:        fmt.Sprintf("c_%d", f.nextID),
		Username:  req.Username,
		CustomID:  req.CustomID,
		Tags:      req.Tags,
		CreatedAt: time.Now().Unix(),
	}
	f.consumers[consumer.ID] = consumer
	writeJSON(w, http.StatusCreated, consumer)
}

func (f *FakeGateway) listConsumers(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	page := gateway.ConsumerPage{Data: []gateway.Consumer{}}
	for i := 1; i <= f.nextID; i++ {
		if c, ok := f.consumers[fmt.Sprintf("c_%d", i)]; ok {
			page.Data = append(page.Data, *c)
		}
	}
	writeJSON(w, http.StatusOK, page)
}

func (f *FakeGateway) getConsumer(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(r.PathValue("id"))
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (f *FakeGateway) deleteConsumer(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(r.PathValue("id"))
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	delete(f.consumers, c.ID)
	delete(f.keys, c.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeGateway) createKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(r.PathValue("id"))
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	if req.Key == "" {
		req.Key = f.generatedKey
		if req.Key == "" {
			req.Key = fmt.Sprintf("generated-key-%d", len(f.keys[c.ID])+1)
		}
	}
	for _, keys := range f.keys {
		for _, k := range keys {
			if k.Key == req.Key {
				writeMessage(w, http.StatusBadRequest, fmt.Sprintf("UNIQUE violation detected on '{key=\"%s\"}'", gateway.MaskKey(req.Key)))
				return
			}
		}
	}
	key := gateway.APIKey{
		ID:        fmt.Sprintf("%s_k_%d", c.ID, len(f.keys[c.ID])+1),
		Key:       req.Key,
		CreatedAt: time.Now().Unix(),
		Consumer:  &gateway.ConsumerRef{ID: c.ID},
	}
	f.keys[c.ID] = append(f.keys[c.ID], key)
	writeJSON(w, http.StatusCreated, key)
}

func (f *FakeGateway) listKeys(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(r.PathValue("id"))
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	keys := append([]gateway.APIKey{}, f.keys[c.ID]...)
	writeJSON(w, http.StatusOK, map[string]any{"data": keys, "next": nil})
}

func (f *FakeGateway) deleteKey(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	c := f.lookup(r.PathValue("id"))
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	keyID := r.PathValue("keyID")
	keys := f.keys[c.ID]
	for i, k := range keys {
		if k.ID == keyID {
			f.keys[c.ID] = append(keys[:i:i], keys[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Not found")
}

func (f *FakeGateway) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"database": map[string]any{"reachable": true},
		"server":   map[string]any{"connections_active": 1},
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonReader(body map[string]any) io.Reader {
	if len(body) == 0 {
		return bytes.NewReader(nil)
	}
	raw, _ := json.Marshal(body)
	return bytes.NewReader(raw)
}
