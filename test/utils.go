package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"modelhubweb/models"

	"github.com/golang-jwt/jwt/v4"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

// GenerateUserToken signs the claims the API gateway issues: sub, role, name, email.
func GenerateUserToken(userPk string, role models.UserRole) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userPk,
		"role":  string(role),
		"name":  "Test " + string(role),
		"email": userPk + "@example.com",
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
		"iat":   time.Now().Unix(),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONTokenRequest(method string, target string, token string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequest(method string, target string, userPk string, role models.UserRole, param interface{}) *http.Request {
	return NewJSONTokenRequest(method, target, GenerateUserToken(userPk, role), param)
}

// NewMultipartTokenRequest builds a form with fields and files, files keyed by form field.
func NewMultipartTokenRequest(method, target, token string, fields map[string]string, files map[string][]models.Attachment) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	for field, attachments := range files {
		for _, a := range attachments {
			part, _ := writer.CreateFormFile(field, a.Name)
			part.Write(a.Content)
		}
	}
	writer.Close()
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Add("Content-Type", writer.FormDataContentType())
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
	ContentType   string
}

func (r RecordedRequest) JSON(out interface{}) error {
	return json.Unmarshal(r.Body, out)
}

// FakeAPI stands in for the marketplace API. Unregistered routes answer 404.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{handlers: map[string]http.HandlerFunc{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

func (f *FakeAPI) Close() {
	f.Server.Close()
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not Found"}`))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	h(w, r)
}

func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

// JSON registers a canned response.
func (f *FakeAPI) JSON(method, path string, status int, body interface{}) {
	payload := JsonString(body)
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(payload))
	})
}

func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeAPI) Calls(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// StorageMock hands out predictable URLs and remembers uploads.
type StorageMock struct {
	BaseURL string

	mu      sync.Mutex
	Uploads map[string][]byte
}

func (s *StorageMock) PresignUpload(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/upload/%s", key), nil
}

func (s *StorageMock) PublicURL(key string) string {
	base := s.BaseURL
	if base == "" {
		base = "https://fakebucketurl.com"
	}
	return fmt.Sprintf("%s/%s", base, key)
}

func (s *StorageMock) Upload(ctx context.Context, key string, content []byte) (string, error) {
	s.mu.Lock()
	if s.Uploads == nil {
		s.Uploads = map[string][]byte{}
	}
	s.Uploads[key] = content
	s.mu.Unlock()
	return s.PublicURL(key), nil
}
