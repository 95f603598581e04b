package adminclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.auth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		rec.body = nil
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			json.Unmarshal(data, &rec.body)
		}
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "k"), rec
}

func TestStatus(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK,
		`{"name":"ahbot","tick":12,"speed":1,"running":true,"bot":{"active":true,"venues":[{"venue":"horde","id":6,"listings":40}]}}`)

	s, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/api/v1/status" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if s.Tick != 12 || !s.Bot.Active || len(s.Bot.Venues) != 1 || s.Bot.Venues[0].Listings != 40 {
		t.Errorf("status = %+v", s)
	}
}

func TestSetField(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{}`)

	if err := c.SetField(context.Background(), "horde", "maxprice", "blue", 2000); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/api/v1/venue/horde/config" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if rec.auth != "Bearer k" {
		t.Errorf("auth = %q", rec.auth)
	}
	if rec.body["field"] != "maxprice" || rec.body["quality"] != "blue" || rec.body["value"] != float64(2000) {
		t.Errorf("body = %v", rec.body)
	}
}

func TestExpire(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"venue":"alliance","expired":9}`)

	class := uint8(7)
	n, err := c.Expire(context.Background(), "alliance", &class)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if n != 9 {
		t.Errorf("expired = %d, want 9", n)
	}
	if rec.body["class"] != float64(7) {
		t.Errorf("body = %v", rec.body)
	}

	if _, err := c.Expire(context.Background(), "alliance", nil); err != nil {
		t.Fatalf("Expire all: %v", err)
	}
	if _, ok := rec.body["class"]; ok {
		t.Errorf("class sent for expire all: %v", rec.body)
	}
}

func TestErrorStatus(t *testing.T) {
	c, _ := newTestServer(t, http.StatusBadRequest, "venue horde minprice blue: invalid value\n")

	err := c.SetField(context.Background(), "horde", "minprice", "blue", 9999)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "invalid value") {
		t.Errorf("error = %v", err)
	}
}
