package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestResolve_TopCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "warsza" {
			t.Errorf("query = %q; want warsza", got)
		}
		_, _ = w.Write([]byte(`{"candidates": [
			{"name": "Warsaw", "types": ["locality", "political"]},
			{"name": "Warsaw Chopin Airport", "types": ["establishment"]}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())
	candidate, err := client.Resolve(context.Background(), "warsza")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if candidate == nil || candidate.Name != "Warsaw" {
		t.Fatalf("candidate = %+v; want top-ranked Warsaw", candidate)
	}
	if !candidate.IsLocality() {
		t.Error("IsLocality() = false for locality candidate; want true")
	}
}

func TestResolve_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())
	candidate, err := client.Resolve(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if candidate != nil {
		t.Errorf("candidate = %+v; want nil", candidate)
	}
}

func TestResolve_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())
	candidate, err := client.Resolve(context.Background(), "x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if candidate != nil {
		t.Errorf("candidate = %+v; want nil", candidate)
	}
}

func TestResolve_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())
	if _, err := client.Resolve(context.Background(), "warsaw"); err == nil {
		t.Fatal("Resolve err = nil; want error on 500")
	}
}

func TestIsLocality(t *testing.T) {
	cases := []struct {
		types []string
		want  bool
	}{
		{[]string{"locality", "political"}, true},
		{[]string{"administrative_area_level_1"}, true},
		{[]string{"region"}, true},
		{[]string{"establishment", "point_of_interest"}, false},
		{[]string{"sublocality"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		c := &Candidate{Types: tc.types}
		if got := c.IsLocality(); got != tc.want {
			t.Errorf("IsLocality(%v) = %v; want %v", tc.types, got, tc.want)
		}
	}
}
