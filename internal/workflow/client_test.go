package workflow

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mallops-console/internal/access"
	profiledomain "mallops-console/internal/profile/domain"
)

func intPtr(v int) *int { return &v }

func testUniverse() access.Universe {
	return access.Universe{
		Malls: []int{3, 6},
		ShopsByMall: map[int][]int{
			3: {30, 31},
			6: {6},
		},
	}
}

func TestFetchListSendsBearerToken(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	body, err := c.FetchList(context.Background(), "tok-123", "campaigns", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("FetchList: %v", err)
	}
	if string(body) != `[]` {
		t.Errorf("body = %q", body)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery != "ids=1,2,3" {
		t.Errorf("query = %q, want ids=1,2,3", gotQuery)
	}
}

func TestFetchShopsPreFiltersRequest(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	shopAdmin := &profiledomain.Profile{
		Username: "shop6", Role: profiledomain.RoleShopAdmin,
		MallID: intPtr(6), ShopID: intPtr(6), Active: true,
	}

	// Shop 30 belongs to another mall; the request must not even mention it.
	_, err := c.FetchShops(context.Background(), "tok", testUniverse(), shopAdmin, []int{6, 30})
	if err != nil {
		t.Fatalf("FetchShops: %v", err)
	}
	if gotPath != "/shops" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "ids=6" {
		t.Errorf("query = %q, want ids=6", gotQuery)
	}
}

func TestFetchShopsRejectsFullyOutOfScopeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never reach the backend")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	shopAdmin := &profiledomain.Profile{
		Username: "shop6", Role: profiledomain.RoleShopAdmin,
		MallID: intPtr(6), ShopID: intPtr(6), Active: true,
	}

	if _, err := c.FetchShops(context.Background(), "tok", testUniverse(), shopAdmin, []int{30, 31}); err == nil {
		t.Error("fetching only out-of-scope shops should error")
	}
	if _, err := c.FetchMalls(context.Background(), "tok", testUniverse(), nil, nil); err == nil {
		t.Error("nil profile should have no accessible malls")
	}
}

func TestSubmitMutation(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	body, err := c.SubmitMutation(context.Background(), "tok", "campaigns", []byte(`{"name":"sale"}`))
	if err != nil {
		t.Fatalf("SubmitMutation: %v", err)
	}
	if string(body) != `{"id":1}` {
		t.Errorf("body = %q", body)
	}
	if gotMethod != http.MethodPost || gotContentType != "application/json" {
		t.Errorf("method = %q, content-type = %q", gotMethod, gotContentType)
	}
	if gotBody != `{"name":"sale"}` {
		t.Errorf("request body = %q", gotBody)
	}
}

func TestNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.FetchList(context.Background(), "tok", "shops", nil); err == nil {
		t.Error("403 response should surface as an error")
	}
}
