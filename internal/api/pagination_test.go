package api

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimitOffset_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/appointments", nil)
	limit, offset := ParseLimitOffset(r)
	if limit != 20 || offset != 0 {
		t.Errorf("got limit=%d offset=%d, want 20,0", limit, offset)
	}
}

func TestParseLimitOffset_Values(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/appointments?limit=50&offset=10", nil)
	limit, offset := ParseLimitOffset(r)
	if limit != 50 || offset != 10 {
		t.Errorf("got limit=%d offset=%d, want 50,10", limit, offset)
	}
}

func TestParseLimitOffset_CapAndInvalid(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/appointments?limit=9999&offset=-2", nil)
	limit, offset := ParseLimitOffset(r)
	if limit != 100 || offset != 0 {
		t.Errorf("got limit=%d offset=%d, want 100,0", limit, offset)
	}
	r = httptest.NewRequest("GET", "/api/appointments?limit=abc&offset=xyz", nil)
	limit, offset = ParseLimitOffset(r)
	if limit != 20 || offset != 0 {
		t.Errorf("got limit=%d offset=%d, want 20,0", limit, offset)
	}
}
