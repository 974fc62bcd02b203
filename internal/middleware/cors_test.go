package middleware

import "testing"

func TestCORS_DefaultsToDevOrigin(t *testing.T) {
	opts := CORS(nil)
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("expected dev-origin default, got %v", opts.AllowedOrigins)
	}
	if !opts.AllowCredentials {
		t.Fatal("expected credentials allowed for a concrete origin")
	}
}

func TestCORS_WildcardDisablesCredentials(t *testing.T) {
	opts := CORS([]string{"*"})
	if opts.AllowCredentials {
		t.Fatal("wildcard origin must not allow credentials")
	}
}

func TestCORS_ExposesQuotaHeaders(t *testing.T) {
	opts := CORS([]string{"https://app.example"})
	found := false
	for _, h := range opts.ExposedHeaders {
		if h == "X-RateLimit-User-Remaining" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected X-RateLimit-User-Remaining in exposed headers, got %v", opts.ExposedHeaders)
	}
}
