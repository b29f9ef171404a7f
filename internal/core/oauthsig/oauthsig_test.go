package oauthsig

import (
	"strings"
	"testing"
)

// Known vector from the classic OAuth 1.0a signing walkthrough published by
// Twitter; it exercises space encoding, sorting, and the composite key
func TestSignKnownVector(t *testing.T) {
	params := map[string]string{
		"status":                 "Hello Ladies + Gentlemen, a signed OAuth request!",
		"include_entities":       "true",
		"oauth_consumer_key":     "xvz1evFS4wEEPTGEFPHBog",
		"oauth_nonce":            "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg",
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"oauth_version":          "1.0",
	}
	got := Sign(
		"POST",
		"https://api.twitter.com/1/statuses/update.json",
		params,
		"kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		"LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	)
	if want := "tnnArxj06cWHq44gCs1OSKk/jLY="; got != want {
		t.Fatalf("Sign = %q, want %q", got, want)
	}
}

func TestPercentEncode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"abcABC123", "abcABC123"},
		{"-._~", "-._~"},
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"http://example.com/?a=b", "http%3A%2F%2Fexample.com%2F%3Fa%3Db"},
		{"☃", "%E2%98%83"},
		{"", ""},
	}
	for _, c := range cases {
		if got := PercentEncode(c.in); got != c.want {
			t.Fatalf("PercentEncode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSignDeterministicAndOrderIndependent(t *testing.T) {
	// two maps built in different insertion orders with identical pairs
	a := map[string]string{}
	a["oauth_consumer_key"] = "key"
	a["oauth_nonce"] = "abc"
	a["oauth_timestamp"] = "1700000000"
	b := map[string]string{}
	b["oauth_timestamp"] = "1700000000"
	b["oauth_nonce"] = "abc"
	b["oauth_consumer_key"] = "key"

	s1 := Sign("GET", "https://example.com/oauth", a, "cs", "ts")
	s2 := Sign("GET", "https://example.com/oauth", b, "cs", "ts")
	if s1 != s2 {
		t.Fatalf("signature depends on map construction order: %q vs %q", s1, s2)
	}
	// re-invocation with identical inputs is stable
	if s3 := Sign("GET", "https://example.com/oauth", a, "cs", "ts"); s3 != s1 {
		t.Fatalf("signature not deterministic: %q vs %q", s3, s1)
	}
}

func TestSignSensitivity(t *testing.T) {
	base := map[string]string{"oauth_nonce": "abc", "oauth_timestamp": "1700000000"}
	ref := Sign("GET", "https://example.com/oauth", base, "cs", "ts")

	changed := map[string]string{"oauth_nonce": "abd", "oauth_timestamp": "1700000000"}
	if Sign("GET", "https://example.com/oauth", changed, "cs", "ts") == ref {
		t.Fatalf("changing a parameter value did not change the signature")
	}
	if Sign("POST", "https://example.com/oauth", base, "cs", "ts") == ref {
		t.Fatalf("changing the method did not change the signature")
	}
	if Sign("GET", "https://example.com/oauth", base, "cs", "other") == ref {
		t.Fatalf("changing the token secret did not change the signature")
	}
	// empty token secret still contributes the trailing & to the key
	if Sign("GET", "https://example.com/oauth", base, "cs", "") == ref {
		t.Fatalf("empty token secret should differ from %q", "ts")
	}
}

func TestBaseStringShape(t *testing.T) {
	got := BaseString("get", "https://example.com/oauth", map[string]string{"b": "2", "a": "1"})
	want := "GET&https%3A%2F%2Fexample.com%2Foauth&a%3D1%26b%3D2"
	if got != want {
		t.Fatalf("BaseString = %q, want %q", got, want)
	}
}

func TestAuthParamsRequestTokenLeg(t *testing.T) {
	p := AuthParams{
		ConsumerKey: "ck",
		Callback:    "http://127.0.0.1:8787/oauth/callback",
	}.Build()

	if p["oauth_callback"] == "" {
		t.Fatalf("request-token leg must carry oauth_callback")
	}
	if _, ok := p["oauth_token"]; ok {
		t.Fatalf("request-token leg must not carry oauth_token")
	}
	if p["oauth_signature_method"] != SignatureMethod || p["oauth_version"] != Version {
		t.Fatalf("fixed fields wrong: %+v", p)
	}
	if len(p["oauth_nonce"]) != 32 { // 16 bytes hex
		t.Fatalf("nonce length = %d, want 32", len(p["oauth_nonce"]))
	}
	if p["oauth_timestamp"] == "" {
		t.Fatalf("timestamp missing")
	}
}

func TestAuthParamsAccessTokenLeg(t *testing.T) {
	p := AuthParams{
		ConsumerKey: "ck",
		Callback:    "http://127.0.0.1:8787/oauth/callback",
		Token:       "reqtok",
		Verifier:    "ver123",
		Nonce:       "feedfacefeedfacefeedfacefeedface",
		Timestamp:   "1700000000",
	}.Build()

	if _, ok := p["oauth_callback"]; ok {
		t.Fatalf("callback must be absent once a token is present")
	}
	if p["oauth_token"] != "reqtok" || p["oauth_verifier"] != "ver123" {
		t.Fatalf("token/verifier missing: %+v", p)
	}
	if p["oauth_nonce"] != "feedfacefeedfacefeedfacefeedface" || p["oauth_timestamp"] != "1700000000" {
		t.Fatalf("seams not honored: %+v", p)
	}
}

func TestNonceIsFresh(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		n := Nonce()
		if len(n) != 32 || strings.ToLower(n) != n {
			t.Fatalf("nonce %q not 16 lowercase hex bytes", n)
		}
		if seen[n] {
			t.Fatalf("nonce repeated: %q", n)
		}
		seen[n] = true
	}
}
