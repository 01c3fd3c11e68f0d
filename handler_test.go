package htlc

import (
	"encoding/json"
	"testing"
)

func TestReadOptions(t *testing.T) {
	var opts Options
	if err := json.Unmarshal([]byte(`{"limits": {"max": 3}, "name": "swap"}`), &opts); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}

	var limits struct {
		Max int `json:"max"`
	}
	if err := opts.ReadOptions("limits", &limits); err != nil {
		t.Fatalf("read limits: %s", err)
	}
	if limits.Max != 3 {
		t.Fatalf("want 3, got %d", limits.Max)
	}

	// Missing keys leave the destination untouched.
	missing := "unchanged"
	if err := opts.ReadOptions("missing", &missing); err != nil {
		t.Fatalf("read missing: %s", err)
	}
	if missing != "unchanged" {
		t.Fatalf("missing key modified the destination: %q", missing)
	}

	var number int
	if err := opts.ReadOptions("name", &number); err == nil {
		t.Fatal("decoding a string into a number must fail")
	}
}

func TestIsValidPath(t *testing.T) {
	cases := map[string]bool{
		"aswap/initiate":    true,
		"/swaps/initiator":  true,
		"access/grant_role": true,
		"with space":        false,
		"colon:path":        false,
		"":                  false,
	}
	for path, want := range cases {
		if got := IsValidPath(path); got != want {
			t.Errorf("%q: want %v, got %v", path, want, got)
		}
	}
}
