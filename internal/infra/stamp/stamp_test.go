package stamp

import (
	"strings"
	"testing"
)

func TestVerifyURL(t *testing.T) {
	got := VerifyURL("https://docs.example.test", "abc-123")
	want := "https://docs.example.test/verify?token=abc-123"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestVerifyURL_EscapesToken(t *testing.T) {
	got := VerifyURL("https://docs.example.test", "a b&c")
	if strings.Contains(got, " ") || strings.Contains(got, "&c") {
		t.Fatalf("token not escaped: %q", got)
	}
}
