package resolve

import "testing"

func TestResolveLiteralIPv4(t *testing.T) {
	ip, err := Resolve("127.0.0.1")
	if err != nil {
		t.Fatalf("Resolve(127.0.0.1) error: %v", err)
	}
	if ip.String() != "127.0.0.1" {
		t.Fatalf("Resolve(127.0.0.1) = %s", ip)
	}
}

func TestResolveLiteralIPv6(t *testing.T) {
	ip, err := Resolve("::1")
	if err != nil {
		t.Fatalf("Resolve(::1) error: %v", err)
	}
	if ip.String() != "::1" {
		t.Fatalf("Resolve(::1) = %s", ip)
	}
}

// localhost has no nameserver zone; it lives in /etc/hosts (or the
// platform's equivalent), so Resolve must fall back to the system resolver
// when the direct DNS query can't answer for it.
func TestResolveLocalhostFallsBackToSystemResolver(t *testing.T) {
	ip, err := Resolve("localhost")
	if err != nil {
		t.Fatalf("Resolve(localhost) error: %v", err)
	}
	if !ip.IsLoopback() {
		t.Fatalf("Resolve(localhost) = %s, want a loopback address", ip)
	}
}
