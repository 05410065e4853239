package cache

import "testing"

func TestIDOfIsDeterministic(t *testing.T) {
	a := IDOf("https://my-server.com/config.xml")
	b := IDOf("https://my-server.com/config.xml")
	if a != b {
		t.Fatalf("IDOf not deterministic: %q != %q", a, b)
	}
}

func TestIDOfDistinguishesURIs(t *testing.T) {
	a := IDOf("https://my-server.com/config.xml")
	b := IDOf("https://my-server.com/other.xml")
	if a == b {
		t.Fatalf("distinct URIs collided: %q", a)
	}
}
