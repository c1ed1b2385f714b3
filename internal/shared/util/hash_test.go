package util

import "testing"

func TestContentDigest(t *testing.T) {
	got := ContentDigest([]byte("abc"))
	if got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected digest %s", got)
	}
	if ContentDigest(nil) != ContentDigest([]byte{}) {
		t.Fatalf("nil and empty should hash the same")
	}
}
