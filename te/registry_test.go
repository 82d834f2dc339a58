package te_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/te"
)

func TestRegisterLookupUnregister(t *testing.T) {
	name := "test-registry-expr"
	t.Cleanup(func() { te.Unregister(name) })

	e := sym("a", "a")
	if err := te.Register(name, e); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := te.Register(name, e); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	got, ok := te.Lookup(name)
	if !ok || got != e {
		t.Fatalf("Lookup() = %v, %v; want %v, true", got, ok, e)
	}

	te.Unregister(name)
	if _, ok := te.Lookup(name); ok {
		t.Fatal("expected lookup to fail after Unregister")
	}
}
