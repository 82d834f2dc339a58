package te_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/te"
)

func sym(label, want string) te.Expr {
	return te.Pred(label, func(d te.Data) bool {
		return d["sample"] == want
	})
}

func TestRepeatInvalidBoundsPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r != te.ErrInvalidRepeatBounds {
			t.Fatalf("recover() = %v, want ErrInvalidRepeatBounds", r)
		}
	}()
	te.Repeat(sym("a", "a"), 3, 1)
}

func TestFirstofEmptyPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r != te.ErrEmptyFirstof {
			t.Fatalf("recover() = %v, want ErrEmptyFirstof", r)
		}
	}()
	te.Firstof()
}

func TestLabelsComposeReadably(t *testing.T) {
	e := te.Concat(sym("a", "a"), sym("b", "b"))
	if e.Label() != "(a+b)" {
		t.Fatalf("Label() = %q", e.Label())
	}
}

func TestTEEvalSinglePredicate(t *testing.T) {
	e := sym("a", "a")
	if !te.TEEval(e, te.Data{"sample": "a"}) {
		t.Fatal("expected match")
	}
	if te.TEEval(e, te.Data{"sample": "z"}) {
		t.Fatal("expected no match")
	}
}

func TestInvertIsInvolution(t *testing.T) {
	e := sym("a", "a")
	inv := te.Invert(e)
	invInv := te.Invert(inv)

	for _, sample := range []string{"a", "z"} {
		got := te.TEEval(invInv, te.Data{"sample": sample})
		want := te.TEEval(e, te.Data{"sample": sample})
		if got != want {
			t.Fatalf("~~e(%q) = %v, want %v (= e(%q))", sample, got, want, sample)
		}
	}
}
