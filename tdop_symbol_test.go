package xpquery

import "testing"

func TestRegistryRegisterRequiresAlphabet(t *testing.T) {
	r := NewRegistry([]string{"+"})
	if _, err := r.Register("*"); err == nil {
		t.Fatal("expected error registering a symbol outside the declared alphabet")
	}
	if _, err := r.Register("+"); err != nil {
		t.Fatalf("unexpected error registering a declared symbol: %v", err)
	}
}

func TestRegistryLBPOnlyRaised(t *testing.T) {
	r := NewRegistry([]string{"+"})
	if _, err := r.Infix("+", 10); err != nil {
		t.Fatal(err)
	}
	kind, _ := r.Register("+", WithLBP(5))
	if kind.LBP != 10 {
		t.Fatalf("LBP lowered: got %d, want 10", kind.LBP)
	}
	kind, _ = r.Register("+", WithLBP(20))
	if kind.LBP != 20 {
		t.Fatalf("LBP did not raise: got %d, want 20", kind.LBP)
	}
}

func TestRegistryBuildFreezesAndDetectsMissing(t *testing.T) {
	r := NewRegistry([]string{"+", "-"})
	if _, err := r.Infix("+", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Build(); err == nil {
		t.Fatal("expected build to fail: \"-\" was never registered")
	}
	if _, err := r.Infix("-", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Build(); err != nil {
		t.Fatalf("unexpected error on build: %v", err)
	}
	if _, err := r.Register("+", WithLBP(99)); err == nil {
		t.Fatal("expected registration to fail after build() freezes the registry")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry([]string{"+", "plus"})
	if _, err := r.Infix("+", 10); err != nil {
		t.Fatal(err)
	}
	dup, err := r.Duplicate("+", "plus")
	if err != nil {
		t.Fatal(err)
	}
	if dup.LBP != 10 || dup.Led == nil {
		t.Fatal("duplicate did not inherit LBP/Led from source symbol")
	}
	if dup.Symbol != "plus" {
		t.Fatalf("duplicate kept wrong symbol: %q", dup.Symbol)
	}
}

func TestLabelSetIs(t *testing.T) {
	set := NewLabel(LabelOperator, LabelFunction)
	if !set.Is(LabelOperator) || !set.Is(LabelFunction) {
		t.Fatal("LabelSet.Is should match any member")
	}
	if set.Is(LabelAxis) {
		t.Fatal("LabelSet.Is matched a label that was never added")
	}
}
