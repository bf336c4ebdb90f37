package ast

import "testing"

func TestNameEquality(t *testing.T) {
	a := Name{Text: "Base"}
	b := Name{Text: "BASE"}
	c := Name{Text: "other"}

	if !a.Equal(b) {
		t.Errorf("expected %q and %q to be equal ignoring case", a, b)
	}
	if a.Equal(c) {
		t.Errorf("did not expect %q and %q to be equal", a, c)
	}
	if a.Key() != "base" {
		t.Errorf("Key() = %q, want %q", a.Key(), "base")
	}
}

func TestLocationLess(t *testing.T) {
	a := Location{SourceFile: "a.bos", StartLine: 1, StartColumn: 1}
	b := Location{SourceFile: "a.bos", StartLine: 2, StartColumn: 1}
	c := Location{SourceFile: "b.bos", StartLine: 1, StartColumn: 1}

	if !a.Less(b) {
		t.Errorf("expected %v < %v", a, b)
	}
	if !b.Less(c) {
		t.Errorf("expected %v < %v", b, c)
	}
	if c.Less(a) {
		t.Errorf("did not expect %v < %v", c, a)
	}
}

func TestConstantInt32ValueNormal(t *testing.T) {
	c := &Constant{Raw: 42, Scale: ScaleNormal}
	v, rebased, err := c.Int32Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 || rebased {
		t.Errorf("got (%d, %v), want (42, false)", v, rebased)
	}
}

func TestConstantInt32ValueLinearScale(t *testing.T) {
	c := &Constant{Raw: 1.0, Scale: ScaleLinear}
	v, _, err := c.Int32Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 65536 {
		t.Errorf("got %d, want 65536", v)
	}
}

func TestConstantInt32ValueAngularScale(t *testing.T) {
	c := &Constant{Raw: 10.0, Scale: ScaleAngular}
	v, _, err := c.Int32Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1820 {
		t.Errorf("got %d, want 1820", v)
	}
}

func TestConstantInt32ValueRebasesLargeUnsigned(t *testing.T) {
	// 0xFFFFFFFF = 4294967295, should rebase to -1
	c := &Constant{Raw: 4294967295, Scale: ScaleNormal}
	v, rebased, err := c.Int32Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -1 || !rebased {
		t.Errorf("got (%d, %v), want (-1, true)", v, rebased)
	}
}

func TestConstantInt32ValueOverflow(t *testing.T) {
	c := &Constant{Raw: 4294967296, Scale: ScaleNormal} // 2^32, one past the valid range
	if _, _, err := c.Int32Value(); err == nil {
		t.Error("expected overflow error, got nil")
	}
}

func TestConstantInt32ValueUnderflow(t *testing.T) {
	c := &Constant{Raw: -2147483649, Scale: ScaleNormal} // -(2^31)-1
	if _, _, err := c.Int32Value(); err == nil {
		t.Error("expected underflow error, got nil")
	}
}

func TestParseAxis(t *testing.T) {
	cases := map[string]Axis{"x-axis": AxisX, "Y": AxisY, "zzz": AxisZ}
	for in, want := range cases {
		got, ok := ParseAxis(in)
		if !ok || got != want {
			t.Errorf("ParseAxis(%q) = (%v, %v), want (%v, true)", in, got, ok, want)
		}
	}
	if _, ok := ParseAxis("w"); ok {
		t.Error("expected ParseAxis(\"w\") to fail")
	}
}

func TestFoldBinaryArithmetic(t *testing.T) {
	lhs := &Constant{Raw: 3, Scale: ScaleNormal}
	rhs := &Constant{Raw: 4, Scale: ScaleNormal}
	sum, ok := FoldBinary(OpAdd, lhs, rhs, Location{})
	if !ok || sum.NumberValue() != 7 {
		t.Errorf("3+4 folded to %v (ok=%v), want 7", sum, ok)
	}
}

func TestFoldBinaryComparisonReturnsNormalScale(t *testing.T) {
	lhs := &Constant{Raw: 3, Scale: ScaleLinear}
	rhs := &Constant{Raw: 4, Scale: ScaleNormal}
	result, ok := FoldBinary(OpCompLess, lhs, rhs, Location{})
	if !ok {
		t.Fatal("expected fold to succeed")
	}
	if result.Scale != ScaleNormal {
		t.Errorf("folded comparison scale = %v, want ScaleNormal", result.Scale)
	}
	if result.NumberValue() != 0 {
		// 3*65536 is not < 4
		t.Errorf("got %v, want 0", result.NumberValue())
	}
}

func TestFoldUnaryLogicalNot(t *testing.T) {
	zero := &Constant{Raw: 0, Scale: ScaleNormal}
	result, ok := FoldUnary(OpLogicalNot, zero, Location{})
	if !ok || result.NumberValue() != 1 {
		t.Errorf("!0 folded to %v (ok=%v), want 1", result, ok)
	}
}
