package indexexpr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlaneDimension(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want int
	}{
		{"axial slice", New(Index(3), Full(), Full()), 0},
		{"coronal slice", New(Full(), Index(7), Full()), 1},
		{"sagittal slab", New(Full(), Full(), Range(2, 5)), 2},
		{"all full", New(Full(), Full()), -1},
		{"empty", New(), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.PlaneDimension(); got != tt.want {
				t.Errorf("PlaneDimension() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegion(t *testing.T) {
	start, count, err := New(Index(2), Range(1, 3)).Region([]int{4, 5, 1})
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if diff := cmp.Diff([]int{2, 1}, start); diff != "" {
		t.Errorf("start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, count); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionOutOfBounds(t *testing.T) {
	tests := []struct {
		name  string
		expr  Expr
		shape []int
	}{
		{"index past end", New(Index(4)), []int{4}},
		{"negative index", New(Index(-1)), []int{4}},
		{"range past end", New(Range(2, 6)), []int{4}},
		{"inverted range", New(Range(3, 1)), []int{4}},
		{"too many selectors", New(Full(), Full()), []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.expr.Region(tt.shape); !errors.Is(err, ErrBounds) {
				t.Errorf("expected ErrBounds, got %v", err)
			}
		})
	}
}

func TestSelectedShape(t *testing.T) {
	tests := []struct {
		name  string
		expr  Expr
		shape []int
		want  []int
	}{
		{"slice drops plane", New(Index(1), Full(), Full()), []int{4, 5, 6}, []int{5, 6}},
		{"slab keeps width", New(Full(), Range(1, 4), Full()), []int{4, 5, 6}, []int{4, 3, 6}},
		{"short expression", New(Full(), Index(2)), []int{4, 5, 6}, []int{4, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.expr.SelectedShape(tt.shape)
			if err != nil {
				t.Fatalf("SelectedShape failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := New(Full(), Range(2, 4), Index(3)).String(); got != "[:, 2:4, 3]" {
		t.Errorf("String() = %q", got)
	}
}

func TestRefResolve(t *testing.T) {
	expr := New(Full(), Range(0, 2), Index(5))

	live := FromExpr(expr)
	if live.Encoded() {
		t.Error("FromExpr should not be encoded")
	}

	b, err := live.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	ref := FromBytes(b)
	if !ref.Encoded() {
		t.Error("FromBytes should be encoded")
	}

	got, err := ref.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if diff := cmp.Diff(expr, got); diff != "" {
		t.Errorf("decoded expression mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := FromBytes([]byte{0xc1}).Resolve(); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}

	// A well-formed payload carrying an unknown selector kind.
	b, err := New(Selector{Kind: 9}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Decode(b); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for unknown kind, got %v", err)
	}
}
