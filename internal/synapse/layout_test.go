package synapse

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"

	"github.com/tjamescouch/abnn/alignsl"
)

// TestPackedIsGPUSafe asserts that Packed stays a 16-byte, all-scalar
// struct so it can be reinterpreted directly as a GPU buffer element;
// a future field addition that breaks this should fail here, not at
// shader-compile time. Graph and Interval are deliberately excluded:
// they are host-side containers, never bound directly to the GPU.
func TestPackedIsGPUSafe(t *testing.T) {
	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesSizes,
	}, ".")
	if err != nil {
		t.Fatalf("packages.Load: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected one package, got %d", len(pkgs))
	}
	pkg := pkgs[0]
	alignsl.Sizes = pkg.TypesSizes

	obj := pkg.Types.Scope().Lookup("Packed")
	if obj == nil {
		t.Fatal("Packed type not found in package scope")
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		t.Fatal("Packed is not a struct type")
	}
	if issues := alignsl.CheckStruct(st); len(issues) > 0 {
		t.Errorf("Packed is not GPU-safe: %v", issues)
	}
}
