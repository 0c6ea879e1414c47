package core

import (
	"errors"
	"testing"
)

func TestMergeFlows_DisjointKinds(t *testing.T) {
	f := testFactory()
	dst := Flow{"water": newResource(t, f, "water", 1, 275, 101325, PhaseLiquid)}
	src := Flow{"gravel": newResource(t, f, "gravel", 2, 210, 600, PhaseSolid)}

	if err := MergeFlows(dst, src); err != nil {
		t.Fatalf("MergeFlows: %v", err)
	}
	if len(dst) != 2 {
		t.Errorf("len(dst) = %d, want 2", len(dst))
	}
}

func TestMergeFlows_DuplicateKindFails(t *testing.T) {
	f := testFactory()
	dst := Flow{"water": newResource(t, f, "water", 1, 275, 101325, PhaseLiquid)}
	src := Flow{"water": newResource(t, f, "water", 2, 275, 101325, PhaseLiquid)}

	if err := MergeFlows(dst, src); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if dst["water"].Mass != 1 {
		t.Errorf("destination entry overwritten: mass = %g", dst["water"].Mass)
	}
}

func TestFlowKinds_Sorted(t *testing.T) {
	f := testFactory()
	flow := Flow{
		"water":  newResource(t, f, "water", 1, 275, 101325, PhaseLiquid),
		"alloy":  newResource(t, f, "alloy", 1, 210, 600, PhaseSolid),
		"gravel": newResource(t, f, "gravel", 1, 210, 600, PhaseSolid),
	}

	kinds := flow.Kinds()
	want := []string{"alloy", "gravel", "water"}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Fatalf("Kinds() = %v, want %v", kinds, want)
		}
	}
}
