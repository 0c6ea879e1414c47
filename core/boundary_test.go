package core

import (
	"errors"
	"testing"
)

func testDeposit(f Factory) *Deposit {
	return NewDeposit("test_deposit",
		map[string]float64{"gravel": 0.95, "water": 0.05},
		PhaseSolid, testEnv.TemperatureK, testEnv.PressurePa, f)
}

func TestDeposit_RateFromLimitingKind(t *testing.T) {
	f := testFactory()
	dep := testDeposit(f)

	req, err := dep.Request(100, Flow{
		"water": newResource(t, f, "water", 5, 210, 600, PhaseSolid),
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req != nil {
		t.Errorf("deposit forwarded a request upstream: %v", req)
	}
	if !dep.RateResolved() {
		t.Fatalf("rate not resolved after request")
	}
	if !relClose(dep.Rate(), 1) {
		t.Errorf("rate = %g kg/s, want 1", dep.Rate())
	}

	out, err := dep.Run(100, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !relClose(out["gravel"].Mass, 95) || !relClose(out["water"].Mass, 5) {
		t.Errorf("emitted %g kg gravel, %g kg water, want 95 and 5",
			out["gravel"].Mass, out["water"].Mass)
	}
}

func TestDeposit_UnknownKindRequested(t *testing.T) {
	f := testFactory()
	dep := testDeposit(f)
	_, err := dep.Request(100, Flow{
		"oxygen": newResource(t, f, "oxygen", 1, 210, 600, PhaseGas),
	})
	if !errors.Is(err, ErrPhysicalConstraint) {
		t.Fatalf("err = %v, want ErrPhysicalConstraint", err)
	}
}

func TestDeposit_RunBeforeRateResolved(t *testing.T) {
	dep := testDeposit(testFactory())
	if _, err := dep.Run(100, nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestDeposit_RejectsInputMaterial(t *testing.T) {
	f := testFactory()
	dep := testDeposit(f)
	if _, err := dep.Request(100, Flow{}); err != nil {
		t.Fatalf("Request: %v", err)
	}
	_, err := dep.Run(100, Flow{
		"gravel": newResource(t, f, "gravel", 1, 210, 600, PhaseSolid),
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestDeposit_EmptyDemandResolvesToZeroRate(t *testing.T) {
	dep := testDeposit(testFactory())
	if _, err := dep.Request(100, Flow{}); err != nil {
		t.Fatalf("Request: %v", err)
	}
	out, err := dep.Run(100, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.TotalMass() != 0 {
		t.Errorf("emitted %g kg from an undemanded deposit, want 0", out.TotalMass())
	}
}

func testDepot(f Factory, env Environment) *Depot {
	return NewDepot("test_depot",
		map[string]float64{"oxygen": 0.75, "hydrogen": 0.25},
		PhaseLiquid, f, env, DepotOptions{})
}

func TestDepot_RequestSplitsTargetByComposition(t *testing.T) {
	f := testFactory()
	depot := testDepot(f, testEnv)
	depot.SetTargetMass(100)

	req, err := depot.Request(100, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !relClose(req["oxygen"].Mass, 75) || !relClose(req["hydrogen"].Mass, 25) {
		t.Errorf("requested %g kg oxygen, %g kg hydrogen, want 75 and 25",
			req["oxygen"].Mass, req["hydrogen"].Mass)
	}
}

func TestDepot_InferenceIsOneShot(t *testing.T) {
	depot := testDepot(testFactory(), testEnv)
	depot.SetTargetMass(100)

	if _, err := depot.Request(100, nil); err != nil {
		t.Fatalf("first Request: %v", err)
	}
	if _, err := depot.Request(100, nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("second Request err = %v, want ErrConfiguration", err)
	}
	depot.ResetInference()
	if _, err := depot.Request(100, nil); err != nil {
		t.Fatalf("Request after reset: %v", err)
	}
}

func TestDepot_RejectsIncomingRequests(t *testing.T) {
	f := testFactory()
	depot := testDepot(f, testEnv)
	depot.SetTargetMass(100)
	_, err := depot.Request(100, Flow{
		"oxygen": newResource(t, f, "oxygen", 1, 210, 600, PhaseLiquid),
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestDepot_StoresLimitingBatchAndKeepsExcess(t *testing.T) {
	f := testFactory()
	depot := testDepot(f, testEnv)
	depot.SetTargetMass(100)

	out, err := depot.Run(100, Flow{
		"oxygen":   newResource(t, f, "oxygen", 75, 90, 101325, PhaseLiquid),
		"hydrogen": newResource(t, f, "hydrogen", 30, 20, 101325, PhaseLiquid),
		"gravel":   newResource(t, f, "gravel", 4, 210, 600, PhaseSolid),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != nil {
		t.Errorf("depot forwarded material downstream: %v", out)
	}

	stored := depot.Stored()
	if !relClose(stored["oxygen"].Mass, 75) || !relClose(stored["hydrogen"].Mass, 25) {
		t.Errorf("stored %g kg oxygen, %g kg hydrogen, want 75 and 25",
			stored["oxygen"].Mass, stored["hydrogen"].Mass)
	}

	excess := depot.Excess()
	if !relClose(excess["hydrogen"].Mass, 5) {
		t.Errorf("hydrogen excess = %g kg, want 5", excess["hydrogen"].Mass)
	}
	if excess["gravel"] == nil || excess["gravel"].Mass != 4 {
		t.Errorf("off-composition gravel not routed to excess: %v", excess["gravel"])
	}
	if _, ok := excess["oxygen"]; ok {
		t.Errorf("fully stored oxygen still reported as excess")
	}
}

func TestDepot_MissingCompositionKind(t *testing.T) {
	f := testFactory()
	depot := testDepot(f, testEnv)
	depot.SetTargetMass(100)

	_, err := depot.Run(100, Flow{
		"oxygen": newResource(t, f, "oxygen", 75, 90, 101325, PhaseLiquid),
	})
	if !errors.Is(err, ErrPhysicalConstraint) {
		t.Fatalf("err = %v, want ErrPhysicalConstraint", err)
	}
}

func TestDepot_WrongPhaseRejected(t *testing.T) {
	f := testFactory()
	depot := testDepot(f, testEnv)
	depot.SetTargetMass(100)

	_, err := depot.Run(100, Flow{
		"oxygen":   newResource(t, f, "oxygen", 75, 210, 600, PhaseGas),
		"hydrogen": newResource(t, f, "hydrogen", 25, 20, 101325, PhaseLiquid),
	})
	if !errors.Is(err, ErrPhysicalConstraint) {
		t.Fatalf("err = %v, want ErrPhysicalConstraint", err)
	}
}
