package core

import "errors"

// Error categories. Every failure out of Setup, Run, or a node operation
// wraps exactly one of these, with the offending node name and resource
// kind in the message. All are fatal to the in-progress call: an invalid
// topology or an unsatisfiable request is a caller defect, not a transient
// condition, so there is no retry or partial-result path.
var (
	// ErrConfiguration covers topology and call-ordering defects: unknown
	// predecessor references, dead ends in a traversal, Run before a
	// completed Setup, inputs fed to a source, or demands placed on a sink.
	ErrConfiguration = errors.New("plant configuration invalid")

	// ErrPhysicalConstraint covers unsatisfiable physics: missing or
	// wrong-phase inputs, requests above a transform's rated capacity,
	// conditioning below ambient.
	ErrPhysicalConstraint = errors.New("physical constraint violated")

	// ErrNumeric covers undefined derivations: zero pressure, molar mass,
	// or density making a volume or gas-law solve meaningless.
	ErrNumeric = errors.New("numeric domain error")
)
