package core

import "strings"

// MatchesVehicle reports whether a record belongs to the target vehicle.
// Identifiers are trimmed before comparison because the three record
// collections do not represent vehicle references uniformly; this is the
// single point where that inconsistency is absorbed, so every other
// component can assume exact-match semantics. An empty identifier on
// either side never matches.
func MatchesVehicle(recordVehicleID, targetVehicleID string) bool {
	a := strings.TrimSpace(recordVehicleID)
	b := strings.TrimSpace(targetVehicleID)
	if a == "" || b == "" {
		return false
	}
	return a == b
}
