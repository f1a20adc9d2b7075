package partition

import "github.com/gomlx/exceptions"

// Run drives the full pass pipeline in order: build, early annotation,
// structural merges, repeated-block discovery, cleanup.
// Every pass after Build may panic with a *FatalError on an invariant
// violation; Run recovers at this single boundary and converts it to a
// returned error, so callers never need to reason about panics themselves.
func (s *Snapshot) Run() error {
	return exceptions.TryCatch[error](func() {
		s.Build()
		s.earlyAvoids()
		s.earlyRegroup()
		s.collectLHF()
		s.fuseRemnantsExtended()
		s.identifyUniques()
		s.mergeUniques()
		s.mergeTriangles()
		s.cleanUpUniques()
	})
}
