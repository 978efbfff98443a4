// Package harness runs conformance fixtures against a compiler backend and
// benchmarks compile latency.
//
// A Runner draws cases from a fixture.Registry and drives each one through a
// fresh backend instance wrapped in a fresh compiler.Adapter:
//
//	reg := fixture.NewRegistry()
//	if err := reg.LoadCatalog(root, fixture.DefaultChapters, fixture.DefaultGeneric); err != nil {
//		return err
//	}
//	r, err := harness.NewRunner(reg, factory)
//	if err != nil {
//		return err
//	}
//	sum, err := r.RunAll(ctx)
//
// # Outcomes
//
// Every case ends in exactly one Outcome:
//
//	pass           accepted, or rejected when :should_fail_because: is set
//	fail           the inverse of pass, or a host failure of the compile call
//	skip           the case carries a configured skip tag
//	error_compile  the fixture could not be read
//	error_runtime  the backend could not be created or initialized, or panicked
//
// # Snapshots
//
// Snapshot renders a Summary as canonical JSON without timings. Golden tests
// compare snapshots with AssertGolden.
package harness
