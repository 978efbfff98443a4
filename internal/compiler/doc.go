// Package compiler defines the result model shared by every backend and the
// Adapter that normalizes a backend to one fixed capability surface.
//
// # Capability Negotiation
//
// A backend is any value. NewAdapter inspects it once and binds:
//
//   - ResultCompiler (CompileSource) or SimpleCompiler (Compile), required
//   - Initializer, Shutdowner, Describer, optional
//
// Missing optional operations become no-ops or DefaultInfo. A backend with
// neither compile shape fails construction with ErrNoCompatibleOperation.
//
// # Host Failures
//
// Adapter.Compile returns an error only for host-level failures (*HostError),
// including recovered panics. A source the backend rejects is reported as a
// CompileResult with Success=false.
package compiler
