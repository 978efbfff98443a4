// Package fixture discovers conformance fixtures and parses their directive
// blocks into test cases.
//
// # Directive Block
//
// A fixture may start with a comment block:
//
//	/* :name: always_comb_basic
//	:description: always_comb with a single assignment
//	:tags: 9.2.2.2 always_comb
//	:should_fail_because: assignment to a net
//	*/
//
// Only :description:, :should_fail_because: and :tags: are interpreted;
// other lines in the block are ignored.
//
// # Layout
//
// Fixtures live under a root, optionally grouped into catalog chapters
// (chapter-5 ... chapter-26) plus a generic directory. Registry preserves
// discovery order, which is the order tests run in.
package fixture
