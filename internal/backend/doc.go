// Package backend holds the compilers the harness can drive out of the box.
//
// reference is a rich-shape placeholder that tokenizes the source and checks
// block and bracket balance. lint exposes the same checks through the simple
// shape only. exec runs an external compiler command on each fixture.
package backend
