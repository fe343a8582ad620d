/*
Package expr evaluates "{{ path }}" template references against a runtime
context.

A template that is exactly one reference preserves the native type of the
resolved value; a template mixing references with other text interpolates each
reference into a string. Path resolution follows dot-separated keys through
nested mappings and sequences and never fails hard on a missing key.

This package has no dependencies beyond the Go standard library: it sits at
the bottom of the dependency graph and is called on every render and on every
action step.
*/
package expr
