// Package ports defines the interfaces between the editor core and its
// adapters, plus a reusable contract test suite for store implementations.
package ports
