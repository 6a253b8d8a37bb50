// Package contentstore holds the pieces shared by every ports.ContentStore
// adapter: the snapshot stream handed to subscribers and the circuit breaker
// guard that keeps a failing store from being hammered by resubscribe loops.
//
// Concrete stores live in the memory, firestore and mongo subpackages.
package contentstore
