// Package operation provides the framework Chatwoot operations run on.
//
// An operation is addressed by resource and operation name and belongs to
// one of the Application, Client or Platform APIs. Each Definition pairs a
// parameter schema with a Handler; the Registry dispatches on the
// (resource, operation) key.
//
// The framework handles:
//   - Sequential per-item execution with optional continue-on-fail
//   - Normalization of handler results into output items
//   - The error taxonomy (API, validation, missing field, unsupported,
//     credentials, filter)
//   - Per-item outcome notifications for history and metrics
//
// Handlers never touch global state. Parameters, credentials and HTTP
// access arrive through the Host interface so every handler can be
// exercised against a fake.
package operation
