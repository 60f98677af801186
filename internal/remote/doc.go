// Package remote talks to the project-management backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Source interface): listing
//     drawings, documents, RFIs, forms, form submissions and photos for a
//     project, exchanging opaque storage keys for presigned download URLs,
//     and posting access-log events.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     bearer token and client instance id to every request and maps HTTP
//     failures to the sentinel errors in the common package.
//
// # Error Handling
//
// Callers match failures with errors.Is: common.ErrTokenExpired (401, or a
// locally expired JWT), common.ErrForbidden (403), common.ErrNotConnected
// (transport failure), common.ErrServerError (5xx) and common.ErrDecoding
// (malformed payload). Context cancellation is passed through untouched so
// the sync engine can tell a cancelled download from a dead network.
package remote
