// Package registry implements the sent-email registry: the durable link
// between a tracking id and the logical message it was attached to.
//
// The service layer contains the idempotency and validation rules for send
// reports. It depends on the Repository interface defined in this package and
// should never import from api/. The postgres implementation lives in
// repository/postgres.
package registry
