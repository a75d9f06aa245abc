// Package gateway provides access to the remote recipe resource.
//
// [Gateway] is the four-operation contract (create, read all, update,
// delete) the rest of the client is written against. [HTTPClient] implements
// it over JSON/HTTP against the recipe API:
//
//	POST   /api/recipe        create
//	GET    /api/recipes       read all
//	PUT    /api/recipe/{id}   update (full replace)
//	DELETE /api/recipe/{id}   delete
//
// [Memory] is an in-process implementation with call counting, error
// injection and latency holds.
//
// # Errors
//
// Failures are classified as [TransientError] (network, timeout, 5xx, 429)
// or [RejectedError] (other 4xx). Use [IsTransient] and [IsRejected] to
// branch on them; errors.Is(err, ErrNotFound) matches 404 rejections.
// There is no retry at this layer.
package gateway
