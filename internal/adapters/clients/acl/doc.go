// Package acl is the anti-corruption layer between the characters backend and
// the domain.
//
// Backend DTOs stay unexported inside this package. Every failure that leaves
// it is a domain error:
//
//   - 404 Not Found → [domain.ErrNotFound]
//   - 400/409/422 → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 429, 5xx, transport errors, undecodable bodies → [domain.ErrUnavailable]
//
// Client-level errors ([clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded])
// are also reported as [domain.ErrUnavailable].
//
// [CharacterClient] is the one adapter; [BaseAdapter] holds the request and
// error-mapping plumbing it embeds.
package acl
