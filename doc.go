// Package identity provides stateless bearer-token authentication primitives:
// bcrypt credential hashing, JWT issuance and validation, a per-request token
// middleware, and an account lifecycle service backed by Bun repositories.
//
// Account lifecycle:
//   - Accounts carry an AccountStatus field that is persisted via Bun. An
//     account is created active and can only move to withdrawn, which is a
//     terminal soft-delete state. Withdrawn rows keep their unique account id
//     so the external identifier can never be reused.
//   - AccountStateMachine centralizes the transition graph, timestamp handling,
//     hooks, and persistence. Invoke Transition with ActorRef metadata whenever
//     an account changes state.
//
// Tokens:
//   - TokenService issues HS256 JWTs bound to a single process-wide signing
//     key. Validation is uniform: any failure (bad signature, expired token,
//     malformed input) surfaces as ErrTokenInvalid so callers cannot probe for
//     the cause.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the lifecycle
//     service and the state machine to describe signup, login, and withdrawal
//     events. Sinks run best-effort (errors are logged) so you can forward to
//     a database or queue without blocking authentication.
package identity
