// Package auth implements the administrator identity flow: a two phase,
// email verified signup, password login, and JWT bearer tokens for every
// protected request.
//
// Registration lifecycle:
//   - StartRegistrationHandler writes a PendingAdmin carrying a hashed
//     password plus a short lived one-time code, and hands the code to a
//     CodeDispatcher. The pending write is compensated when dispatch fails
//     so the email address stays retryable.
//   - ConfirmRegistrationHandler promotes a PendingAdmin into a durable
//     Admin record when email, code, and expiry all match, and removes the
//     pending row in the same transaction. Wrong code, wrong email, and
//     expired code are indistinguishable to the caller.
//
// Tokens:
//   - TokenService mints and validates HS256 tokens binding the admin id.
//     Possession of a valid, unexpired token is sufficient authorization;
//     there is no server side revocation.
//   - middleware/jwtware gates protected routes, attaching the resolved
//     claims to both the router locals and the request context.
package auth
