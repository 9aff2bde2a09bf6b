// Package costs converts token counts into USD amounts.
//
// Pricing is a single configured rate per 1K tokens. The calculator is
// used twice per request: once with the token estimate for the advisory
// budget check, and once with the provider's actual token count when
// recording usage. Pricing can be swapped at runtime (config hot reload)
// behind a read-write lock.
package costs
