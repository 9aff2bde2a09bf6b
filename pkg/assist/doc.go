// Package assist defines the domain types for Beacon's AI assist pipeline.
//
// # Overview
//
// The assist package contains the value types exchanged between the HTTP
// layer and the gating pipeline: the immutable Request submitted by an
// authenticated family member, the Fingerprint used for content-addressed
// response caching, and the Result returned to the caller.
//
// # Policy Equivalence
//
// Two requests are policy-equivalent (and share a cache entry) when their
// prompt, context, category, effective max-tokens, and effective temperature
// are all equal. Caller identity deliberately does not participate: the same
// question from two members of the same deployment should hit the same
// cached answer.
//
// # Fingerprints
//
// Fingerprints are SHA-256 digests over a stable serialization of the
// policy-equivalence fields. Equal requests always produce equal
// fingerprints; any single-field difference changes the digest.
package assist
