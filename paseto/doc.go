// Package paseto implements the subset of the v4.public signed-token format
// needed to authenticate an update body as it streams off the network.
//
// A token carries a message and an Ed25519 signature. The signature covers
// the pre-authentication encoding of four pieces: the "v4.public." header,
// the message, an empty footer and an implicit assertion. The implicit
// assertion is not part of the token; it is the update body itself, fed to a
// [Session] chunk by chunk with [Session.UpdateImplicit]. Only after exactly
// the declared number of implicit bytes has been consumed can [Session.Verify]
// finalize the signature check and release the message.
//
// Footers, other versions and other purposes are not supported.
package paseto
