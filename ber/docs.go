// Package ber reads and writes the subset of ASN.1 BER/DER used by the
// Kerberos v5 wire protocol: definite-length tag-length-value triples with
// single-octet identifiers.
//
// Decoding is table driven.  Each message type declares a Grammar: an
// immutable 2-D transition table keyed by (state, tag byte).  A Decoder feeds
// TLVs read off the byte stream through the grammar, running the Action bound
// to each transition.  Actions validate the TLV, extract values into a
// Container (the in-progress message object), or push a child grammar for a
// nested structure.  Grammars are built once, at package init, and are safe
// for concurrent use by any number of decoders.
//
// Decoding is resumable.  All parse state lives in the Decoder, so the input
// can be fed in arbitrary chunks:
//
//	d := ber.NewDecoder(container)
//	for !d.Complete() {
//		err := d.Decode(nextChunk())
//		...
//	}
//
// Running out of bytes mid-message is not an error.  Decode consumes whatever
// it is given and returns; Complete reports whether a full message has been
// seen.  Decode errors mean the stream can never become a valid message, and
// abort the parse.
//
// Encoding is the mirror image, in two phases: message types compute their
// encoded size bottom-up, then write tag, length, and value depth-first into
// a buffer sized exactly to the computed length.  WriteHeader, WriteInt, and
// the *Size functions are the building blocks.
package ber
