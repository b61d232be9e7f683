// Package krb5 implements the Kerberos V5 message formats from RFC 4120 and
// their ASN.1 BER wire encoding, for implementing Kerberos services and
// clients.
//
// Features
//
// Messages: Go structs for the KDC request family (AS-REQ, TGS-REQ) and the
// types they are built from (tickets, principal names, host addresses,
// pre-authentication data).  Each message type decodes through a static
// grammar table and encodes through a two phase length-then-bytes writer, so
// a decode/encode round trip is byte exact.
//
// BER: The ber subpackage is a low-level streaming parser for the BER subset
// Kerberos uses.  It accepts input in arbitrary chunks, which makes it
// suitable for feeding directly from a network connection.
//
// Transport: MessageReader and WriteMessage speak the TCP record framing from
// RFC 4120 section 7.2.2, and Server is a connection server in the mold of
// net/http.Server which hands decoded requests to a Handler.
package krb5
