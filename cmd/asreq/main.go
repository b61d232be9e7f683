package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	krb5 "github.com/gemalto/krb5-go"
	"github.com/gemalto/krb5-go/ber"
)

func main() {

	flag.Usage = func() {
		s := `asreq - build and send an AS-REQ

Usage:  asreq [options]

Builds an AS-REQ from the flags and prints it as a BER tree.  With -s
the request is framed with the 4 octet record length, sent to a KDC
over TCP, and whatever comes back is dumped.  The reply is an AS-REP
or KRB-ERROR, which this tool does not decode beyond the BER layer.

Examples:

    asreq -realm EXAMPLE.COM -client alice
    asreq -realm EXAMPLE.COM -client alice -opts "forwardable|renewable" \
        -etypes aes256-cts-hmac-sha1-96 -s kdc.example.com:88
`
		_, _ = fmt.Fprintln(flag.CommandLine.Output(), s)
		flag.PrintDefaults()
	}

	var realm, client, server, etypes, opts, send string
	var till time.Duration
	flag.StringVar(&realm, "realm", "EXAMPLE.COM", "realm name")
	flag.StringVar(&client, "client", "alice", "client principal, components joined with /")
	flag.StringVar(&server, "server", "", "server principal, defaults to krbtgt/<realm>")
	flag.StringVar(&etypes, "etypes", "aes256-cts-hmac-sha1-96,aes128-cts-hmac-sha1-96",
		"comma separated encryption types, names or numbers")
	flag.StringVar(&opts, "opts", "forwardable|renewable", "KDC option flags joined with |")
	flag.DurationVar(&till, "till", 10*time.Hour, "requested ticket lifetime")
	flag.StringVar(&send, "s", "", "send the request to this address (host:port) and dump the reply")

	flag.Parse()

	if server == "" {
		server = "krbtgt/" + realm
	}

	kdcOptions, err := krb5.ParseKDCOptions(opts)
	if err != nil {
		fail("invalid -opts", err)
	}

	var etypeList []krb5.EncryptionType
	for _, part := range strings.Split(etypes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		et, err := krb5.ParseEncryptionType(part)
		if err != nil {
			fail("invalid -etypes", err)
		}
		etypeList = append(etypeList, et)
	}

	cname := krb5.ParsePrincipalName(krb5.NameTypePrincipal, client)
	sname := krb5.ParsePrincipalName(krb5.NameTypeSrvInst, server)

	req := &krb5.AsReq{KdcReq: krb5.KdcReq{
		Pvno:    5,
		MsgType: krb5.MsgTypeAsReq,
		ReqBody: krb5.KdcReqBody{
			KdcOptions: kdcOptions,
			CName:      &cname,
			Realm:      realm,
			SName:      &sname,
			Till:       time.Now().Add(till).UTC().Truncate(time.Second),
			Nonce:      uuid.New().ID(),
			EType:      etypeList,
		},
	}}

	b, err := krb5.Encode(req)
	if err != nil {
		fail("error encoding request", err)
	}

	fmt.Println("== REQUEST ==")
	fmt.Println()
	if err := ber.Print(os.Stdout, "", "  ", b); err != nil {
		fmt.Println()
		fail("error printing request", err)
	}
	fmt.Println()

	if send == "" {
		return
	}

	conn, err := net.DialTimeout("tcp", send, 10*time.Second)
	if err != nil {
		fail("error connecting", err)
	}
	defer conn.Close()

	if err := krb5.WriteRawMessage(conn, b); err != nil {
		fail("error sending request", err)
	}

	fmt.Println("wrote", len(b), "bytes")

	_, raw, err := krb5.NewMessageReader(bufio.NewReader(conn)).Next()
	if raw == nil && err != nil {
		fail("error reading reply", err)
	}

	fmt.Println("read", len(raw), "bytes")
	fmt.Println()
	fmt.Println("== RESPONSE ==")
	fmt.Println()
	if err := ber.Print(os.Stdout, "", "  ", raw); err != nil {
		fmt.Println()
		fail("response is invalid", err)
	}
	fmt.Println()
}

func fail(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, msg+":", err)
	} else {
		_, _ = fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
