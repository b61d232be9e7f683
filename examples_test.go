package krb5_test

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	krb5 "github.com/gemalto/krb5-go"
	"github.com/gemalto/krb5-go/ber"
)

func Example_client() {

	conn, err := net.DialTimeout("tcp", "localhost:88", 3*time.Second)
	if err != nil {
		panic(err)
	}

	cname := krb5.ParsePrincipalName(krb5.NameTypePrincipal, "alice")
	sname := krb5.ParsePrincipalName(krb5.NameTypeSrvInst, "krbtgt/EXAMPLE.COM")

	req := &krb5.AsReq{KdcReq: krb5.KdcReq{
		Pvno:    5,
		MsgType: krb5.MsgTypeAsReq,
		ReqBody: krb5.KdcReqBody{
			KdcOptions: krb5.KDCFlagForwardable | krb5.KDCFlagRenewable,
			CName:      &cname,
			Realm:      "EXAMPLE.COM",
			SName:      &sname,
			Till:       time.Now().Add(10 * time.Hour).UTC().Truncate(time.Second),
			Nonce:      uuid.New().ID(),
			EType: []krb5.EncryptionType{
				krb5.ETypeAes256CtsHmacSha196,
				krb5.ETypeAes128CtsHmacSha196,
			},
		},
	}}

	err = krb5.WriteMessage(conn, req)
	if err != nil {
		panic(err)
	}

	// the reply is an AS-REP or KRB-ERROR, which this package does not
	// decode, so dump the raw record
	_, raw, err := krb5.NewMessageReader(conn).Next()
	if raw == nil && err != nil {
		panic(err)
	}

	_ = ber.Print(os.Stdout, "", "  ", raw)
}

func ExampleServer() {
	listener, err := net.Listen("tcp", "0.0.0.0:88")
	if err != nil {
		panic(err)
	}

	krb5.DefaultMux.Handle(krb5.MsgTypeAsReq, krb5.HandlerFunc(
		func(ctx context.Context, req *krb5.Request) (krb5.Encodable, error) {
			// a real KDC would issue a ticket here; echo the request
			// back instead
			return req.Raw, nil
		}))

	srv := krb5.Server{Handler: krb5.DefaultMux}
	panic(srv.Serve(listener))
}
