package krb5

import (
	"strconv"

	"github.com/ansel1/merry"
	"github.com/gemalto/krb5-go/internal/krbutil"
)

// Enumerations from the IANA Kerberos registries.  String returns the
// registered name where one exists, and the Parse functions accept a
// registered name, a decimal number, or a "0x" hex string.

// MessageType discriminates the Kerberos message family, RFC 4120 5.10.
type MessageType int32

const (
	MsgTypeAsReq  MessageType = 10
	MsgTypeAsRep  MessageType = 11
	MsgTypeTgsReq MessageType = 12
	MsgTypeTgsRep MessageType = 13
	MsgTypeApReq  MessageType = 14
	MsgTypeApRep  MessageType = 15
	MsgTypeSafe   MessageType = 20
	MsgTypePriv   MessageType = 21
	MsgTypeCred   MessageType = 22
	MsgTypeError  MessageType = 30
)

var messageTypeNames = map[MessageType]string{
	MsgTypeAsReq:  "krb-as-req",
	MsgTypeAsRep:  "krb-as-rep",
	MsgTypeTgsReq: "krb-tgs-req",
	MsgTypeTgsRep: "krb-tgs-rep",
	MsgTypeApReq:  "krb-ap-req",
	MsgTypeApRep:  "krb-ap-rep",
	MsgTypeSafe:   "krb-safe",
	MsgTypePriv:   "krb-priv",
	MsgTypeCred:   "krb-cred",
	MsgTypeError:  "krb-error",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// EncryptionType identifies an encryption system, RFC 3961.
type EncryptionType int32

const (
	ETypeDesCbcCrc              EncryptionType = 1
	ETypeDesCbcMd4              EncryptionType = 2
	ETypeDesCbcMd5              EncryptionType = 3
	ETypeDes3CbcSha1Kd          EncryptionType = 16
	ETypeAes128CtsHmacSha196    EncryptionType = 17
	ETypeAes256CtsHmacSha196    EncryptionType = 18
	ETypeAes128CtsHmacSha256128 EncryptionType = 19
	ETypeAes256CtsHmacSha384192 EncryptionType = 20
	ETypeRc4Hmac                EncryptionType = 23
	ETypeRc4HmacExp             EncryptionType = 24
	ETypeCamellia128CtsCmac     EncryptionType = 25
	ETypeCamellia256CtsCmac     EncryptionType = 26
)

var encryptionTypeNames = map[EncryptionType]string{
	ETypeDesCbcCrc:              "des-cbc-crc",
	ETypeDesCbcMd4:              "des-cbc-md4",
	ETypeDesCbcMd5:              "des-cbc-md5",
	ETypeDes3CbcSha1Kd:          "des3-cbc-sha1-kd",
	ETypeAes128CtsHmacSha196:    "aes128-cts-hmac-sha1-96",
	ETypeAes256CtsHmacSha196:    "aes256-cts-hmac-sha1-96",
	ETypeAes128CtsHmacSha256128: "aes128-cts-hmac-sha256-128",
	ETypeAes256CtsHmacSha384192: "aes256-cts-hmac-sha384-192",
	ETypeRc4Hmac:                "rc4-hmac",
	ETypeRc4HmacExp:             "rc4-hmac-exp",
	ETypeCamellia128CtsCmac:     "camellia128-cts-cmac",
	ETypeCamellia256CtsCmac:     "camellia256-cts-cmac",
}

var encryptionTypeValues = map[string]EncryptionType{}

func (t EncryptionType) String() string {
	if s, ok := encryptionTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// ParseEncryptionType parses a registered name, number, or hex string.
func ParseEncryptionType(s string) (EncryptionType, error) {
	if v, ok := encryptionTypeValues[krbutil.NormalizeName(s)]; ok {
		return v, nil
	}
	i, err := krbutil.ParseInt32(s)
	if err != nil {
		return 0, merry.Prependf(err, "%q is not an encryption type name, number, or hex string", s)
	}
	return EncryptionType(i), nil
}

// NameType qualifies how a principal name should be interpreted, RFC 4120 6.2.
type NameType int32

const (
	NameTypeUnknown    NameType = 0
	NameTypePrincipal  NameType = 1
	NameTypeSrvInst    NameType = 2
	NameTypeSrvHst     NameType = 3
	NameTypeSrvXhst    NameType = 4
	NameTypeUID        NameType = 5
	NameTypeX500       NameType = 6
	NameTypeSmtpName   NameType = 7
	NameTypeEnterprise NameType = 10
)

var nameTypeNames = map[NameType]string{
	NameTypeUnknown:    "nt-unknown",
	NameTypePrincipal:  "nt-principal",
	NameTypeSrvInst:    "nt-srv-inst",
	NameTypeSrvHst:     "nt-srv-hst",
	NameTypeSrvXhst:    "nt-srv-xhst",
	NameTypeUID:        "nt-uid",
	NameTypeX500:       "nt-x500-principal",
	NameTypeSmtpName:   "nt-smtp-name",
	NameTypeEnterprise: "nt-enterprise",
}

func (t NameType) String() string {
	if s, ok := nameTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// AddressType identifies a HostAddress family, RFC 4120 7.5.3.
type AddressType int32

const (
	AddrTypeIPv4        AddressType = 2
	AddrTypeDirectional AddressType = 3
	AddrTypeChaosNet    AddressType = 5
	AddrTypeXNS         AddressType = 6
	AddrTypeISO         AddressType = 7
	AddrTypeDecnet      AddressType = 12
	AddrTypeAppletalk   AddressType = 16
	AddrTypeNetBios     AddressType = 20
	AddrTypeIPv6        AddressType = 24
)

var addressTypeNames = map[AddressType]string{
	AddrTypeIPv4:        "ipv4",
	AddrTypeDirectional: "directional",
	AddrTypeChaosNet:    "chaosnet",
	AddrTypeXNS:         "xns",
	AddrTypeISO:         "iso",
	AddrTypeDecnet:      "decnet",
	AddrTypeAppletalk:   "appletalk",
	AddrTypeNetBios:     "netbios",
	AddrTypeIPv6:        "ipv6",
}

func (t AddressType) String() string {
	if s, ok := addressTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// PaDataType identifies a pre-authentication data element, RFC 4120 7.5.2.
type PaDataType int32

const (
	PaTgsReq       PaDataType = 1
	PaEncTimestamp PaDataType = 2
	PaPwSalt       PaDataType = 3
	PaETypeInfo    PaDataType = 11
	PaPkAsReq      PaDataType = 16
	PaPkAsRep      PaDataType = 17
	PaETypeInfo2   PaDataType = 19
	PaPacRequest   PaDataType = 128
	PaFxCookie     PaDataType = 133
	PaFxFast       PaDataType = 136
	PaFxError      PaDataType = 137
	PaEncpaRep     PaDataType = 149
)

var paDataTypeNames = map[PaDataType]string{
	PaTgsReq:       "pa-tgs-req",
	PaEncTimestamp: "pa-enc-timestamp",
	PaPwSalt:       "pa-pw-salt",
	PaETypeInfo:    "pa-etype-info",
	PaPkAsReq:      "pa-pk-as-req",
	PaPkAsRep:      "pa-pk-as-rep",
	PaETypeInfo2:   "pa-etype-info2",
	PaPacRequest:   "pa-pac-request",
	PaFxCookie:     "pa-fx-cookie",
	PaFxFast:       "pa-fx-fast",
	PaFxError:      "pa-fx-error",
	PaEncpaRep:     "pa-encpa-rep",
}

var paDataTypeValues = map[string]PaDataType{}

func (t PaDataType) String() string {
	if s, ok := paDataTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// ParsePaDataType parses a registered name, number, or hex string.
func ParsePaDataType(s string) (PaDataType, error) {
	if v, ok := paDataTypeValues[krbutil.NormalizeName(s)]; ok {
		return v, nil
	}
	i, err := krbutil.ParseInt32(s)
	if err != nil {
		return 0, merry.Prependf(err, "%q is not a padata type name, number, or hex string", s)
	}
	return PaDataType(i), nil
}

// ErrorCode is a KRB-ERROR error code, RFC 4120 7.5.9.
type ErrorCode int32

const (
	KdcErrNone              ErrorCode = 0
	KdcErrCPrincipalUnknown ErrorCode = 6
	KdcErrSPrincipalUnknown ErrorCode = 7
	KdcErrPolicy            ErrorCode = 12
	KdcErrBadoption         ErrorCode = 13
	KdcErrETypeNosupp       ErrorCode = 14
	KdcErrPreauthFailed     ErrorCode = 24
	KdcErrPreauthRequired   ErrorCode = 25
	KrbApErrBadVersion      ErrorCode = 39
	KrbApErrMsgType         ErrorCode = 40
	KrbErrGeneric           ErrorCode = 60
	KrbErrFieldToolong      ErrorCode = 61
)

var errorCodeNames = map[ErrorCode]string{
	KdcErrNone:              "kdc-err-none",
	KdcErrCPrincipalUnknown: "kdc-err-c-principal-unknown",
	KdcErrSPrincipalUnknown: "kdc-err-s-principal-unknown",
	KdcErrPolicy:            "kdc-err-policy",
	KdcErrBadoption:         "kdc-err-badoption",
	KdcErrETypeNosupp:       "kdc-err-etype-nosupp",
	KdcErrPreauthFailed:     "kdc-err-preauth-failed",
	KdcErrPreauthRequired:   "kdc-err-preauth-required",
	KrbApErrBadVersion:      "krb-ap-err-badversion",
	KrbApErrMsgType:         "krb-ap-err-msg-type",
	KrbErrGeneric:           "krb-err-generic",
	KrbErrFieldToolong:      "krb-err-field-toolong",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

func init() {
	for v, n := range encryptionTypeNames {
		encryptionTypeValues[n] = v
	}
	for v, n := range paDataTypeNames {
		paDataTypeValues[n] = v
	}
}
