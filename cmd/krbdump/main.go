package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/gemalto/krb5-go/ber"
)

const FormatHex = "hex"
const FormatRaw = "raw"

func main() {

	flag.Usage = func() {
		s := `krbdump - kerberos message pretty printer

Usage:  krbdump [options] [input]

Pretty prints the BER encoding of Kerberos messages.  Reads hex or raw
binary input, and prints it as a text tree, raw hex, or pretty printed
hex.

The input argument should be a hex string.  If not present, input will
be read from standard in.

When reading hex input, any non-hex characters, such as whitespace or
embedded formatting characters, will be ignored.  The 'prettyhex'
output format embeds such characters, but because they are ignored,
'prettyhex' output is still valid 'hex' input.

Input starting with the 4 octet TCP record length, as captured off a
stream, is unframed first.

Examples:

    krbdump 300ca003020111a105040301020203
    echo "300ca003020111a105040301020203" | krbdump

Output (in 'text' format):

    SEQUENCE (12):
      [0] (3):
        INTEGER (1): 17
      [1] (5):
        OCTET STRING (3): 0x010203

prettyhex format:

    30 | 0c
      a0 | 03
        02 | 01 | 11
      a1 | 05
        04 | 03 | 010203
`
		_, _ = fmt.Fprintln(flag.CommandLine.Output(), s)
		flag.PrintDefaults()
	}

	var inFormat string
	var outFormat string
	var inFile string
	flag.StringVar(&inFormat, "i", "", "input format: hex|raw, defaults to auto detect")
	flag.StringVar(&outFormat, "o", "", "output format: text|hex|prettyhex, defaults to text")
	flag.StringVar(&inFile, "f", "", "input file name, defaults to stdin")

	flag.Parse()

	buf := bytes.NewBuffer(nil)

	if inFile != "" {
		file, err := ioutil.ReadFile(inFile)
		if err != nil {
			fail("error reading input file", err)
		}
		buf = bytes.NewBuffer(file)
	} else if inArg := flag.Arg(0); inArg != "" {
		buf.WriteString(inArg)
	} else {
		if _, err := io.Copy(buf, os.Stdin); err != nil {
			fail("error reading standard input", err)
		}
	}

	if buf.Len() == 0 {
		fail("no input", nil)
	}

	if inFormat == "" {
		// auto detect input format
		inFormat = FormatRaw
		if isHex(buf.Bytes()) {
			inFormat = FormatHex
		}
	}

	var b []byte
	switch strings.ToLower(inFormat) {
	case FormatHex:
		b = ber.Hex2bytes(buf.String())
	case FormatRaw:
		b = buf.Bytes()
	default:
		fail("invalid input format: "+inFormat, nil)
	}

	b = unframe(b)

	outFormat = strings.ToLower(outFormat)
	if outFormat == "" {
		outFormat = "text"
	}

	switch outFormat {
	case "text":
		if err := ber.Print(os.Stdout, "", "  ", b); err != nil {
			fmt.Println()
			fail("error printing", err)
		}
		fmt.Println()
	case "hex":
		fmt.Println(hex.EncodeToString(b))
	case "prettyhex":
		if err := ber.PrintPrettyHex(os.Stdout, "", "  ", b); err != nil {
			fmt.Println()
			fail("error printing", err)
		}
		fmt.Println()
	default:
		fail("invalid output format: "+outFormat, nil)
	}
}

// isHex reports whether b holds only hex digits and formatting characters.
func isHex(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		case c >= 'a' && c <= 'f':
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '|':
		default:
			return false
		}
	}
	return true
}

// unframe strips the 4 octet record length prefix when the input is exactly
// one framed record.
func unframe(b []byte) []byte {
	if len(b) >= 4 {
		n := binary.BigEndian.Uint32(b)
		if n&0x80000000 == 0 && int(n) == len(b)-4 {
			return b[4:]
		}
	}
	return b
}

func fail(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, msg+":", err)
	} else {
		_, _ = fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
