package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"time"

	"github.com/gemalto/flume"
	"gopkg.in/yaml.v3"

	krb5 "github.com/gemalto/krb5-go"
	"github.com/gemalto/krb5-go/ber"
)

// Config holds the server settings.  Values left unset by flags fall back to
// the config file, then to built-in defaults.
type Config struct {
	Listen        string `yaml:"listen"`
	CertFile      string `yaml:"certFile"`
	KeyFile       string `yaml:"keyFile"`
	MaxRecordSize int    `yaml:"maxRecordSize"`
	ReadTimeout   string `yaml:"readTimeout"`
}

func main() {

	flag.Usage = func() {
		s := `kdcserve - debug kerberos message server

Usage:  kdcserve [options]

Listens for length prefixed Kerberos messages over TCP, logs each
decoded request as a BER tree, and echoes the raw record back.  It
issues no tickets and builds no KRB-ERROR replies; it exists to
exercise clients and inspect their traffic.

With -cert the listener speaks TLS.  The key defaults to the
certificate file, for combined PEM files.

The config file is YAML:

    listen: :88
    certFile: server.pem
    keyFile: server.pem
    maxRecordSize: 1048576
    readTimeout: 30s

Flags override the config file.
`
		_, _ = fmt.Fprintln(flag.CommandLine.Output(), s)
		flag.PrintDefaults()
	}

	var configFile string
	var quiet bool
	var cfg Config
	flag.StringVar(&configFile, "c", "", "config file (yaml)")
	flag.StringVar(&cfg.Listen, "l", "", "listen address, defaults to :88")
	flag.StringVar(&cfg.CertFile, "cert", "", "TLS certificate file; plain TCP when unset")
	flag.StringVar(&cfg.KeyFile, "key", "", "TLS key file, defaults to the certificate file")
	flag.IntVar(&cfg.MaxRecordSize, "m", 0, "max record size in bytes, defaults to 1MiB")
	flag.StringVar(&cfg.ReadTimeout, "t", "", "per record read timeout, e.g. 30s, defaults to none")
	flag.BoolVar(&quiet, "q", false, "log at info instead of debug")

	flag.Parse()

	level := flume.DebugLevel
	if quiet {
		level = flume.InfoLevel
	}
	flume.Configure(flume.Config{
		Development:  true,
		DefaultLevel: level,
	})

	if configFile != "" {
		b, err := ioutil.ReadFile(configFile)
		if err != nil {
			fail("error reading config file", err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(b, &fileCfg); err != nil {
			fail("error parsing config file", err)
		}
		cfg.merge(&fileCfg)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":88"
	}
	if cfg.KeyFile == "" {
		cfg.KeyFile = cfg.CertFile
	}

	var readTimeout time.Duration
	if cfg.ReadTimeout != "" {
		var err error
		readTimeout, err = time.ParseDuration(cfg.ReadTimeout)
		if err != nil {
			fail("invalid read timeout", err)
		}
	}

	var listener net.Listener
	var err error
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			fail("error loading TLS key pair", err)
		}
		listener, err = tls.Listen("tcp", cfg.Listen, &tls.Config{
			Certificates: []tls.Certificate{cert},
		})
		if err != nil {
			fail("error listening", err)
		}
	} else {
		listener, err = net.Listen("tcp", cfg.Listen)
		if err != nil {
			fail("error listening", err)
		}
	}

	fmt.Println("kdcserve: listening on", listener.Addr())

	echo := krb5.HandlerFunc(func(ctx context.Context, req *krb5.Request) (krb5.Encodable, error) {
		var tree bytes.Buffer
		_ = ber.Print(&tree, "", "  ", req.Raw)
		flume.FromContext(ctx).Info("request", "from", req.RemoteAddr,
			"msgType", req.Message.MessageType().String(), "dump", tree.String())
		return req.Raw, nil
	})
	krb5.DefaultMux.Handle(krb5.MsgTypeAsReq, echo)
	krb5.DefaultMux.Handle(krb5.MsgTypeTgsReq, echo)

	srv := krb5.Server{
		Handler:       krb5.DefaultMux,
		MaxRecordSize: cfg.MaxRecordSize,
		ReadTimeout:   readTimeout,
	}

	panic(srv.Serve(listener))
}

// merge fills fields not set by flags from the config file.
func (c *Config) merge(file *Config) {
	if c.Listen == "" {
		c.Listen = file.Listen
	}
	if c.CertFile == "" {
		c.CertFile = file.CertFile
	}
	if c.KeyFile == "" {
		c.KeyFile = file.KeyFile
	}
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = file.MaxRecordSize
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = file.ReadTimeout
	}
}

func fail(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, msg+":", err)
	} else {
		_, _ = fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
