package main

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh"

	"github.com/meigma/docupdate/paseto"
)

func runSign(_ context.Context, args []string, stdout, stderr io.Writer) error {
	var keyPath, message string
	flagSet := pflag.NewFlagSet("sign", pflag.ContinueOnError)
	flagSet.StringVarP(&keyPath, "key", "k", "", "Ed25519 private key (PKCS#8 PEM or OpenSSH)")
	flagSet.StringVarP(&message, "message", "m", "", "token message")

	path, err := parseFlags(flagSet, args, stderr)
	if err != nil {
		return err
	}
	if keyPath == "" {
		return errors.New("sign: --key is required")
	}
	priv, err := loadPrivateKey(keyPath)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	token, err := paseto.Sign(priv, []byte(message), body)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func loadPrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block", path)
	}

	var key any
	switch block.Type {
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "OPENSSH PRIVATE KEY":
		key, err = ssh.ParseRawPrivateKey(data)
	default:
		return nil, fmt.Errorf("%s: unsupported PEM type %q", path, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch k := key.(type) {
	case ed25519.PrivateKey:
		return k, nil
	case *ed25519.PrivateKey:
		return *k, nil
	default:
		return nil, fmt.Errorf("%s: not an ed25519 key (%T)", path, key)
	}
}
