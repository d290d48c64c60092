// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/sshkeep/sshkeep/internal/model"
	"github.com/sshkeep/sshkeep/internal/runner"
)

// Fingerprint is the result of fingerprinting one key.
type Fingerprint struct {
	Bits    int
	Hash    string
	Comment string
	Type    model.KeyType
}

// Fingerprinter extracts the fingerprint of the key at path.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (Fingerprint, error)
}

// ToolFingerprinter delegates to the external ssh-keygen binary.
type ToolFingerprinter struct {
	Runner runner.Runner
}

// Fingerprint runs `ssh-keygen -lf` and parses its fixed single-line
// response: `<bits> <fingerprint> <comment> (<TYPE>)`.
func (t *ToolFingerprinter) Fingerprint(ctx context.Context, path string) (Fingerprint, error) {
	stdout, _, err := t.Runner.Run(ctx, "ssh-keygen", "-lf", path)
	if err != nil {
		return Fingerprint{}, err
	}
	return parseFingerprintLine(strings.TrimSpace(stdout))
}

// parseFingerprintLine parses ssh-keygen's one-line fingerprint output.
func parseFingerprintLine(line string) (Fingerprint, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Fingerprint{}, fmt.Errorf("unexpected fingerprint output: %q", line)
	}

	bits, err := strconv.Atoi(fields[0])
	if err != nil {
		return Fingerprint{}, fmt.Errorf("unexpected bit length in fingerprint output %q: %w", line, err)
	}

	last := fields[len(fields)-1]
	if !strings.HasPrefix(last, "(") || !strings.HasSuffix(last, ")") {
		return Fingerprint{}, fmt.Errorf("missing key type in fingerprint output: %q", line)
	}
	keyType, err := normalizeKeyType(strings.Trim(last, "()"))
	if err != nil {
		return Fingerprint{}, err
	}

	fp := Fingerprint{
		Bits: bits,
		Hash: fields[1],
		Type: keyType,
	}
	if len(fields) > 3 {
		fp.Comment = strings.Join(fields[2:len(fields)-1], " ")
	}
	return fp, nil
}

// NativeFingerprinter computes the fingerprint from the public key
// counterpart without an external tool. It is used as a fallback when
// ssh-keygen is unavailable.
type NativeFingerprinter struct{}

// Fingerprint parses the `.pub` counterpart of the key at path and derives
// the SHA256 fingerprint from it.
func (NativeFingerprinter) Fingerprint(_ context.Context, path string) (Fingerprint, error) {
	data, err := os.ReadFile(path + PublicKeySuffix)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("could not read public key for %s: %w", path, err)
	}
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("could not parse public key for %s: %w", path, err)
	}
	keyType, err := normalizeKeyType(pub.Type())
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{
		Bits:    publicKeyBits(pub),
		Hash:    ssh.FingerprintSHA256(pub),
		Comment: comment,
		Type:    keyType,
	}, nil
}

// publicKeyBits derives the key size from the parsed public key. Unknown
// algorithms report zero.
func publicKeyBits(pub ssh.PublicKey) int {
	switch pub.Type() {
	case ssh.KeyAlgoED25519:
		return 256
	case ssh.KeyAlgoECDSA256:
		return 256
	case ssh.KeyAlgoECDSA384:
		return 384
	case ssh.KeyAlgoECDSA521:
		return 521
	case ssh.KeyAlgoRSA:
		if ck, ok := pub.(ssh.CryptoPublicKey); ok {
			if rsaKey, ok := ck.CryptoPublicKey().(*rsa.PublicKey); ok {
				return rsaKey.N.BitLen()
			}
		}
	}
	return 0
}

// Chain tries each fingerprinter in order and returns the first success.
type Chain []Fingerprinter

// Fingerprint returns the first successful result, or the last error when
// every fingerprinter fails.
func (c Chain) Fingerprint(ctx context.Context, path string) (Fingerprint, error) {
	var lastErr error
	for _, fp := range c {
		result, err := fp.Fingerprint(ctx, path)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no fingerprinter configured")
	}
	return Fingerprint{}, lastErr
}

// normalizeKeyType maps tool and wire-format type names onto the closed
// key type set.
func normalizeKeyType(raw string) (model.KeyType, error) {
	switch t := strings.ToLower(raw); {
	case t == "ed25519" || t == "ssh-ed25519":
		return model.KeyTypeEd25519, nil
	case t == "rsa" || t == "ssh-rsa" || strings.HasPrefix(t, "rsa-sha2"):
		return model.KeyTypeRSA, nil
	case t == "ecdsa" || strings.HasPrefix(t, "ecdsa-"):
		return model.KeyTypeECDSA, nil
	case t == "dsa" || t == "ssh-dss":
		return model.KeyTypeDSA, nil
	default:
		return "", fmt.Errorf("unknown key type %q", raw)
	}
}
