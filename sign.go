// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"

	"go.mozilla.org/pkcs7"
)

// ErrNoSignature is returned by VerifySignature when the supplied bytes do
// not carry a parseable PKCS#7 SignedData envelope.
var ErrNoSignature = errors.New("relocfg: not a PKCS#7 signed ConfigData image")

// Sign wraps a serialized ConfigData image (d.Bytes()) in a detached PKCS#7
// SignedData envelope, the same signature container format the teacher
// parses out of a PE's certificate table.
func Sign(image []byte, cert *x509.Certificate, key *rsa.PrivateKey) ([]byte, error) {
	sd, err := pkcs7.NewSignedData(image)
	if err != nil {
		return nil, err
	}
	if err := sd.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, err
	}
	sd.Detach()
	return sd.Finish()
}

// VerifySignature checks a detached PKCS#7 signature produced by Sign
// against the original serialized image and returns the signer's
// certificate on success.
func VerifySignature(image, signature []byte) (*x509.Certificate, error) {
	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return nil, ErrNoSignature
	}
	p7.Content = image
	if err := p7.Verify(); err != nil {
		return nil, err
	}
	if len(p7.Certificates) == 0 {
		return nil, ErrNoSignature
	}
	return p7.Certificates[0], nil
}
