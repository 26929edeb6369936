package apihelper

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
	"os"
	"strings"

	"github.com/samvad-hq/samvad-api-helper/pkg/httpclient"
)

// trustMaterial is what buildTrust reads from disk for one request.
type trustMaterial struct {
	settings *httpclient.TLSSettings
	// certIgnored is set when a certificate was given without its key.
	certIgnored bool
}

// buildTrust interprets the TLS options of cfg. It returns nil settings when
// the request needs no custom trust, so the shared client can serve it.
func buildTrust(cfg RequestConfig, withIdentity bool) (trustMaterial, error) {
	certPath := strings.TrimSpace(cfg.CertPath)
	keyPath := strings.TrimSpace(cfg.KeyPath)
	caPath := strings.TrimSpace(cfg.CAPath)

	out := trustMaterial{certIgnored: certPath != "" && keyPath == ""}
	hasPair := certPath != "" && keyPath != ""
	if !hasPair && caPath == "" && !cfg.SkipVerification {
		return out, nil
	}

	settings := &httpclient.TLSSettings{InsecureSkipVerify: cfg.SkipVerification}
	fp := sha256.New()

	if hasPair {
		certPEM, err := os.ReadFile(certPath)
		if err != nil {
			return out, newError(KindIO, "failed to read certificate", err)
		}
		keyPEM, err := os.ReadFile(keyPath)
		if err != nil {
			return out, newError(KindIO, "failed to read private key", err)
		}
		certs, err := parseCertificates(certPEM)
		if err != nil {
			return out, newError(KindCertParse, "failed to create certificate", err)
		}
		addRoots(settings, certs)
		writeSegment(fp, "cert", certPEM)

		if withIdentity {
			id, err := ClientIdentity(certPEM, keyPEM)
			if err != nil {
				return out, newError(KindClientBuild, "failed to build HTTP client", err)
			}
			settings.Certificates = []tls.Certificate{id}
			writeSegment(fp, "key", keyPEM)
		}
	}

	if caPath != "" {
		caPEM, err := os.ReadFile(caPath)
		if err != nil {
			return out, newError(KindIO, "failed to read CA certificate", err)
		}
		certs, err := parseCertificates(caPEM)
		if err != nil {
			return out, newError(KindCertParse, "failed to parse CA certificate", err)
		}
		addRoots(settings, certs)
		writeSegment(fp, "ca", caPEM)
	}

	fmt.Fprintf(fp, "skip:%t", cfg.SkipVerification)
	settings.Fingerprint = hex.EncodeToString(fp.Sum(nil))
	out.settings = settings
	return out, nil
}

// ClientIdentity pairs a PEM certificate with its private key for presenting
// to servers that request a client certificate.
func ClientIdentity(certPEM, keyPEM []byte) (tls.Certificate, error) {
	id, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load client identity: %w", err)
	}
	return id, nil
}

// parseCertificates decodes every CERTIFICATE block in data.
func parseCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("no PEM encoded certificate found")
	}
	return certs, nil
}

// addRoots extends the system trust store with certs.
func addRoots(settings *httpclient.TLSSettings, certs []*x509.Certificate) {
	if settings.RootCAs == nil {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		settings.RootCAs = pool
	}
	for _, c := range certs {
		settings.RootCAs.AddCert(c)
	}
}

func writeSegment(h hash.Hash, label string, data []byte) {
	fmt.Fprintf(h, "%s:%d:", label, len(data))
	h.Write(data)
}
