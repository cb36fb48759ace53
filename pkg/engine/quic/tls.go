package quic

import (
    "crypto/ecdsa"
    "crypto/elliptic"
    "crypto/rand"
    "crypto/tls"
    "crypto/x509"
    "math/big"
    "time"
)

const alpn = "pollnet"

// selfSignedCert generates a short-lived self-signed TLS certificate for the
// server side. Peers are not authenticated at the TLS layer; the connect key
// in the hello gates admission.
func selfSignedCert() (tls.Certificate, error) {
    priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
    if err != nil { return tls.Certificate{}, err }
    tmpl := x509.Certificate{
        SerialNumber: big.NewInt(time.Now().UnixNano()),
        NotBefore:    time.Now().Add(-time.Minute),
        NotAfter:     time.Now().Add(24 * time.Hour),
        KeyUsage:     x509.KeyUsageDigitalSignature,
        ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
        BasicConstraintsValid: true,
        DNSNames:     []string{"localhost"},
    }
    der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
    if err != nil { return tls.Certificate{}, err }
    return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}

func serverTLSConfig() (*tls.Config, error) {
    cert, err := selfSignedCert()
    if err != nil { return nil, err }
    return &tls.Config{
        Certificates: []tls.Certificate{cert},
        NextProtos:   []string{alpn},
        MinVersion:   tls.VersionTLS13,
    }, nil
}

func clientTLSConfig() *tls.Config {
    return &tls.Config{
        InsecureSkipVerify: true, // self-signed server certs; see selfSignedCert
        NextProtos:         []string{alpn},
        MinVersion:         tls.VersionTLS13,
    }
}
