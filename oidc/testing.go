package oidc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"
)

// TestGenerateKeys will generate a test ECDSA P-256 pub/priv key pair
func TestGenerateKeys(t *testing.T) (pub, priv string) {
	t.Helper()
	require := require.New(t)
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)

	{
		derBytes, err := x509.MarshalECPrivateKey(privateKey)
		require.NoError(err)

		pemBlock := &pem.Block{
			Type:  "EC PRIVATE KEY",
			Bytes: derBytes,
		}
		priv = string(pem.EncodeToMemory(pemBlock))
	}
	{
		derBytes, err := x509.MarshalPKIXPublicKey(privateKey.Public())
		require.NoError(err)

		pemBlock := &pem.Block{
			Type:  "PUBLIC KEY",
			Bytes: derBytes,
		}
		pub = string(pem.EncodeToMemory(pemBlock))
	}

	return pub, priv
}

// TestSignJWT will bundle the provided claims into a test signed JWT.  The
// provided key must be ECDSA.
func TestSignJWT(t *testing.T, ecdsaPrivKeyPEM string, claims jwt.Claims, privateClaims interface{}) string {
	t.Helper()
	require := require.New(t)
	if privateClaims == nil {
		privateClaims = map[string]interface{}{}
	}
	var key *ecdsa.PrivateKey
	block, _ := pem.Decode([]byte(ecdsaPrivKeyPEM))
	if block != nil {
		var err error
		key, err = x509.ParseECPrivateKey(block.Bytes)
		require.NoError(err)
	}

	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.ES256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(err)

	raw, err := jwt.Signed(sig).
		Claims(claims).
		Claims(privateClaims).
		CompactSerialize()
	require.NoError(err)

	return raw
}

// testDefaultIDToken is internally helpful, but for now we won't export it.
func testDefaultIDToken(t *testing.T, ecdsaPrivKeyPEM string, issuer, audience, subject string, expireIn time.Duration, additionalClaims map[string]interface{}) string {
	t.Helper()
	now := jwt.NewNumericDate(time.Now())
	claims := jwt.Claims{
		Issuer:    issuer,
		IssuedAt:  now,
		NotBefore: now,
		Expiry:    jwt.NewNumericDate(time.Now().Add(expireIn)),
		Audience:  jwt.Audience{audience},
		Subject:   subject,
	}
	return TestSignJWT(t, ecdsaPrivKeyPEM, claims, additionalClaims)
}

// TestGenerateCA will generate a test x509 CA cert encoded in a PEM format.
func TestGenerateCA(t *testing.T, hosts []string) string {
	t.Helper()
	require := require.New(t)

	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(err)

	// ECDSA, ED25519 and RSA subject keys should have the DigitalSignature
	// KeyUsage bits set in the x509.Certificate template
	keyUsage := x509.KeyUsageDigitalSignature

	validFor := 2 * time.Minute
	notBefore := time.Now()
	notAfter := notBefore.Add(validFor)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	require.NoError(err)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Acme Co"},
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:              keyUsage,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	template.IsCA = true
	template.KeyUsage |= x509.KeyUsageCertSign

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes}))
}

// TestSession is an in-memory Session for tests.  It is concurrently safe.
type TestSession struct {
	mu          sync.Mutex
	id          string
	attrs       map[string]interface{}
	invalidated bool
}

// ID implements the Session.ID() interface function
func (s *TestSession) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Get implements the Session.Get() interface function
func (s *TestSession) Get(name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated {
		return nil, false
	}
	v, ok := s.attrs[name]
	return v, ok
}

// Set implements the Session.Set() interface function
func (s *TestSession) Set(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated {
		return
	}
	s.attrs[name] = value
}

// Invalidate implements the Session.Invalidate() interface function.  It is
// safe to call more than once.
func (s *TestSession) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
	s.attrs = map[string]interface{}{}
}

func (s *TestSession) isInvalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// TestSessionStore is an in-memory SessionStore for tests.  It is
// concurrently safe.
type TestSessionStore struct {
	mu      sync.Mutex
	current *TestSession
	seq     int
}

// ensure that TestSessionStore implements the SessionStore interface
var _ SessionStore = (*TestSessionStore)(nil)

// NewTestSessionStore creates an empty TestSessionStore (no active session).
func NewTestSessionStore(t *testing.T) *TestSessionStore {
	t.Helper()
	return &TestSessionStore{}
}

// Active implements the SessionStore.Active() interface function
func (s *TestSessionStore) Active() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.isInvalidated() {
		return nil
	}
	return s.current
}

// Renew implements the SessionStore.Renew() interface function
func (s *TestSessionStore) Renew() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Invalidate()
	}
	s.seq++
	s.current = &TestSession{
		id:    fmt.Sprintf("s_%d", s.seq),
		attrs: map[string]interface{}{},
	}
	return s.current
}

// StartSession establishes an unauthenticated session, so tests can assert
// that binding issues a fresh session id.
func (s *TestSessionStore) StartSession() Session {
	return s.Renew()
}
