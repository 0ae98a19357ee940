package federated

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/auth-service/internal/core/domain"
)

const (
	testClientID = "fleet-web.apps.googleusercontent.com"
	testKID      = "test-key"
)

var testKey = mustRSAKey()

func mustRSAKey() *rsa.PrivateKey {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return k
}

func googleClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            GoogleIssuer,
		"aud":            testClientID,
		"sub":            "1098765",
		"email":          "a@x.com",
		"email_verified": true,
		"name":           "Ada Lovelace",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKID
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func staticVerifier(t *testing.T, cfg Config) *GoogleVerifier {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID = testClientID
	}
	v, err := NewVerifier(cfg, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&testKey.PublicKey}}, zerolog.Nop())
	require.NoError(t, err)
	return v
}

func TestNewVerifier_RequiresClientID(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(Config{}, &oidc.StaticKeySet{}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingClientID)

	_, err = NewGoogleVerifier(Config{}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingClientID)
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()
	v := staticVerifier(t, Config{})

	id, err := v.Verify(context.Background(), signRS256(t, testKey, googleClaims()))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", id.Email)
	require.Equal(t, "Ada Lovelace", id.Name)
	require.Equal(t, "1098765", id.Subject)
	require.Equal(t, GoogleIssuer, id.Issuer)
}

func TestVerify_AcceptsBareIssuerAndStringVerified(t *testing.T) {
	t.Parallel()
	v := staticVerifier(t, Config{})

	c := googleClaims()
	c["iss"] = "accounts.google.com"
	c["email_verified"] = "true"

	id, err := v.Verify(context.Background(), signRS256(t, testKey, c))
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", id.Issuer)
}

func TestVerify_Rejections(t *testing.T) {
	t.Parallel()
	v := staticVerifier(t, Config{})
	otherKey := mustRSAKey()

	cases := map[string]func() string{
		"wrong audience": func() string {
			c := googleClaims()
			c["aud"] = "someone-elses-app"
			return signRS256(t, testKey, c)
		},
		"expired": func() string {
			c := googleClaims()
			c["exp"] = time.Now().Add(-time.Minute).Unix()
			return signRS256(t, testKey, c)
		},
		"foreign issuer": func() string {
			c := googleClaims()
			c["iss"] = "https://evil.example.com"
			return signRS256(t, testKey, c)
		},
		"unknown signing key": func() string {
			return signRS256(t, otherKey, googleClaims())
		},
		"email not verified": func() string {
			c := googleClaims()
			c["email_verified"] = false
			return signRS256(t, testKey, c)
		},
		"email verified missing": func() string {
			c := googleClaims()
			delete(c, "email_verified")
			return signRS256(t, testKey, c)
		},
		"no email": func() string {
			c := googleClaims()
			delete(c, "email")
			return signRS256(t, testKey, c)
		},
		"HS256 token": func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, googleClaims()).SignedString([]byte("k"))
			require.NoError(t, err)
			return s
		},
		"garbage": func() string { return "abc.def.ghi" },
		"empty":   func() string { return "" },
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), build())
			require.ErrorIs(t, err, domain.ErrFederatedVerificationFailed)
		})
	}
}

func TestVerify_ClockOverride(t *testing.T) {
	t.Parallel()
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	v := staticVerifier(t, Config{Now: later})

	_, err := v.Verify(context.Background(), signRS256(t, testKey, googleClaims()))
	require.ErrorIs(t, err, domain.ErrFederatedVerificationFailed)
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func jwksHandler(pub *rsa.PublicKey) http.HandlerFunc {
	body, _ := json.Marshal(map[string][]jwk{"keys": {{
		Kty: "RSA",
		Kid: testKID,
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}})
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

func TestGoogleVerifier_RemoteKeys(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(jwksHandler(&testKey.PublicKey))
	defer srv.Close()

	v, err := NewGoogleVerifier(Config{ClientID: testClientID, JWKSURL: srv.URL, Timeout: 2 * time.Second}, zerolog.Nop())
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), signRS256(t, testKey, googleClaims()))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", id.Email)
}

func TestGoogleVerifier_ProviderTimeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	v, err := NewGoogleVerifier(Config{ClientID: testClientID, JWKSURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)

	start := time.Now()
	_, err = v.Verify(context.Background(), signRS256(t, testKey, googleClaims()))
	require.ErrorIs(t, err, domain.ErrFederatedVerificationFailed)
	require.Less(t, time.Since(start), 2*time.Second)
}
