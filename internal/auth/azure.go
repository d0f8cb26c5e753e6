package auth

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"software.sslmate.com/src/go-pkcs12"
)

// DefaultAppScopes is the scope set requested for application
// permission tokens.
var DefaultAppScopes = []string{"https://graph.microsoft.com/.default"}

// AzureSource acquires app-only tokens through an azidentity
// credential. The azidentity credential caches and renews tokens
// internally, so Token can be called per request.
type AzureSource struct {
	cred   azcore.TokenCredential
	scopes []string
}

// NewClientSecretSource authenticates with a client secret.
func NewClientSecretSource(tenantID, clientID, secret string) (*AzureSource, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("creating client secret credential: %w", err)
	}
	return &AzureSource{cred: cred, scopes: DefaultAppScopes}, nil
}

// NewCertificateSource authenticates with a PFX certificate file.
func NewCertificateSource(tenantID, clientID, pfxPath, pfxPass string) (*AzureSource, error) {
	pfxData, err := os.ReadFile(pfxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PFX file: %w", err)
	}

	// Decode PFX using go-pkcs12 (supports SHA-256 and other modern
	// algorithms). DecodeChain returns the private key and full chain.
	key, cert, caCerts, err := pkcs12.DecodeChain(pfxData, pfxPass)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PFX: %w", err)
	}

	privKey, ok := key.(crypto.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("decoded key is not a valid crypto.PrivateKey")
	}

	// azidentity expects the leaf certificate first
	certs := []*x509.Certificate{cert}
	certs = append(certs, caCerts...)

	opts := &azidentity.ClientCertificateCredentialOptions{
		SendCertificateChain: true,
	}
	cred, err := azidentity.NewClientCertificateCredential(tenantID, clientID, certs, privKey, opts)
	if err != nil {
		return nil, fmt.Errorf("creating certificate credential: %w", err)
	}
	return &AzureSource{cred: cred, scopes: DefaultAppScopes}, nil
}

// AccessToken fetches the raw token with its expiry for display.
func (s *AzureSource) AccessToken(ctx context.Context) (azcore.AccessToken, error) {
	return s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: s.scopes})
}

// Token implements TokenSource.
func (s *AzureSource) Token(ctx context.Context) (string, error) {
	tok, err := s.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring application token: %w", err)
	}
	return tok.Token, nil
}
