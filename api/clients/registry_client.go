package clients

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ruteri/dapp-registry-backend/api"
	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// ErrNoSigningKey is returned when a mutating call is attempted on a
// client created without a private key.
var ErrNoSigningKey = errors.New("client has no signing key")

// RegistryClient talks to a dapp registry server. The private key signs
// mutating requests and may be nil for read-only use.
type RegistryClient struct {
	baseURL    string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client
}

// NewRegistryClient creates a client for the registry at baseURL
// (e.g. "http://localhost:8080"). An optional timeout overrides the
// 30 second default.
func NewRegistryClient(baseURL string, privateKey *ecdsa.PrivateKey, timeout ...time.Duration) *RegistryClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RegistryClient{
		baseURL:    baseURL,
		privateKey: privateKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// Identity returns the caller identity the server will recover for this
// client's signed requests.
func (c *RegistryClient) Identity() (interfaces.Identity, error) {
	if c.privateKey == nil {
		return interfaces.Identity{}, ErrNoSigningKey
	}
	return api.IdentityForKey(&c.privateKey.PublicKey), nil
}

func (c *RegistryClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *RegistryClient) signedPost(ctx context.Context, path string, payload, out any) error {
	if c.privateKey == nil {
		return ErrNoSigningKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	sig, err := api.SignRequest(c.privateKey, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.SignatureHeader, sig)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse parses a JSON response into out, turning non-2xx
// responses into errors carrying the server's message.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if body, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("request failed with code %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with code %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Count returns the length of the registration index.
func (c *RegistryClient) Count(ctx context.Context) (uint64, error) {
	var resp api.CountResponse
	if err := c.get(ctx, "/api/public/dapps/count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// At returns the entry at the given index position.
func (c *RegistryClient) At(ctx context.Context, index uint64) (interfaces.Entry, error) {
	var resp api.EntryResponse
	if err := c.get(ctx, fmt.Sprintf("/api/public/dapps/at/%d", index), &resp); err != nil {
		return interfaces.Entry{}, err
	}
	return interfaces.Entry{ID: resp.ID, Owner: resp.Owner}, nil
}

// Get returns the entry for a dapp ID.
func (c *RegistryClient) Get(ctx context.Context, id interfaces.DappID) (interfaces.Entry, error) {
	var resp api.EntryResponse
	if err := c.get(ctx, "/api/public/dapps/"+id.String(), &resp); err != nil {
		return interfaces.Entry{}, err
	}
	return interfaces.Entry{ID: resp.ID, Owner: resp.Owner}, nil
}

// Meta returns one metadata value for a registered dapp.
func (c *RegistryClient) Meta(ctx context.Context, id interfaces.DappID, key string) ([]byte, error) {
	var resp api.MetaResponse
	if err := c.get(ctx, "/api/public/dapps/"+id.String()+"/meta/"+key, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Fee returns the current registration fee.
func (c *RegistryClient) Fee(ctx context.Context) (*big.Int, error) {
	var resp api.FeeResponse
	if err := c.get(ctx, "/api/public/fee", &resp); err != nil {
		return nil, err
	}
	return api.ParseAmount(resp.Fee)
}

// Administrator returns the current registry administrator.
func (c *RegistryClient) Administrator(ctx context.Context) (interfaces.Identity, error) {
	var resp api.AdministratorResponse
	if err := c.get(ctx, "/api/public/administrator", &resp); err != nil {
		return interfaces.Identity{}, err
	}
	return resp.Administrator, nil
}

// VerifyDomain asks the server to check the dapp's domain-ownership TXT
// record against its current owner.
func (c *RegistryClient) VerifyDomain(ctx context.Context, id interfaces.DappID) (api.DomainVerificationResponse, error) {
	var resp api.DomainVerificationResponse
	if err := c.get(ctx, "/api/public/dapps/"+id.String()+"/domain_verification", &resp); err != nil {
		return api.DomainVerificationResponse{}, err
	}
	return resp, nil
}

// Register registers a dapp ID with the given payment. The client's
// identity becomes the owner.
func (c *RegistryClient) Register(ctx context.Context, id interfaces.DappID, paid *big.Int) (interfaces.Entry, error) {
	payload := api.RegisterRequest{}
	if paid != nil {
		payload.Paid = paid.String()
	}

	var resp api.EntryResponse
	if err := c.signedPost(ctx, "/api/signed/dapps/"+id.String()+"/register", payload, &resp); err != nil {
		return interfaces.Entry{}, err
	}
	return interfaces.Entry{ID: resp.ID, Owner: resp.Owner}, nil
}

// Unregister removes a dapp registration.
func (c *RegistryClient) Unregister(ctx context.Context, id interfaces.DappID) error {
	return c.signedPost(ctx, "/api/signed/dapps/"+id.String()+"/unregister", api.UnregisterRequest{ID: id}, nil)
}

// SetMeta writes one metadata value for an owned dapp.
func (c *RegistryClient) SetMeta(ctx context.Context, id interfaces.DappID, key string, value []byte) error {
	return c.signedPost(ctx, "/api/signed/dapps/"+id.String()+"/meta", api.SetMetaRequest{Key: key, Value: value}, nil)
}

// SetDappOwner transfers an owned dapp to a new owner.
func (c *RegistryClient) SetDappOwner(ctx context.Context, id interfaces.DappID, newOwner interfaces.Identity) error {
	return c.signedPost(ctx, "/api/signed/dapps/"+id.String()+"/owner", api.SetOwnerRequest{NewOwner: newOwner}, nil)
}

// SetFee updates the registration fee. Administrator only.
func (c *RegistryClient) SetFee(ctx context.Context, fee *big.Int) error {
	payload := api.SetFeeRequest{}
	if fee != nil {
		payload.Fee = fee.String()
	}
	return c.signedPost(ctx, "/api/signed/fee", payload, nil)
}

// TransferAdministrator hands the registry over to a new administrator.
// Administrator only.
func (c *RegistryClient) TransferAdministrator(ctx context.Context, newAdmin interfaces.Identity) error {
	return c.signedPost(ctx, "/api/signed/administrator", api.TransferAdministratorRequest{NewAdministrator: newAdmin}, nil)
}

// Drain transfers the collected balance claim to a destination and returns
// the drained amount. Administrator only.
func (c *RegistryClient) Drain(ctx context.Context, destination interfaces.Identity) (*big.Int, error) {
	var resp api.DrainResponse
	if err := c.signedPost(ctx, "/api/signed/drain", api.DrainRequest{Destination: destination}, &resp); err != nil {
		return nil, err
	}
	return api.ParseAmount(resp.Amount)
}
