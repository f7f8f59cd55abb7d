package httpserver

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/dapp-registry-backend/api"
	"github.com/ruteri/dapp-registry-backend/interfaces"
	"github.com/ruteri/dapp-registry-backend/registry"
)

type testEnv struct {
	server   *httptest.Server
	adminKey *ecdsa.PrivateKey
	admin    interfaces.Identity
	registry *registry.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	adminKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	admin := api.IdentityForKey(&adminKey.PublicKey)

	reg, err := registry.New(admin, big.NewInt(100), nil)
	require.NoError(t, err)

	srv := newTestServer(t, reg)
	return &testEnv{
		server:   srv,
		adminKey: adminKey,
		admin:    admin,
		registry: reg,
	}
}

func newTestServer(t *testing.T, reg interfaces.DappRegistry) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(log, reg, nil)
	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      log,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.getRouter())
	t.Cleanup(ts.Close)
	return ts
}

func signedPost(t *testing.T, env *testEnv, key *ecdsa.PrivateKey, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	sig, err := api.SignRequest(key, http.MethodPost, path, body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(api.SignatureHeader, sig)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestPublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/public/dapps/count")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	count := decodeJSON[api.CountResponse](t, resp)
	assert.Equal(t, uint64(0), count.Count)

	resp, err = http.Get(env.server.URL + "/api/public/fee")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fee := decodeJSON[api.FeeResponse](t, resp)
	assert.Equal(t, "100", fee.Fee)

	resp, err = http.Get(env.server.URL + "/api/public/administrator")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminResp := decodeJSON[api.AdministratorResponse](t, resp)
	assert.Equal(t, env.admin, adminResp.Administrator)
}

func TestRegisterFlow(t *testing.T) {
	env := newTestEnv(t)

	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := api.IdentityForKey(&ownerKey.PublicKey)

	id := interfaces.ComputeDappID("my-dapp")
	path := "/api/signed/dapps/" + id.String() + "/register"

	// Underpayment is rejected without registering.
	resp := signedPost(t, env, ownerKey, path, api.RegisterRequest{Paid: "99"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, ownerKey, path, api.RegisterRequest{Paid: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decodeJSON[api.EntryResponse](t, resp)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, owner, entry.Owner)

	// Duplicate registration conflicts.
	resp = signedPost(t, env, ownerKey, path, api.RegisterRequest{Paid: "100"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/api/public/dapps/" + id.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeJSON[api.EntryResponse](t, resp)
	assert.Equal(t, owner, got.Owner)

	resp, err = http.Get(env.server.URL + "/api/public/dapps/at/0")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	at := decodeJSON[api.EntryResponse](t, resp)
	assert.Equal(t, id, at.ID)
}

func TestRegister_MissingSignature(t *testing.T) {
	env := newTestEnv(t)

	id := interfaces.ComputeDappID("unsigned")
	body, err := json.Marshal(api.RegisterRequest{Paid: "100"})
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/api/signed/dapps/"+id.String()+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetaEndpoints(t *testing.T) {
	env := newTestEnv(t)

	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	id := interfaces.ComputeDappID("with-meta")
	resp := signedPost(t, env, ownerKey, "/api/signed/dapps/"+id.String()+"/register", api.RegisterRequest{Paid: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, ownerKey, "/api/signed/dapps/"+id.String()+"/meta",
		api.SetMetaRequest{Key: "homepage", Value: []byte("https://example.org")})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/api/public/dapps/" + id.String() + "/meta/homepage")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	meta := decodeJSON[api.MetaResponse](t, resp)
	assert.Equal(t, []byte("https://example.org"), meta.Value)

	// Unset keys on a registered dapp read back empty.
	resp, err = http.Get(env.server.URL + "/api/public/dapps/" + id.String() + "/meta/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	meta = decodeJSON[api.MetaResponse](t, resp)
	assert.Empty(t, meta.Value)

	// A non-owner cannot write metadata, the administrator included.
	resp = signedPost(t, env, env.adminKey, "/api/signed/dapps/"+id.String()+"/meta",
		api.SetMetaRequest{Key: "homepage", Value: []byte("hijack")})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	// Fee changes are administrator-only.
	resp := signedPost(t, env, otherKey, "/api/signed/fee", api.SetFeeRequest{Fee: "5"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, env.adminKey, "/api/signed/fee", api.SetFeeRequest{Fee: "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fee := decodeJSON[api.FeeResponse](t, resp)
	assert.Equal(t, "5", fee.Fee)

	// Collect one registration and drain it.
	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	id := interfaces.ComputeDappID("fee-payer")
	resp = signedPost(t, env, ownerKey, "/api/signed/dapps/"+id.String()+"/register", api.RegisterRequest{Paid: "5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	dest := api.IdentityForKey(&otherKey.PublicKey)
	resp = signedPost(t, env, env.adminKey, "/api/signed/drain", api.DrainRequest{Destination: dest})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drained := decodeJSON[api.DrainResponse](t, resp)
	assert.Equal(t, "5", drained.Amount)
	assert.Equal(t, dest, drained.Destination)

	// Handover, then the old administrator loses access.
	newAdmin := api.IdentityForKey(&otherKey.PublicKey)
	resp = signedPost(t, env, env.adminKey, "/api/signed/administrator",
		api.TransferAdministratorRequest{NewAdministrator: newAdmin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, env.adminKey, "/api/signed/fee", api.SetFeeRequest{Fee: "7"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, otherKey, "/api/signed/fee", api.SetFeeRequest{Fee: "7"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUnknownDappAndStaleIndex(t *testing.T) {
	env := newTestEnv(t)

	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	id := interfaces.ComputeDappID("short-lived")
	resp := signedPost(t, env, ownerKey, "/api/signed/dapps/"+id.String()+"/register", api.RegisterRequest{Paid: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, env, ownerKey, "/api/signed/dapps/"+id.String()+"/unregister", api.UnregisterRequest{ID: id})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/api/public/dapps/" + id.String())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The index keeps the position but the lookup reports the dapp gone.
	resp, err = http.Get(env.server.URL + "/api/public/dapps/count")
	require.NoError(t, err)
	count := decodeJSON[api.CountResponse](t, resp)
	assert.Equal(t, uint64(1), count.Count)

	resp, err = http.Get(env.server.URL + "/api/public/dapps/at/0")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/api/public/dapps/at/100")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestInvalidDappIDParam(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/public/dapps/not-hex")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/livez")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestDrainEndpointTogglesReadiness(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/drain")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/undrain")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.server.URL + "/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestErrorMapping_InternalFailure(t *testing.T) {
	mockReg := new(registry.MockDappRegistry)
	mockReg.On("At", mock.Anything).Return(interfaces.Entry{}, assert.AnError)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(log, mockReg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/public/dapps/at/0", nil)
	rec := httptest.NewRecorder()

	mux := func() http.Handler {
		srv, err := New(&HTTPServerConfig{ListenAddr: "127.0.0.1:0", Log: log}, handler)
		require.NoError(t, err)
		return srv.getRouter()
	}()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	mockReg.AssertExpectations(t)
}
