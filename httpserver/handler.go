package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ruteri/dapp-registry-backend/api"
	"github.com/ruteri/dapp-registry-backend/interfaces"
	"github.com/ruteri/dapp-registry-backend/metrics"
	"github.com/ruteri/dapp-registry-backend/verify"
)

// maxBodySize bounds mutation request bodies.
const maxBodySize = 1 << 20

// domainMetaKey is the metadata key holding a dapp's claimed domain.
const domainMetaKey = "domain"

// Handler implements the registry API endpoints on top of any
// interfaces.DappRegistry. The domain verifier is optional; without it the
// domain verification endpoint reports the feature as unavailable.
type Handler struct {
	log      *slog.Logger
	registry interfaces.DappRegistry
	verifier *verify.DomainVerifier
}

// NewHandler creates a Handler serving the given registry.
func NewHandler(log *slog.Logger, registry interfaces.DappRegistry, verifier *verify.DomainVerifier) *Handler {
	return &Handler{
		log:      log,
		registry: registry,
		verifier: verifier,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, operation string, err error) {
	status := api.StatusForError(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "operation", operation, "err", err)
	} else {
		h.log.Debug("Request rejected", "operation", operation, "status", status, "err", err)
	}
	h.writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}

func (h *Handler) dappIDParam(w http.ResponseWriter, r *http.Request, operation string) (interfaces.DappID, bool) {
	id, err := interfaces.NewDappIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, operation, interfaces.ErrInvalidId)
		return interfaces.DappID{}, false
	}
	return id, true
}

// signedRequest reads the body and recovers the caller identity from the
// request signature. On failure it responds 401 and returns ok=false.
func (h *Handler) signedRequest(w http.ResponseWriter, r *http.Request, operation string) ([]byte, interfaces.Identity, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "failed to read request body"})
		return nil, interfaces.Identity{}, false
	}

	caller, err := api.RecoverCaller(r.Header.Get(api.SignatureHeader), r.Method, r.URL.Path, body)
	if err != nil {
		h.log.Debug("Request signature rejected", "operation", operation, "err", err)
		h.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
		return nil, interfaces.Identity{}, false
	}

	return body, caller, true
}

// HandleCount serves GET /api/public/dapps/count.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.CountResponse{Count: h.registry.Count()})
}

// HandleAt serves GET /api/public/dapps/at/{index}. A stale index position
// whose dapp has been unregistered responds 404, as does an out-of-range
// index.
func (h *Handler) HandleAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		h.writeError(w, "at", interfaces.ErrIndexOutOfRange)
		return
	}

	entry, err := h.registry.At(index)
	if err != nil {
		h.writeError(w, "at", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.EntryResponse{ID: entry.ID, Owner: entry.Owner})
}

// HandleGet serves GET /api/public/dapps/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "get")
	if !ok {
		return
	}

	entry, err := h.registry.Get(id)
	if err != nil {
		h.writeError(w, "get", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.EntryResponse{ID: entry.ID, Owner: entry.Owner})
}

// HandleMeta serves GET /api/public/dapps/{id}/meta/{key}. An unset key on
// a registered dapp returns an empty value.
func (h *Handler) HandleMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "meta")
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")

	value, err := h.registry.Meta(id, key)
	if err != nil {
		h.writeError(w, "meta", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.MetaResponse{ID: id, Key: key, Value: value})
}

// HandleFee serves GET /api/public/fee.
func (h *Handler) HandleFee(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.FeeResponse{Fee: h.registry.Fee().String()})
}

// HandleAdministrator serves GET /api/public/administrator.
func (h *Handler) HandleAdministrator(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.AdministratorResponse{Administrator: h.registry.Administrator()})
}

// HandleDomainVerification serves GET /api/public/dapps/{id}/domain_verification.
// It checks whether the TXT record for the dapp's "domain" metadata names
// the current owner.
func (h *Handler) HandleDomainVerification(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		h.writeJSON(w, http.StatusNotImplemented, api.ErrorResponse{Error: "domain verification is not enabled"})
		return
	}

	id, ok := h.dappIDParam(w, r, "domain_verification")
	if !ok {
		return
	}

	entry, err := h.registry.Get(id)
	if err != nil {
		h.writeError(w, "domain_verification", err)
		return
	}

	domainValue, err := h.registry.Meta(id, domainMetaKey)
	if err != nil {
		h.writeError(w, "domain_verification", err)
		return
	}
	if len(domainValue) == 0 {
		h.writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "dapp has no domain metadata"})
		return
	}
	domain := string(domainValue)

	verified, err := h.verifier.VerifyOwner(r.Context(), domain, entry.Owner)
	if err != nil {
		h.log.Warn("Domain verification failed", "domain", domain, "err", err)
		h.writeJSON(w, http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, api.DomainVerificationResponse{
		ID:       id,
		Domain:   domain,
		Owner:    entry.Owner,
		Verified: verified,
	})
}

// HandleRegister serves POST /api/signed/dapps/{id}/register. The signer
// becomes the owner of the new registration.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "register")
	if !ok {
		return
	}

	body, caller, ok := h.signedRequest(w, r, "register")
	if !ok {
		return
	}

	var req api.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	paid, err := api.ParseAmount(req.Paid)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err = h.registry.Register(id, paid, caller)
	metrics.RecordOperation("register", err)
	if err != nil {
		h.writeError(w, "register", err)
		return
	}

	h.log.Info("Dapp registered", "id", id.String(), "owner", caller.String())
	h.writeJSON(w, http.StatusCreated, api.EntryResponse{ID: id, Owner: caller})
}

// HandleUnregister serves POST /api/signed/dapps/{id}/unregister.
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "unregister")
	if !ok {
		return
	}

	_, caller, ok := h.signedRequest(w, r, "unregister")
	if !ok {
		return
	}

	err := h.registry.Unregister(id, caller)
	metrics.RecordOperation("unregister", err)
	if err != nil {
		h.writeError(w, "unregister", err)
		return
	}

	h.log.Info("Dapp unregistered", "id", id.String(), "caller", caller.String())
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetMeta serves POST /api/signed/dapps/{id}/meta.
func (h *Handler) HandleSetMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "set_meta")
	if !ok {
		return
	}

	body, caller, ok := h.signedRequest(w, r, "set_meta")
	if !ok {
		return
	}

	var req api.SetMetaRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.registry.SetMeta(id, req.Key, req.Value, caller)
	metrics.RecordOperation("set_meta", err)
	if err != nil {
		h.writeError(w, "set_meta", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetOwner serves POST /api/signed/dapps/{id}/owner.
func (h *Handler) HandleSetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dappIDParam(w, r, "set_owner")
	if !ok {
		return
	}

	body, caller, ok := h.signedRequest(w, r, "set_owner")
	if !ok {
		return
	}

	var req api.SetOwnerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.registry.SetDappOwner(id, req.NewOwner, caller)
	metrics.RecordOperation("set_owner", err)
	if err != nil {
		h.writeError(w, "set_owner", err)
		return
	}

	h.log.Info("Dapp owner changed", "id", id.String(), "newOwner", req.NewOwner.String())
	h.writeJSON(w, http.StatusOK, api.EntryResponse{ID: id, Owner: req.NewOwner})
}

// HandleSetFee serves POST /api/signed/fee.
func (h *Handler) HandleSetFee(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.signedRequest(w, r, "set_fee")
	if !ok {
		return
	}

	var req api.SetFeeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	fee, err := api.ParseAmount(req.Fee)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err = h.registry.SetFee(fee, caller)
	metrics.RecordOperation("set_fee", err)
	if err != nil {
		h.writeError(w, "set_fee", err)
		return
	}

	h.log.Info("Registration fee updated", "fee", fee.String())
	h.writeJSON(w, http.StatusOK, api.FeeResponse{Fee: h.registry.Fee().String()})
}

// HandleTransferAdministrator serves POST /api/signed/administrator.
func (h *Handler) HandleTransferAdministrator(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.signedRequest(w, r, "transfer_administrator")
	if !ok {
		return
	}

	var req api.TransferAdministratorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.registry.TransferAdministrator(req.NewAdministrator, caller)
	metrics.RecordOperation("transfer_administrator", err)
	if err != nil {
		h.writeError(w, "transfer_administrator", err)
		return
	}

	h.log.Info("Administrator transferred", "newAdministrator", req.NewAdministrator.String())
	h.writeJSON(w, http.StatusOK, api.AdministratorResponse{Administrator: req.NewAdministrator})
}

// HandleDrain serves POST /api/signed/drain. It reports the drained amount
// owed to the destination; settlement happens outside this service.
func (h *Handler) HandleDrain(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.signedRequest(w, r, "drain")
	if !ok {
		return
	}

	var req api.DrainRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	amount, err := h.registry.Drain(req.Destination, caller)
	metrics.RecordOperation("drain", err)
	if err != nil {
		h.writeError(w, "drain", err)
		return
	}

	h.log.Info("Balance drained", "destination", req.Destination.String(), "amount", amount.String())
	h.writeJSON(w, http.StatusOK, api.DrainResponse{Destination: req.Destination, Amount: amount.String()})
}
