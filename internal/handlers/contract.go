package handlers

import (
	"fmt"
	"net/http"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/capability"
	"github.com/deployprime/agency-backend/internal/middleware"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/internal/services"
	pdfgen "github.com/deployprime/agency-backend/pdf"
)

// ContractHandler exposes the admin CRUD surface and the public
// token-addressed view/sign endpoints. All lifecycle decisions live in
// the service; this layer only translates HTTP.
type ContractHandler struct {
	Svc *services.ContractService
}

func NewContractHandler(svc *services.ContractService) *ContractHandler {
	return &ContractHandler{Svc: svc}
}

// Create: POST /api/contracts (admin). The response is the only place
// the raw shareable link ever appears.
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var in services.ContractInput
	if !decodeJSON(w, r, &in) {
		return
	}
	contract, shareURL, err := h.Svc.Create(r.Context(), in, uid)
	if err != nil {
		writeContractError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"contract":     contract,
		"shareableUrl": shareURL,
	})
}

// List: GET /api/contracts/admin?status=
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_contracts", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": contracts, "total": len(contracts)})
}

// Get: GET /api/contracts/admin/{id}. Includes the shareable link so
// an admin can re-send it.
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "contract_not_found", nil)
		return
	}
	contract, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeContractError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"contract":     contract,
		"shareableUrl": h.Svc.ShareableURL(contract.ShareableToken),
	})
}

// Update: PUT /api/contracts/{id} (admin)
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "contract_not_found", nil)
		return
	}
	var in services.ContractUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	contract, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		writeContractError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

// Delete: DELETE /api/contracts/{id} (admin)
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "contract_not_found", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeContractError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "contract_deleted")
}

// PublicGet: GET /api/contracts/{token} (no auth; the token is the
// authorization). First successful fetch flips pending to viewed.
func (h *ContractHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	token := capability.Parse(r.PathValue("token"))
	contract, err := h.Svc.GetByToken(r.Context(), token)
	if err != nil {
		writeContractError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

// Sign: POST /api/contracts/{token}/sign (no auth)
func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	token := capability.Parse(r.PathValue("token"))
	var in services.SignInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.IPAddress = middleware.ClientIP(r)
	contract, err := h.Svc.Sign(r.Context(), token, in)
	if err != nil {
		writeContractError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

// PDF: GET /api/contracts/admin/{id}/pdf (admin)
func (h *ContractHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "contract_not_found", nil)
		return
	}
	contract, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeContractError(w, err)
		return
	}
	data, err := pdfgen.ContractPDF(toPDFData(contract))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_generate_pdf", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("contract-%d.pdf", contract.ID)))
	if _, err := w.Write(data); err != nil {
		_ = err
	}
}

func toPDFData(c *models.Contract) pdfgen.ContractData {
	terms := c.ContractTerms
	if c.Status == models.ContractSigned && c.SignedTerms != "" {
		terms = c.SignedTerms
	}
	d := pdfgen.ContractData{
		ProjectName:        c.ProjectName,
		ProjectDescription: c.ProjectDescription,
		TotalPrice:         c.TotalPrice,
		Currency:           c.Currency,
		Duration:           c.Duration,
		DurationUnit:       c.DurationUnit,
		Advance:            pdfgen.TrancheData{Percentage: c.PaymentSchedule.Advance.Percentage, Amount: c.PaymentSchedule.Advance.Amount},
		Mid:                pdfgen.TrancheData{Percentage: c.PaymentSchedule.Mid.Percentage, Amount: c.PaymentSchedule.Mid.Amount},
		Final:              pdfgen.TrancheData{Percentage: c.PaymentSchedule.Final.Percentage, Amount: c.PaymentSchedule.Final.Amount},
		Terms:              terms,
		Status:             c.Status,
		ClientName:         c.ClientName,
		ClientEmail:        c.ClientEmail,
		CreatedAt:          c.CreatedAt,
	}
	if c.Signature.SignedAt != nil {
		d.SignedAt = c.Signature.SignedAt
		d.SignatureType = c.Signature.Type
		d.SignatureData = c.Signature.Data
	}
	return d
}
