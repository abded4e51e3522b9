package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/internal/capability"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// Lifecycle errors. Handlers map them to distinct HTTP statuses so a
// client UI can tell "bad link" from "stale link" from "already done".
var (
	ErrContractNotFound = errors.New("contract not found")
	ErrContractExpired  = errors.New("contract expired")
	ErrAlreadySigned    = errors.New("contract already signed")
)

// ValidationError carries field-level violations back to the handler.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation failed" }

const contractValidity = 30 * 24 * time.Hour

// ContractService is the lifecycle controller for contracts: it owns
// every status transition and is the only writer of contract records.
type ContractService struct {
	DB          *gorm.DB
	FrontendURL string
	// Now is a seam for tests; defaults to time.Now.
	Now func() time.Time
}

func NewContractService(db *gorm.DB, frontendURL string) *ContractService {
	return &ContractService{DB: db, FrontendURL: strings.TrimRight(frontendURL, "/"), Now: time.Now}
}

func (s *ContractService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ContractInput is the admin-authored creation payload.
type ContractInput struct {
	ProjectName        string  `json:"projectName"`
	ProjectDescription string  `json:"projectDescription"`
	TotalPrice         float64 `json:"totalPrice"`
	Currency           string  `json:"currency"`
	Duration           int     `json:"duration"`
	DurationUnit       string  `json:"durationUnit"`
	AdvancePercentage  float64 `json:"advancePercentage"`
	MidPercentage      float64 `json:"midPercentage"`
	FinalPercentage    float64 `json:"finalPercentage"`
	ContractTerms      string  `json:"contractTerms"`
}

func (in *ContractInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("projectName", in.ProjectName, v)
	validation.Required("projectDescription", in.ProjectDescription, v)
	validation.NonNegativeFloat("totalPrice", in.TotalPrice, v)
	validation.PositiveInt("duration", in.Duration, v)
	validation.OneOf("durationUnit", in.DurationUnit, v, models.DurationDays, models.DurationWeeks, models.DurationMonths)
	validation.RangeFloat("advancePercentage", in.AdvancePercentage, 0, 100, v)
	validation.RangeFloat("midPercentage", in.MidPercentage, 0, 100, v)
	validation.RangeFloat("finalPercentage", in.FinalPercentage, 0, 100, v)
	if _, ok := v["advancePercentage"]; !ok {
		if _, ok := v["midPercentage"]; !ok {
			if _, ok := v["finalPercentage"]; !ok {
				if !PercentagesSumTo100(in.AdvancePercentage, in.MidPercentage, in.FinalPercentage) {
					v["paymentSchedule"] = "percentages_must_sum_to_100"
				}
			}
		}
	}
	return v
}

// Create validates the input, mints the shareable capability, derives
// the payment schedule and persists the pending contract. Returns the
// record and the shareable URL for the admin to hand to the client.
func (s *ContractService) Create(ctx context.Context, in ContractInput, createdBy uint) (*models.Contract, string, error) {
	if in.DurationUnit == "" {
		in.DurationUnit = models.DurationDays
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if violations := in.validate(); !violations.Empty() {
		return nil, "", &ValidationError{Violations: violations}
	}

	token, err := capability.New()
	if err != nil {
		return nil, "", fmt.Errorf("generate shareable token: %w", err)
	}

	terms := in.ContractTerms
	if strings.TrimSpace(terms) == "" {
		terms = DefaultContractTerms(in.AdvancePercentage, in.MidPercentage, in.FinalPercentage, in.Duration, in.DurationUnit)
	}

	now := s.now()
	contract := models.Contract{
		ShareableToken:     token,
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		TotalPrice:         in.TotalPrice,
		Currency:           in.Currency,
		Duration:           in.Duration,
		DurationUnit:       in.DurationUnit,
		PaymentSchedule: models.PaymentSchedule{
			Advance: models.Tranche{Percentage: in.AdvancePercentage},
			Mid:     models.Tranche{Percentage: in.MidPercentage},
			Final:   models.Tranche{Percentage: in.FinalPercentage},
		},
		ContractTerms: terms,
		Status:        models.ContractPending,
		ExpiresAt:     now.Add(contractValidity),
		CreatedByID:   createdBy,
	}
	RecomputeSchedule(&contract)

	if err := s.DB.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, "", fmt.Errorf("create contract: %w", err)
	}
	return &contract, s.ShareableURL(token), nil
}

// ShareableURL builds the client-facing link embedding the capability.
func (s *ContractService) ShareableURL(token capability.Capability) string {
	return s.FrontendURL + "/contract/" + token.Raw()
}

// GetByToken is the public fetch: it applies the lazy expiry check and
// the one-time pending->viewed transition, then returns the record.
// Expiry is evaluated on every access, not just the first.
func (s *ContractService) GetByToken(ctx context.Context, token capability.Capability) (*models.Contract, error) {
	if token.IsZero() {
		return nil, ErrContractNotFound
	}
	var contract models.Contract
	if err := s.DB.WithContext(ctx).Where("shareable_token = ?", token.Raw()).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	if expired, err := s.expireIfDue(ctx, &contract); err != nil {
		return nil, err
	} else if expired {
		return nil, ErrContractExpired
	}

	if contract.Status == models.ContractPending && contract.ViewedAt == nil {
		now := s.now()
		// Conditional update so a racing fetch records viewedAt once.
		res := s.DB.WithContext(ctx).Model(&models.Contract{}).
			Where("id = ? AND status = ? AND viewed_at IS NULL", contract.ID, models.ContractPending).
			Updates(map[string]any{"status": models.ContractViewed, "viewed_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if err := s.DB.WithContext(ctx).First(&contract, contract.ID).Error; err != nil {
			return nil, err
		}
	}
	return &contract, nil
}

// SignInput is the client-submitted signing payload. The timestamp and
// network address are never taken from the client.
type SignInput struct {
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	SignatureType string `json:"signatureType"`
	SignatureData string `json:"signatureData"`
	// IPAddress is filled by the handler from the connection.
	IPAddress string `json:"-"`
}

func (in *SignInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("clientName", in.ClientName, v)
	validation.Email("clientEmail", in.ClientEmail, v)
	validation.Required("clientPhone", in.ClientPhone, v)
	validation.OneOf("signatureType", in.SignatureType, v, models.SignatureDrawn, models.SignatureUploaded)
	validation.Required("signatureData", in.SignatureData, v)
	return v
}

// Sign transitions pending/viewed -> signed. The status guard is part
// of the UPDATE itself, so two racing submissions cannot both win; the
// loser observes the committed state and gets ErrAlreadySigned.
func (s *ContractService) Sign(ctx context.Context, token capability.Capability, in SignInput) (*models.Contract, error) {
	if token.IsZero() {
		return nil, ErrContractNotFound
	}
	if violations := in.validate(); !violations.Empty() {
		return nil, &ValidationError{Violations: violations}
	}

	var contract models.Contract
	if err := s.DB.WithContext(ctx).Where("shareable_token = ?", token.Raw()).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	if contract.Status == models.ContractSigned || contract.Status == models.ContractCompleted {
		return nil, ErrAlreadySigned
	}
	if expired, err := s.expireIfDue(ctx, &contract); err != nil {
		return nil, err
	} else if expired {
		return nil, ErrContractExpired
	}

	now := s.now()
	res := s.DB.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status IN ?", contract.ID, []string{models.ContractPending, models.ContractViewed}).
		Updates(map[string]any{
			"status":               models.ContractSigned,
			"client_name":          in.ClientName,
			"client_email":         in.ClientEmail,
			"client_phone":         in.ClientPhone,
			"signature_type":       in.SignatureType,
			"signature_data":       in.SignatureData,
			"signature_signed_at":  now,
			"signature_ip_address": in.IPAddress,
			"signed_terms":         contract.ContractTerms,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		// Lost the race: re-read to report the committed state.
		if err := s.DB.WithContext(ctx).First(&contract, contract.ID).Error; err != nil {
			return nil, ErrContractNotFound
		}
		if contract.Status == models.ContractExpired {
			return nil, ErrContractExpired
		}
		return nil, ErrAlreadySigned
	}
	if err := s.DB.WithContext(ctx).First(&contract, contract.ID).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// expireIfDue persists the expired status when the validity window has
// elapsed. Signed contracts never expire; the status guard on the
// UPDATE enforces that even under concurrent signing.
func (s *ContractService) expireIfDue(ctx context.Context, contract *models.Contract) (bool, error) {
	if contract.Status == models.ContractExpired {
		return true, nil
	}
	if contract.Status != models.ContractPending && contract.Status != models.ContractViewed {
		return false, nil
	}
	if s.now().Before(contract.ExpiresAt) {
		return false, nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status IN ?", contract.ID, []string{models.ContractPending, models.ContractViewed}).
		Update("status", models.ContractExpired)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent signing committed first; report the fresh state.
		if err := s.DB.WithContext(ctx).First(contract, contract.ID).Error; err != nil {
			return false, err
		}
		return contract.Status == models.ContractExpired, nil
	}
	contract.Status = models.ContractExpired
	return true, nil
}

// ContractUpdate is the admin's partial update. Nil pointers leave the
// field untouched.
type ContractUpdate struct {
	ProjectName        *string  `json:"projectName"`
	ProjectDescription *string  `json:"projectDescription"`
	TotalPrice         *float64 `json:"totalPrice"`
	Currency           *string  `json:"currency"`
	Duration           *int     `json:"duration"`
	DurationUnit       *string  `json:"durationUnit"`
	AdvancePercentage  *float64 `json:"advancePercentage"`
	MidPercentage      *float64 `json:"midPercentage"`
	FinalPercentage    *float64 `json:"finalPercentage"`
	ContractTerms      *string  `json:"contractTerms"`
}

// Update merges admin edits. Any change touching price or percentages
// re-validates the sum-to-100 invariant and recomputes tranche amounts.
func (s *ContractService) Update(ctx context.Context, id uint, in ContractUpdate) (*models.Contract, error) {
	var contract models.Contract
	if err := s.DB.WithContext(ctx).First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	v := validation.Violations{}
	moneyTouched := false
	if in.ProjectName != nil {
		validation.Required("projectName", *in.ProjectName, v)
		contract.ProjectName = *in.ProjectName
	}
	if in.ProjectDescription != nil {
		contract.ProjectDescription = *in.ProjectDescription
	}
	if in.TotalPrice != nil {
		validation.NonNegativeFloat("totalPrice", *in.TotalPrice, v)
		contract.TotalPrice = *in.TotalPrice
		moneyTouched = true
	}
	if in.Currency != nil {
		validation.Required("currency", *in.Currency, v)
		contract.Currency = *in.Currency
	}
	if in.Duration != nil {
		validation.PositiveInt("duration", *in.Duration, v)
		contract.Duration = *in.Duration
	}
	if in.DurationUnit != nil {
		validation.OneOf("durationUnit", *in.DurationUnit, v, models.DurationDays, models.DurationWeeks, models.DurationMonths)
		contract.DurationUnit = *in.DurationUnit
	}
	if in.AdvancePercentage != nil {
		validation.RangeFloat("advancePercentage", *in.AdvancePercentage, 0, 100, v)
		contract.PaymentSchedule.Advance.Percentage = *in.AdvancePercentage
		moneyTouched = true
	}
	if in.MidPercentage != nil {
		validation.RangeFloat("midPercentage", *in.MidPercentage, 0, 100, v)
		contract.PaymentSchedule.Mid.Percentage = *in.MidPercentage
		moneyTouched = true
	}
	if in.FinalPercentage != nil {
		validation.RangeFloat("finalPercentage", *in.FinalPercentage, 0, 100, v)
		contract.PaymentSchedule.Final.Percentage = *in.FinalPercentage
		moneyTouched = true
	}
	if in.ContractTerms != nil {
		contract.ContractTerms = *in.ContractTerms
	}
	if moneyTouched && !PercentagesSumTo100(
		contract.PaymentSchedule.Advance.Percentage,
		contract.PaymentSchedule.Mid.Percentage,
		contract.PaymentSchedule.Final.Percentage,
	) {
		v["paymentSchedule"] = "percentages_must_sum_to_100"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if moneyTouched {
		RecomputeSchedule(&contract)
	}
	if err := s.DB.WithContext(ctx).Save(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// Delete removes the record permanently; the token stops resolving.
func (s *ContractService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Contract{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContractNotFound
	}
	return nil
}

// List returns contracts for the admin dashboard, newest first, with an
// optional status filter. Tokens are excluded by the model's JSON tags.
func (s *ContractService) List(ctx context.Context, status string) ([]models.Contract, error) {
	q := s.DB.WithContext(ctx).Preload("CreatedBy").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var contracts []models.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// Get loads one contract by internal id (admin surface).
func (s *ContractService) Get(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.DB.WithContext(ctx).Preload("CreatedBy").First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// DefaultContractTerms renders the standard terms template when the
// admin supplies none.
func DefaultContractTerms(advance, mid, final float64, duration int, durationUnit string) string {
	return `TERMS AND CONDITIONS

1. PROJECT SCOPE
The service provider agrees to deliver the project as described above within the specified timeline.

2. PAYMENT TERMS
- Advance Payment: ` + formatPercent(advance) + `% of total amount to be paid before project starts
- Mid Payment: ` + formatPercent(mid) + `% to be paid at 50% project completion
- Final Payment: ` + formatPercent(final) + `% to be paid upon project completion and delivery

3. TIMELINE
Project will be completed within ` + strconv.Itoa(duration) + ` ` + durationUnit + ` from the advance payment date.

4. REVISIONS
Up to 3 rounds of revisions are included in the project cost.

5. CANCELLATION
If the client cancels the project, advance payment is non-refundable.

6. INTELLECTUAL PROPERTY
Upon full payment, all rights to the deliverables will be transferred to the client.

7. CONFIDENTIALITY
Both parties agree to keep all project information confidential.

8. AGREEMENT
By signing this contract, both parties agree to the terms and conditions stated above.`
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
