// Package booking drives the three step booking flow: concept, AI
// recommendation, package and payment.
package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Step int

const (
	StepConcept        Step = 1
	StepRecommendation Step = 2
	StepPackage        Step = 3
)

type Outcome string

const (
	OutcomeNone             Outcome = ""
	OutcomePaymentSucceeded Outcome = "payment_succeeded"
	OutcomePaymentFailed    Outcome = "payment_failed"
)

const (
	PaymentMethodCard = "card"

	recommendationFallback = "AI 추천을 가져오는데 실패했습니다."
	paymentFallback        = "결제 처리 중 오류가 발생했습니다."
)

type ModalKind string

const (
	ModalSuccess ModalKind = "success"
	ModalError   ModalKind = "error"
)

type Modal struct {
	Kind         ModalKind `json:"kind"`
	Message      string    `json:"message,omitempty"`
	OrderNumber  string    `json:"order_number,omitempty"`
	TotalDisplay string    `json:"total_display,omitempty"`
}

type Receipt struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	TotalAmount   int64  `json:"total_amount"`
	TotalDisplay  string `json:"total_display"`
	TransactionID string `json:"transaction_id"`
}

// IncidentRecorder keeps a trail of orders whose payment failed after creation.
type IncidentRecorder interface {
	RecordOrderIncident(ctx context.Context, incident models.OrderIncident) error
}

type View struct {
	ID              string                  `json:"id"`
	Step            Step                    `json:"step"`
	Loading         bool                    `json:"loading"`
	Concept         *models.ConceptDraft    `json:"concept,omitempty"`
	Recommendations []models.Recommendation `json:"recommendations"`
	SelectedModel   *models.ModelSummary    `json:"selected_model,omitempty"`
	SelectedPackage *models.PackageOption   `json:"selected_package,omitempty"`
	Packages        []models.PackageOption  `json:"packages"`
	CanSubmit       bool                    `json:"can_submit"`
	Modal           *Modal                  `json:"modal,omitempty"`
	Outcome         Outcome                 `json:"outcome,omitempty"`
	Receipt         *Receipt                `json:"receipt,omitempty"`
}

type Wizard struct {
	ID string

	user      models.CurrentUser
	service   services.BookingServiceProvider
	notifier  uistore.Notifier
	incidents IncidentRecorder

	mu              sync.Mutex
	step            Step
	loading         bool
	draft           *models.ConceptDraft
	recommendations []models.Recommendation
	selected        *models.ModelSummary
	pkg             *models.PackageOption
	modal           *Modal
	outcome         Outcome
	receipt         *Receipt
}

func NewWizard(user models.CurrentUser, service services.BookingServiceProvider, notifier uistore.Notifier, incidents IncidentRecorder) *Wizard {
	return &Wizard{
		ID:        uuid.NewString(),
		user:      user,
		service:   service,
		notifier:  notifier,
		incidents: incidents,
		step:      StepConcept,
	}
}

var validate = validator.New()

// NewConceptDraft trims and checks a brief: 1-500 characters, at most three image URLs.
func NewConceptDraft(concept string, images []string) (models.ConceptDraft, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return models.ConceptDraft{}, &ValidationError{Field: "concept", Message: "컨셉을 입력해주세요."}
	}
	if utf8.RuneCountInString(concept) > models.MaxConceptLength {
		return models.ConceptDraft{}, &ValidationError{
			Field:   "concept",
			Message: fmt.Sprintf("컨셉은 %d자 이내로 입력해주세요.", models.MaxConceptLength),
		}
	}
	if len(images) > models.MaxReferenceImages {
		return models.ConceptDraft{}, &ValidationError{
			Field:   "reference_images",
			Message: fmt.Sprintf("참고 이미지는 최대 %d장까지 첨부할 수 있습니다.", models.MaxReferenceImages),
		}
	}
	if err := validate.Var(images, "dive,required,url"); err != nil {
		return models.ConceptDraft{}, &ValidationError{Field: "reference_images", Message: "참고 이미지 URL이 올바르지 않습니다."}
	}
	cp := make([]string, len(images))
	copy(cp, images)
	return models.ConceptDraft{Concept: concept, ReferenceImages: cp}, nil
}

func (w *Wizard) logger() *log.Entry {
	return log.WithFields(log.Fields{"wizard_id": w.ID, "user_id": w.user.ID})
}

func (w *Wizard) toast(variant models.ToastVariant, message string) {
	if w.notifier != nil {
		w.notifier.AddToast(variant, message, 0)
	}
}

// begin checks that an action for step may start now. Caller holds mu.
func (w *Wizard) begin(step Step) error {
	if w.outcome == OutcomePaymentSucceeded {
		return ErrCompleted
	}
	if w.loading {
		return ErrBusy
	}
	if w.step != step {
		return ErrWrongStep
	}
	return nil
}

// SubmitConcept validates the brief and asks for recommendations. On failure
// the wizard stays on the concept step with the error modal open.
func (w *Wizard) SubmitConcept(ctx context.Context, concept string, images []string) error {
	w.mu.Lock()
	if err := w.begin(StepConcept); err != nil {
		w.mu.Unlock()
		return err
	}
	draft, err := NewConceptDraft(concept, images)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.loading = true
	w.modal = nil
	w.mu.Unlock()

	resp, err := w.service.GetRecommendations(context.WithoutCancel(ctx), draft.Concept, draft.ReferenceImages)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		msg := services.UserMessage(err, recommendationFallback)
		w.modal = &Modal{Kind: ModalError, Message: msg}
		w.logger().WithError(err).Warn("recommendation request failed")
		w.toast(models.ToastError, msg)
		return &StepError{Step: StepConcept, Message: msg, Err: err}
	}
	w.draft = &draft
	w.recommendations = resp.Recommendations
	w.selected = nil
	w.pkg = nil
	w.step = StepRecommendation
	return nil
}

// SelectModel picks exactly one of the recommended models and opens the package step.
func (w *Wizard) SelectModel(modelID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.begin(StepRecommendation); err != nil {
		return err
	}
	if modelID == "" {
		return ErrNoModelSelected
	}
	for _, rec := range w.recommendations {
		if rec.Model.ID == modelID {
			model := rec.Model
			w.selected = &model
			w.pkg = nil
			w.step = StepPackage
			return nil
		}
	}
	return ErrUnknownModel
}

func (w *Wizard) SelectPackage(packageType models.PackageType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.begin(StepPackage); err != nil {
		return err
	}
	opt, ok := models.FindPackage(packageType)
	if !ok {
		return ErrNoPackageSelected
	}
	w.pkg = &opt
	return nil
}

// SubmitPackage creates the order and then its payment. Both must succeed for
// the success modal; a payment failure after the order exists is recorded as an
// incident and left for operators.
func (w *Wizard) SubmitPackage(ctx context.Context) error {
	w.mu.Lock()
	if err := w.begin(StepPackage); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.selected == nil || w.draft == nil {
		w.mu.Unlock()
		return ErrNoModelSelected
	}
	if w.pkg == nil {
		w.mu.Unlock()
		return ErrNoPackageSelected
	}
	pkg := *w.pkg
	model := *w.selected
	concept := w.draft.Concept
	w.loading = true
	w.modal = nil
	w.outcome = ""
	w.mu.Unlock()

	// the sequence runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	logger := w.logger().WithFields(log.Fields{"model_id": model.ID, "package": pkg.Type})

	order, err := w.service.CreateOrder(ctx, models.CreateOrderIn{
		ModelID:            model.ID,
		CreatorID:          model.CreatorID,
		ConceptDescription: concept,
		PackageType:        pkg.Type,
		ImageCount:         pkg.ImageCount,
		TotalPrice:         pkg.Price,
		IsExclusive:        pkg.IsExclusive,
		ExclusiveMonths:    pkg.ExclusiveMonths,
	})
	if err != nil {
		logger.WithError(err).Warn("order creation failed")
		return w.failPayment(err)
	}
	logger = logger.WithField("order_id", order.ID)

	payment, err := w.service.CreatePayment(ctx, models.CreatePaymentIn{
		OrderID:       order.ID,
		PaymentMethod: PaymentMethodCard,
		Amount:        pkg.Price,
	})
	if err != nil {
		logger.WithError(err).Error("payment failed for created order")
		w.recordIncident(ctx, order, pkg.Price, err)
		return w.failPayment(err)
	}

	receipt := &Receipt{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   pkg.Price,
		TotalDisplay:  services.FormatWon(pkg.Price),
		TransactionID: payment.TransactionID,
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	w.outcome = OutcomePaymentSucceeded
	w.receipt = receipt
	w.modal = &Modal{Kind: ModalSuccess, OrderNumber: receipt.OrderNumber, TotalDisplay: receipt.TotalDisplay}
	logger.WithField("order_number", order.OrderNumber).Info("booking paid")
	w.toast(models.ToastSuccess, fmt.Sprintf("주문 %s 결제가 완료되었습니다.", order.OrderNumber))
	return nil
}

func (w *Wizard) failPayment(err error) error {
	msg := services.UserMessage(err, paymentFallback)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	w.outcome = OutcomePaymentFailed
	w.modal = &Modal{Kind: ModalError, Message: msg}
	w.toast(models.ToastError, msg)
	return &StepError{Step: StepPackage, Message: msg, Err: err}
}

func (w *Wizard) recordIncident(ctx context.Context, order *models.OrderCreated, amount int64, cause error) {
	sentry.CaptureException(fmt.Errorf("order %s created but payment failed: %w", order.ID, cause))
	if w.incidents == nil {
		return
	}
	err := w.incidents.RecordOrderIncident(ctx, models.OrderIncident{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      amount,
		UserID:      w.user.ID,
		Reason:      cause.Error(),
	})
	if err != nil {
		w.logger().WithError(err).Error("failed to record order incident")
		sentry.CaptureException(err)
	}
}

// GoToStep moves back to a step that was already reached. Forward moves only
// happen through successful submissions.
func (w *Wizard) GoToStep(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.outcome == OutcomePaymentSucceeded {
		return ErrCompleted
	}
	if w.loading {
		return ErrBusy
	}
	if step < StepConcept || step > w.step {
		return ErrForwardNavigation
	}
	w.step = step
	w.modal = nil
	w.outcome = ""
	return nil
}

func (w *Wizard) CloseModal() {
	w.mu.Lock()
	w.modal = nil
	w.mu.Unlock()
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		ID:              w.ID,
		Step:            w.step,
		Loading:         w.loading,
		Recommendations: append([]models.Recommendation(nil), w.recommendations...),
		Packages:        models.Packages(),
		CanSubmit:       w.step == StepPackage && w.pkg != nil && !w.loading && w.outcome != OutcomePaymentSucceeded,
		Outcome:         w.outcome,
	}
	if w.draft != nil {
		d := *w.draft
		v.Concept = &d
	}
	if w.selected != nil {
		m := *w.selected
		v.SelectedModel = &m
	}
	if w.pkg != nil {
		p := *w.pkg
		v.SelectedPackage = &p
	}
	if w.modal != nil {
		m := *w.modal
		v.Modal = &m
	}
	if w.receipt != nil {
		r := *w.receipt
		v.Receipt = &r
	}
	return v
}
