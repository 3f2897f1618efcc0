package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"hub3-slips/internal/domain"
	"hub3-slips/internal/hub3"
	"hub3-slips/internal/repository"

	"github.com/google/uuid"
)

var ErrBatchTooLarge = errors.New("too many contacts for one batch")

type ContactRepository interface {
	Get(ctx context.Context, id int64) (*domain.Contact, error)
	List(ctx context.Context, f repository.ContactsFilter) ([]domain.Contact, error)
	HasMoreThan(ctx context.Context, limit int64, f repository.ContactsFilter) (bool, error)
}

type OrganizationRepository interface {
	Get(ctx context.Context, id int64) (*domain.Organization, error)
}

type PaymentTemplateRepository interface {
	Get(ctx context.Context, id int64) (*domain.PaymentTemplate, error)
	List(ctx context.Context) ([]domain.PaymentTemplate, error)
}

type BarcodeRenderer interface {
	RenderPNG(payload string) ([]byte, error)
}

type FileStore interface {
	Save(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	URL(ctx context.Context, name string) (string, error)
}

type Notifier interface {
	NotifyJobProgress(ctx context.Context, userID int64, jobID string, progress float64, stage string) error
	NotifyJobComplete(ctx context.Context, userID int64, jobID, url, filename string) error
	NotifyJobFailed(ctx context.Context, userID int64, jobID, errMsg string) error
}

const (
	DefaultMaxBatch = 50000

	progressChunk = 100
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SlipServiceDeps struct {
	Contacts      ContactRepository
	Organizations OrganizationRepository
	Templates     PaymentTemplateRepository

	Builder  *hub3.Builder
	Barcodes BarcodeRenderer

	Jobs  *JobStore
	Files FileStore
	WS    Notifier

	MaxBatch int64
}

type SlipService struct {
	contacts  ContactRepository
	orgs      OrganizationRepository
	templates PaymentTemplateRepository

	builder  *hub3.Builder
	barcodes BarcodeRenderer

	jobs  *JobStore
	files FileStore
	ws    Notifier

	maxBatch int64
	running  sync.WaitGroup
}

func NewSlipService(d SlipServiceDeps) *SlipService {
	if d.Builder == nil {
		d.Builder = hub3.NewBuilder(hub3.DefaultBankCode, hub3.DefaultCurrency, nil)
	}
	if d.MaxBatch <= 0 {
		d.MaxBatch = DefaultMaxBatch
	}
	return &SlipService{
		contacts:  d.Contacts,
		orgs:      d.Organizations,
		templates: d.Templates,
		builder:   d.Builder,
		barcodes:  d.Barcodes,
		jobs:      d.Jobs,
		files:     d.Files,
		ws:        d.WS,
		maxBatch:  d.MaxBatch,
	}
}

// Preview is a single slip rendered for display.
type Preview struct {
	TemplateID  int64    `json:"template_id"`
	ContactID   int64    `json:"contact_id"`
	Reference   string   `json:"reference"`
	Description string   `json:"description"`
	Lines       []string `json:"lines"`
	Payload     string   `json:"payload"`
	PNG         []byte   `json:"-"`
}

// TemplateView is a payment template as offered to the user.
type TemplateView struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	OrganizationID      int64  `json:"organization_id"`
	Amount              string `json:"amount"`
	PaymentModel        string `json:"payment_model"`
	ReferenceTemplate   string `json:"reference_template"`
	DescriptionTemplate string `json:"description_template"`
}

func (s *SlipService) Templates(ctx context.Context) ([]TemplateView, error) {
	list, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TemplateView, 0, len(list))
	for _, t := range list {
		views = append(views, TemplateView{
			ID:                  t.ID,
			Name:                t.Name,
			OrganizationID:      t.OrganizationID,
			Amount:              t.Amount.StringFixed(2),
			PaymentModel:        t.PaymentModel,
			ReferenceTemplate:   t.ReferenceTemplate,
			DescriptionTemplate: t.DescriptionTemplate,
		})
	}
	return views, nil
}

// templateWithOrganization loads a payment template and the organization
// that receives its payments.
func (s *SlipService) templateWithOrganization(ctx context.Context, templateID int64) (*domain.PaymentTemplate, *domain.Organization, error) {
	tmpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	org, err := s.orgs.Get(ctx, tmpl.OrganizationID)
	if err != nil {
		return nil, nil, err
	}
	return tmpl, org, nil
}

// buildSlip never fails: problems end up in Slip.Err.
func (s *SlipService) buildSlip(t domain.PaymentTemplate, o domain.Organization, c domain.Contact) domain.Slip {
	slip := domain.Slip{
		ContactID:   c.ID,
		ContactName: c.FullName(),
	}

	payload, err := s.builder.Build(slipRequest(t, o, c))
	if err != nil {
		slip.Err = err
		return slip
	}

	text := payload.String()
	if s.barcodes != nil {
		png, err := s.barcodes.RenderPNG(text)
		if err != nil {
			slip.Err = fmt.Errorf("barcode: %w", err)
			return slip
		}
		slip.PNG = png
	}

	slip.Reference = payload.Reference()
	slip.Description = payload.Description()
	slip.Payload = text
	return slip
}

func (s *SlipService) Preview(ctx context.Context, templateID, contactID int64) (*Preview, error) {
	tmpl, org, err := s.templateWithOrganization(ctx, templateID)
	if err != nil {
		return nil, err
	}
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}

	payload, err := s.builder.Build(slipRequest(*tmpl, *org, *contact))
	if err != nil {
		return nil, err
	}

	p := &Preview{
		TemplateID:  templateID,
		ContactID:   contactID,
		Reference:   payload.Reference(),
		Description: payload.Description(),
		Lines:       append([]string(nil), payload.Lines[:]...),
		Payload:     payload.String(),
	}
	if s.barcodes != nil {
		if p.PNG, err = s.barcodes.RenderPNG(p.Payload); err != nil {
			return nil, fmt.Errorf("barcode: %w", err)
		}
	}
	return p, nil
}

// StartBatch validates the template, records a queued job and generates the
// slips in the background. It returns the job id.
func (s *SlipService) StartBatch(
	ctx context.Context,
	templateID int64,
	filter repository.ContactsFilter,
	userID int64,
) (string, error) {
	tmpl, org, err := s.templateWithOrganization(ctx, templateID)
	if err != nil {
		return "", err
	}

	// amount and recipient problems would fail every slip
	if _, _, err := hub3.Build(slipRequest(*tmpl, *org, domain.Contact{})); err != nil {
		return "", err
	}

	tooMany, err := s.contacts.HasMoreThan(ctx, s.maxBatch, filter)
	if err != nil {
		return "", fmt.Errorf("count contacts: %w", err)
	}
	if tooMany {
		return "", fmt.Errorf("%w (limit %d)", ErrBatchTooLarge, s.maxBatch)
	}

	status := &JobStatus{
		Key:     fmt.Sprintf("jobs:%s", uuid.NewString()),
		Type:    JobTypeSlips,
		UserID:  userID,
		Filters: batchFilters(templateID, filter),
		Stage:   StageQueued,
		Created: time.Now(),
	}
	if err := s.jobs.Save(ctx, status); err != nil {
		log.Printf("[SLIP] %s: save status: %v", status.Key, err)
	}

	key := status.Key
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.runBatch(context.Background(), status, *tmpl, *org, filter)
	}()

	return key, nil
}

// Wait blocks until every started batch has finished.
func (s *SlipService) Wait() {
	s.running.Wait()
}

func (s *SlipService) runBatch(
	ctx context.Context,
	status *JobStatus,
	tmpl domain.PaymentTemplate,
	org domain.Organization,
	filter repository.ContactsFilter,
) {
	contacts, err := s.contacts.List(ctx, filter)
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("list contacts: %w", err))
		return
	}

	status.Total = len(contacts)
	status.Stage = StageGenerating
	s.progress(ctx, status, 0)

	slips := make([]domain.Slip, 0, len(contacts))
	for i, c := range contacts {
		slip := s.buildSlip(tmpl, org, c)
		if slip.Err != nil {
			status.Failed++
			log.Printf("[SLIP] %s: contact %d: %v", status.Key, c.ID, slip.Err)
		}
		slips = append(slips, slip)

		if (i+1)%progressChunk == 0 || i == len(contacts)-1 {
			// 100 is reserved for when the register is downloadable
			progress := math.Round(float64(i+1) / float64(len(contacts)) * 90)
			s.progress(ctx, status, progress)
		}
	}

	data, err := writeRegister(tmpl, org, slips)
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("write register: %w", err))
		return
	}

	status.Stage = StageUploading
	s.progress(ctx, status, 95)

	fileName := fmt.Sprintf("uplatnice_%d_%s.xlsx", tmpl.ID, time.Now().Format("20060102_150405"))
	saved, err := s.files.Save(ctx, fileName, xlsxMIME, data)
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("save register: %w", err))
		return
	}
	url, err := s.files.URL(ctx, saved)
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("register url: %w", err))
		return
	}

	status.FileURL = &url
	status.FileName = fileName
	status.Stage = StageReady
	s.progress(ctx, status, 100)

	if s.ws != nil {
		_ = s.ws.NotifyJobComplete(ctx, status.UserID, status.Key, url, fileName)
	}
	log.Printf("[SLIP] %s: %d slips, %d failed", status.Key, status.Total, status.Failed)
}

func (s *SlipService) progress(ctx context.Context, status *JobStatus, progress float64) {
	status.Progress = progress
	if err := s.jobs.Save(ctx, status); err != nil {
		log.Printf("[SLIP] %s: save status: %v", status.Key, err)
	}
	if s.ws != nil {
		_ = s.ws.NotifyJobProgress(ctx, status.UserID, status.Key, progress, status.Stage)
	}
}

func (s *SlipService) fail(ctx context.Context, status *JobStatus, err error) {
	log.Printf("[SLIP] %s: %v", status.Key, err)

	status.Stage = StageFailed
	status.Error = err.Error()
	_ = s.jobs.Save(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyJobFailed(ctx, status.UserID, status.Key, err.Error())
	}
}

func batchFilters(templateID int64, f repository.ContactsFilter) map[string]any {
	m := map[string]any{
		"template_id": templateID,
		"member_only": f.MemberOnly,
		"contact_ids": f.IDs,
		"city":        nil,
	}
	if f.City != nil {
		m["city"] = *f.City
	}
	return m
}
