package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/facturier/internal/domain"
)

// ExportUseCase coordinates rendering of a document and, when withholding
// is enabled, its withholding certificate. Export never mutates the ledger;
// render calls run without any ledger lock held.
type ExportUseCase struct {
	repo       LedgerRepository
	renderer   Renderer
	idGen      IDGenerator
	notifier   Notifier
	logger     zerolog.Logger
	stylesheet string
}

// ExportConfig holds dependencies for ExportUseCase.
type ExportConfig struct {
	Repo       LedgerRepository
	Renderer   Renderer
	IDGen      IDGenerator
	Notifier   Notifier
	Logger     zerolog.Logger
	Stylesheet string
}

// NewExportUseCase creates a new ExportUseCase.
func NewExportUseCase(cfg ExportConfig) *ExportUseCase {
	if cfg.Stylesheet == "" {
		cfg.Stylesheet = "classic"
	}
	return &ExportUseCase{
		repo:       cfg.Repo,
		renderer:   cfg.Renderer,
		idGen:      cfg.IDGen,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		stylesheet: cfg.Stylesheet,
	}
}

// ExportResult aggregates both render outcomes. Certificate is nil when
// withholding is disabled or its render failed; CertificateError is set
// only in the latter case.
type ExportResult struct {
	Primary          *RenderResult
	Certificate      *RenderResult
	CertificateError bool
}

// Export re-derives the document's totals and requests rendering of the
// primary document plus, if withholding is enabled, the certificate.
// A primary render failure fails the whole export; a certificate failure
// degrades to a warning since the main document already exists.
func (uc *ExportUseCase) Export(ctx context.Context, key domain.LedgerKey) (*ExportResult, error) {
	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}

	entry, err := uc.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry.Deleted {
		return nil, fmt.Errorf("%w: %s is deleted", domain.ErrNotFound, key)
	}

	doc := entry.Document

	// Never trust a cached Totals from a prior session; a stale breakdown
	// must not reach the exported file after an edit.
	totals, err := domain.ComputeTotals(doc.Items, doc.Extras)
	if err != nil {
		return nil, err
	}
	doc.Totals = totals

	primary, err := uc.renderer.Render(ctx, uc.primaryRequest(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: primary document %s: %v", domain.ErrRenderFailure, key, err)
	}

	result := &ExportResult{Primary: primary}

	if doc.Extras.Withholding.Enabled {
		certificate, err := uc.renderer.Render(ctx, uc.certificateRequest(doc))
		if err != nil {
			uc.logger.Warn().
				Err(err).
				Str("key", key.String()).
				Msg("withholding certificate render failed, primary kept")
			result.CertificateError = true
		} else {
			result.Certificate = certificate
		}
	}

	uc.notify(EventExportCompleted, key)

	uc.logger.Info().
		Str("key", key.String()).
		Str("file", primary.FilePath).
		Bool("certificate", result.Certificate != nil).
		Msg("document exported")

	return result, nil
}

func (uc *ExportUseCase) primaryRequest(doc domain.Document) RenderRequest {
	reference := doc.Key.String()
	return RenderRequest{
		ID:         uc.idGen.Generate(),
		Content:    contentView(doc, reference),
		Stylesheet: uc.stylesheet,
		Metadata: RenderMetadata{
			Series:   doc.Key.Series,
			Number:   doc.Key.Number,
			Kind:     "document",
			Filename: reference + ".pdf",
			Title:    reference,
		},
	}
}

func (uc *ExportUseCase) certificateRequest(doc domain.Document) RenderRequest {
	reference := doc.Key.String()
	return RenderRequest{
		ID:         uc.idGen.Generate(),
		Content:    contentView(doc, reference),
		Stylesheet: uc.stylesheet,
		Metadata: RenderMetadata{
			Series:   doc.Key.Series,
			Number:   doc.Key.Number,
			Kind:     "certificate",
			Filename: reference + "-retenue.pdf",
			Title:    reference + " - retenue à la source",
		},
	}
}

func contentView(doc domain.Document, reference string) RenderContent {
	return RenderContent{
		Reference: reference,
		Client:    doc.Client,
		Items:     doc.Items,
		Extras:    doc.Extras,
		Totals:    doc.Totals,
		Notes:     doc.Notes,
	}
}

func (uc *ExportUseCase) notify(event string, payload any) {
	if uc.notifier != nil {
		uc.notifier.Notify(event, payload)
	}
}
