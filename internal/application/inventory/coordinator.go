package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// DefaultTxAttempts intentos de una transacción ante fallos transitorios.
const DefaultTxAttempts = 3

// CoordinatorDeps dependencias del coordinador.
type CoordinatorDeps struct {
	TxRunner  TxRunner
	Sequences *SequenceGenerator
	Ledger    *StockLedger
	Valuation *CostValuationService
	Locations repository.LocationRepository
	Products  repository.ProductRepository
	Documents repository.DocumentRepository
	Logger    zerolog.Logger
	Metrics   Recorder
	// MaxTxAttempts <= 0 usa DefaultTxAttempts.
	MaxTxAttempts int
}

// Coordinator registra entradas, salidas y ventas de forma atómica: encabezado, líneas,
// número de secuencia y movimientos de existencias se confirman o se revierten juntos.
type Coordinator struct {
	txRunner    TxRunner
	sequences   *SequenceGenerator
	ledger      *StockLedger
	valuation   *CostValuationService
	locations   repository.LocationRepository
	products    repository.ProductRepository
	documents   repository.DocumentRepository
	log         zerolog.Logger
	metrics     Recorder
	maxAttempts int
	now         func() time.Time
}

// NewCoordinator construye el coordinador.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	attempts := deps.MaxTxAttempts
	if attempts <= 0 {
		attempts = DefaultTxAttempts
	}
	var rec Recorder = nopRecorder{}
	if deps.Metrics != nil {
		rec = deps.Metrics
	}
	return &Coordinator{
		txRunner:    deps.TxRunner,
		sequences:   deps.Sequences,
		ledger:      deps.Ledger,
		valuation:   deps.Valuation,
		locations:   deps.Locations,
		products:    deps.Products,
		documents:   deps.Documents,
		log:         deps.Logger,
		metrics:     rec,
		maxAttempts: attempts,
		now:         time.Now,
	}
}

// Create valida la entrada, carga sede y productos, y en una sola transacción bloquea las claves
// de stock, verifica disponibilidad, asigna código, persiste y aplica los movimientos.
// Una venta genera además su salida acompañante.
func (c *Coordinator) Create(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, in dto.DocumentRequest) (_ *dto.DocumentResponse, err error) {
	defer c.observe(kind, "create", time.Now(), &err)
	if err := validateDocument(kind, in); err != nil {
		return nil, err
	}
	tenantID, err := tenantFor(actor, in.TenantID)
	if err != nil {
		return nil, err
	}
	loc, err := c.loadLocation(ctx, tenantID, in.LocationID)
	if err != nil {
		return nil, err
	}
	tenantID = loc.TenantID

	now := c.now()
	doc := &entity.Document{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Kind:       kind,
		LocationID: loc.ID,
		UserID:     actor.UserID,
		Date:       documentDate(in, now),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyHeader(doc, in)
	lines, err := c.buildLines(ctx, tenantID, doc.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	doc.Total = sumSubtotals(lines)

	var companion *entity.Document
	err = c.runTx(ctx, "create", func(repos Repositories) error {
		var err error
		companion, err = c.create(ctx, repos, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := c.log.Info().
		Str("tenant_id", doc.TenantID).
		Str("kind", string(doc.Kind)).
		Str("code", doc.Code).
		Int("lines", len(doc.Lines))
	if companion != nil {
		ev = ev.Str("companion_code", companion.Code)
	}
	ev.Msg("documento registrado")
	return toDocumentResponse(doc, companion), nil
}

func (c *Coordinator) create(ctx context.Context, repos Repositories, doc *entity.Document) (*entity.Document, error) {
	deltas := effectOf(doc)
	view, err := c.ledger.Lock(ctx, repos.Stock(), keysOf(deltas))
	if err != nil {
		return nil, err
	}
	if err := checkAvailability(doc, view); err != nil {
		return nil, err
	}
	code, err := c.sequences.Next(ctx, repos.Sequences(), doc.TenantID, doc.Kind.CodePrefix())
	if err != nil {
		return nil, err
	}
	doc.Code = code

	if doc.Kind == entity.DocumentSale {
		if err := c.valuateSaleLines(ctx, repos.Documents(), doc); err != nil {
			return nil, err
		}
	}
	if err := repos.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}

	var companion *entity.Document
	if doc.Kind == entity.DocumentSale && len(doc.ProductLines()) > 0 {
		issueCode, err := c.sequences.Next(ctx, repos.Sequences(), doc.TenantID, entity.PrefixIssue)
		if err != nil {
			return nil, err
		}
		companion = newCompanion(doc, issueCode, doc.CreatedAt)
		if err := repos.Documents().Create(ctx, companion); err != nil {
			return nil, err
		}
	}
	if err := c.ledger.Apply(ctx, repos.Stock(), deltas); err != nil {
		return nil, err
	}
	return companion, nil
}

// Edit reemplaza encabezado y líneas de un documento activo. El efecto anterior en existencias
// se revierte y se aplica el nuevo en la misma transacción: cada clave termina en actual - viejo + nuevo.
// Las líneas salientes nuevas se validan contra la vista ya revertida.
func (c *Coordinator) Edit(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, id string, in dto.DocumentRequest) (_ *dto.DocumentResponse, err error) {
	defer c.observe(kind, "edit", time.Now(), &err)
	if err := validateDocument(kind, in); err != nil {
		return nil, err
	}
	current, err := c.loadDocument(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}
	if current.IsCompanion() {
		return nil, fmt.Errorf("la salida %s pertenece a una venta: %w", current.Code, domain.ErrConflict)
	}
	if !current.Active {
		return nil, fmt.Errorf("el documento %s está inactivo: %w", current.Code, domain.ErrConflict)
	}
	if in.TenantID != "" && in.TenantID != current.TenantID {
		return nil, domain.ErrForbidden
	}
	loc, err := c.loadLocation(ctx, current.TenantID, in.LocationID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	upd := &entity.Document{
		ID:         current.ID,
		TenantID:   current.TenantID,
		Kind:       current.Kind,
		LocationID: loc.ID,
		UserID:     current.UserID,
		Code:       current.Code,
		Date:       documentDate(in, current.Date),
		Active:     true,
		CreatedAt:  current.CreatedAt,
		UpdatedAt:  now,
	}
	applyHeader(upd, in)
	lines, err := c.buildLines(ctx, upd.TenantID, upd.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	upd.Lines = lines
	upd.Total = sumSubtotals(lines)

	var companion *entity.Document
	err = c.runTx(ctx, "edit", func(repos Repositories) error {
		var err error
		companion, err = c.edit(ctx, repos, upd, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Str("tenant_id", upd.TenantID).
		Str("kind", string(upd.Kind)).
		Str("code", upd.Code).
		Int("lines", len(upd.Lines)).
		Msg("documento editado")
	return toDocumentResponse(upd, companion), nil
}

func (c *Coordinator) edit(ctx context.Context, repos Repositories, upd *entity.Document, now time.Time) (*entity.Document, error) {
	locked, err := repos.Documents().GetForUpdate(ctx, upd.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, domain.ErrNotFound
	}
	if !locked.Active {
		return nil, fmt.Errorf("el documento %s está inactivo: %w", locked.Code, domain.ErrConflict)
	}

	// Efecto vigente calculado con las líneas previas al borrado.
	var previous []domaininv.Delta
	var companion *entity.Document
	if locked.Kind == entity.DocumentSale {
		companion, err = repos.Documents().FindCompanion(ctx, locked.ID)
		if err != nil {
			return nil, err
		}
		if companion != nil {
			previous = domaininv.DocumentDeltas(companion)
		}
	} else {
		previous = domaininv.DocumentDeltas(locked)
	}
	reversal := domaininv.Reverse(previous)
	next := effectOf(upd)

	view, err := c.ledger.Lock(ctx, repos.Stock(), keysOf(reversal, next))
	if err != nil {
		return nil, err
	}
	for _, d := range reversal {
		view[d.Key] = view[d.Key].Add(d.Quantity)
	}
	if err := checkAvailability(upd, view); err != nil {
		return nil, err
	}

	if upd.Kind == entity.DocumentSale {
		if err := c.valuateSaleLines(ctx, repos.Documents(), upd); err != nil {
			return nil, err
		}
	}
	if err := repos.Documents().ReplaceLines(ctx, upd.ID, upd.Lines); err != nil {
		return nil, err
	}
	if err := repos.Documents().Update(ctx, upd); err != nil {
		return nil, err
	}
	if upd.Kind == entity.DocumentSale {
		companion, err = c.syncCompanion(ctx, repos, upd, companion, now)
		if err != nil {
			return nil, err
		}
	}
	if err := c.ledger.Apply(ctx, repos.Stock(), append(reversal, next...)); err != nil {
		return nil, err
	}
	return companion, nil
}

// Deactivate marca el documento como inactivo (y la salida acompañante de una venta).
// No revierte existencias. Desactivar un documento ya inactivo no tiene efecto.
func (c *Coordinator) Deactivate(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, id string) (_ *dto.DocumentResponse, err error) {
	defer c.observe(kind, "deactivate", time.Now(), &err)
	current, err := c.loadDocument(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}
	if current.IsCompanion() {
		return nil, fmt.Errorf("la salida %s pertenece a una venta: %w", current.Code, domain.ErrConflict)
	}

	var doc, companion *entity.Document
	err = c.runTx(ctx, "deactivate", func(repos Repositories) error {
		locked, err := repos.Documents().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		doc = locked
		if locked.Kind == entity.DocumentSale {
			companion, err = repos.Documents().FindCompanion(ctx, locked.ID)
			if err != nil {
				return err
			}
		}
		if !locked.Active {
			return nil
		}
		if err := repos.Documents().SetActive(ctx, locked.ID, false); err != nil {
			return err
		}
		locked.Active = false
		if companion != nil && companion.Active {
			if err := repos.Documents().SetActive(ctx, companion.ID, false); err != nil {
				return err
			}
			companion.Active = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Str("tenant_id", doc.TenantID).
		Str("kind", string(doc.Kind)).
		Str("code", doc.Code).
		Msg("documento desactivado")
	return toDocumentResponse(doc, companion), nil
}

// Get devuelve el documento con sus líneas; para una venta incluye la referencia a su salida.
func (c *Coordinator) Get(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, id string) (*dto.DocumentResponse, error) {
	doc, err := c.loadDocument(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}
	var companion *entity.Document
	if doc.Kind == entity.DocumentSale {
		companion, err = c.documents.FindCompanion(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
	}
	return toDocumentResponse(doc, companion), nil
}

// List lista documentos del tipo con paginación. Un superadmin debe indicar el tenant.
func (c *Coordinator) List(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, in dto.DocumentListRequest) (*dto.DocumentListResponse, error) {
	tenantID, err := tenantFor(actor, in.TenantID)
	if err != nil {
		return nil, err
	}
	if tenantID == "" {
		return nil, domain.NewValidationError("tenant_id", "es requerido")
	}
	in.DefaultPage()
	docs, total, err := c.documents.List(ctx, repository.DocumentFilter{
		TenantID:   tenantID,
		Kind:       kind,
		LocationID: in.LocationID,
		Active:     in.Active,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, *toDocumentResponse(d, nil))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// runTx ejecuta fn en una transacción y la reintenta ante domain.ErrTransient.
func (c *Coordinator) runTx(ctx context.Context, op string, fn func(repos Repositories) error) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTransient) || ctx.Err() != nil {
			return err
		}
		c.metrics.TxRetry(op)
		c.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto transitorio, reintentando")
	}
	return err
}

func (c *Coordinator) observe(kind entity.DocumentKind, op string, start time.Time, errp *error) {
	c.metrics.ObserveDocument(string(kind), op, outcomeOf(*errp), time.Since(start))
}

// outcomeOf clasifica el resultado de una operación para las métricas.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "denied"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrTransient):
		return "transient"
	}
	return "error"
}

func (c *Coordinator) loadDocument(ctx context.Context, actor entity.ActorContext, kind entity.DocumentKind, id string) (*entity.Document, error) {
	doc, err := c.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind != kind {
		return nil, fmt.Errorf("documento %s: %w", id, domain.ErrNotFound)
	}
	if err := authorize(actor, doc.TenantID); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadLocation carga la sede y verifica que pertenezca al tenant (vacío = el de la sede).
func (c *Coordinator) loadLocation(ctx context.Context, tenantID, locationID string) (*entity.Location, error) {
	loc, err := c.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("sede %s: %w", locationID, domain.ErrNotFound)
	}
	if tenantID != "" && loc.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return loc, nil
}

// buildLines arma las líneas con sus productos cargados. Un subtotal en cero se calcula
// como cantidad * precio; uno informado se respeta.
func (c *Coordinator) buildLines(ctx context.Context, tenantID, documentID string, in []dto.DocumentLineRequest) ([]entity.DocumentLine, error) {
	products := make(map[string]*entity.Product)
	verr := &domain.ValidationError{}
	lines := make([]entity.DocumentLine, 0, len(in))
	for i, l := range in {
		line := entity.DocumentLine{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			Position:    i + 1,
			Kind:        lineKind(l),
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    lineSubtotal(l),
		}
		if line.Kind == entity.LineProduct {
			p, ok := products[l.ProductID]
			if !ok {
				var err error
				p, err = c.products.GetByID(ctx, l.ProductID)
				if err != nil {
					return nil, err
				}
				products[l.ProductID] = p
			}
			if p == nil {
				return nil, fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
			}
			if p.TenantID != tenantID {
				return nil, domain.ErrForbidden
			}
			if !p.HasUnit(l.UnitID) {
				verr.Add(fmt.Sprintf("lines[%d].unit_id", i), "la unidad no está asociada al producto")
			}
			line.ProductID = p.ID
			line.UnitID = l.UnitID
			if line.Description == "" {
				line.Description = p.Name
			}
		}
		lines = append(lines, line)
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return lines, nil
}

// tenantFor resuelve el tenant de la operación. Un usuario normal solo opera sobre el suyo;
// un superadmin usa el indicado (vacío = se toma de la sede).
func tenantFor(actor entity.ActorContext, explicit string) (string, error) {
	if actor.SuperAdmin {
		return explicit, nil
	}
	if actor.TenantID == "" {
		return "", domain.ErrUnauthorized
	}
	if explicit != "" && explicit != actor.TenantID {
		return "", domain.ErrForbidden
	}
	return actor.TenantID, nil
}

func authorize(actor entity.ActorContext, tenantID string) error {
	if actor.SuperAdmin {
		return nil
	}
	if actor.TenantID == "" {
		return domain.ErrUnauthorized
	}
	if actor.TenantID != tenantID {
		return domain.ErrForbidden
	}
	return nil
}

func documentDate(in dto.DocumentRequest, def time.Time) time.Time {
	if in.Date != nil && !in.Date.IsZero() {
		return *in.Date
	}
	return def
}
