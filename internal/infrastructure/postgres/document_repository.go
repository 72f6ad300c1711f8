package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos (entradas, salidas, ventas) y sus líneas sobre PostgreSQL.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, tenant_id, kind, location_id, user_id, code, date, total, active, notes,
	supplier_id, reason_code, reference_type, reference_id, client_id, prior_service_ref, created_at, updated_at`

const insertLineSQL = `
	INSERT INTO document_lines (id, document_id, position, kind, product_id, unit_id, description,
		quantity, unit_price, subtotal, cost_reference)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Create persiste encabezado y líneas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.TenantID, string(doc.Kind), doc.LocationID, doc.UserID, doc.Code, doc.Date, doc.Total,
		doc.Active, doc.Notes, doc.SupplierID, doc.ReasonCode, doc.ReferenceType, doc.ReferenceID,
		doc.ClientID, doc.PriorServiceRef, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return r.insertLines(ctx, doc.ID, doc.Lines)
}

// GetByID obtiene el documento con sus líneas.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate obtiene el documento y bloquea su encabezado.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

// FindCompanion obtiene la salida generada por la venta.
func (r *DocumentRepo) FindCompanion(ctx context.Context, saleID string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE kind = 'issue' AND reference_type = 'sale' AND reference_id = $1
		ORDER BY created_at LIMIT 1`
	return r.getOne(ctx, query, saleID)
}

func (r *DocumentRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Lines, err = r.lines(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update actualiza los campos del encabezado.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET location_id = $2, date = $3, total = $4, active = $5, notes = $6,
			supplier_id = $7, reason_code = $8, reference_type = $9, reference_id = $10,
			client_id = $11, prior_service_ref = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, doc.LocationID, doc.Date, doc.Total, doc.Active, doc.Notes,
		doc.SupplierID, doc.ReasonCode, doc.ReferenceType, doc.ReferenceID,
		doc.ClientID, doc.PriorServiceRef, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceLines borra todas las líneas e inserta las nuevas.
func (r *DocumentRepo) ReplaceLines(ctx context.Context, documentID string, lines []entity.DocumentLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, documentID, lines)
}

// SetActive activa o desactiva el documento.
func (r *DocumentRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE documents SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set document active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista encabezados (sin líneas) con el total de coincidencias.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, int, error) {
	conds := []string{"tenant_id = $1", "kind = $2"}
	args := []any{f.TenantID, string(f.Kind)}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		conds = append(conds, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		conds = append(conds, fmt.Sprintf("active = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER()
		FROM documents WHERE %s
		ORDER BY created_at DESC, code DESC
		LIMIT $%d OFFSET $%d`,
		documentColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.Document
		total int
	)
	for rows.Next() {
		doc, err := scanDocument(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	return list, total, rows.Err()
}

// ListActiveReceiptPrices precios unitarios de líneas de entradas activas del producto/unidad en la sede.
func (r *DocumentRepo) ListActiveReceiptPrices(ctx context.Context, tenantID, locationID, productID, unitID string) ([]decimal.Decimal, error) {
	query := `
		SELECT l.unit_price
		FROM document_lines l
		JOIN documents d ON d.id = l.document_id
		WHERE d.tenant_id = $1 AND d.location_id = $2 AND d.kind = 'receipt' AND d.active
		  AND l.kind = 'product' AND l.product_id = $3 AND l.unit_id = $4`
	rows, err := r.q.Query(ctx, query, tenantID, locationID, productID, unitID)
	if err != nil {
		return nil, fmt.Errorf("list receipt prices: %w", err)
	}
	defer rows.Close()
	var prices []decimal.Decimal
	for rows.Next() {
		var p decimal.Decimal
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan receipt price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *DocumentRepo) lines(ctx context.Context, documentID string) ([]entity.DocumentLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, position, kind, COALESCE(product_id::text, ''), unit_id, description,
			quantity, unit_price, subtotal, cost_reference
		FROM document_lines WHERE document_id = $1 ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.DocumentLine
	for rows.Next() {
		var (
			l    entity.DocumentLine
			kind string
		)
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Position, &kind, &l.ProductID, &l.UnitID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Subtotal, &l.CostReference); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		l.Kind = entity.LineKind(kind)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *DocumentRepo) insertLines(ctx context.Context, documentID string, lines []entity.DocumentLine) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(insertLineSQL,
			l.ID, documentID, l.Position, string(l.Kind), nullIfEmpty(l.ProductID), l.UnitID, l.Description,
			l.Quantity, l.UnitPrice, l.Subtotal, l.CostReference,
		)
	}
	if err := execBatch(ctx, r.q, batch); err != nil {
		return fmt.Errorf("insert document lines: %w", err)
	}
	return nil
}

// scanDocument escanea un encabezado; extra recibe columnas adicionales al final (p. ej. COUNT(*) OVER()).
func scanDocument(row pgx.Row, extra ...any) (*entity.Document, error) {
	var (
		d    entity.Document
		kind string
	)
	dest := []any{
		&d.ID, &d.TenantID, &kind, &d.LocationID, &d.UserID, &d.Code, &d.Date, &d.Total, &d.Active, &d.Notes,
		&d.SupplierID, &d.ReasonCode, &d.ReferenceType, &d.ReferenceID, &d.ClientID, &d.PriorServiceRef,
		&d.CreatedAt, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	d.Kind = entity.DocumentKind(kind)
	return &d, nil
}
