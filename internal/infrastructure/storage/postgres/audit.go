package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"penomoran/internal/core/audit"
	appctx "penomoran/internal/core/context"
	"penomoran/internal/core/id"
	"penomoran/pkg/logger"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the payload size above which payloads are stored zstd-compressed.
const defaultCompressThreshold = 4 * 1024

// AuditEntry represents a single numbering_audit row.
type AuditEntry struct {
	ID                id.ID           `db:"id" json:"id"`
	Action            audit.Action    `db:"action" json:"action"`
	Year              string          `db:"year" json:"year"`
	Scope             string          `db:"scope" json:"scope"`
	DepartmentCode    string          `db:"department_code" json:"departmentCode"`
	CounterID         *int64          `db:"counter_id" json:"counterId,omitempty"`
	Counter           int64           `db:"counter" json:"counter"`
	Number            *string         `db:"number" json:"number,omitempty"`
	DocumentID        *id.ID          `db:"document_id" json:"documentId,omitempty"`
	UserID            string          `db:"user_id" json:"userId,omitempty"`
	Payload           json.RawMessage `db:"payload" json:"payload,omitempty"`
	PayloadCompressed []byte          `db:"payload_compressed" json:"-"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

// AuditService writes numbering audit entries.
//
// Entries go through the pool, not the caller's transaction: a burned value
// must stay recorded after the document insert rolls back.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder. Failures are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, e audit.Event) {
	entry, err := s.newEntry(ctx, e)
	if err == nil {
		err = s.insert(ctx, entry)
	}
	if err != nil {
		logger.Warn(ctx, "numbering audit write failed",
			"action", e.Action, "counter", e.Counter, "number", e.Number, "error", err)
	}
}

// newEntry converts an event into a row, compressing large payloads.
func (s *AuditService) newEntry(ctx context.Context, e audit.Event) (AuditEntry, error) {
	entry := AuditEntry{
		ID:              id.New(),
		Action:          e.Action,
		Year:            e.Year,
		Scope:           e.Scope,
		DepartmentCode:  e.DepartmentCode,
		Counter:         e.Counter,
		DocumentID:      e.DocumentID,
		UserID:          appctx.GetUserID(ctx),
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}
	if e.CounterID > 0 {
		counterID := e.CounterID
		entry.CounterID = &counterID
	}
	if e.Number != "" {
		number := e.Number
		entry.Number = &number
	}

	if len(e.Payload) > 0 {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return AuditEntry{}, fmt.Errorf("marshal payload: %w", err)
		}
		entry.Payload = payload
		if len(payload) > s.compressThreshold {
			entry.PayloadCompressed = s.encoder.EncodeAll(payload, nil)
			entry.Payload = nil
			entry.CompressionAlgo = CompressionZstd
		}
	}
	return entry, nil
}

func (s *AuditService) insert(ctx context.Context, entry AuditEntry) error {
	sql := `
		INSERT INTO numbering_audit (
			id, action, year, scope, department_code, counter_id, counter,
			number, document_id, user_id, payload, payload_compressed,
			compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.txManager.Pool().Exec(ctx, sql,
		entry.ID, string(entry.Action), entry.Year, entry.Scope, entry.DepartmentCode,
		entry.CounterID, entry.Counter, entry.Number, entry.DocumentID, entry.UserID,
		entry.Payload, entry.PayloadCompressed, string(entry.CompressionAlgo), entry.CreatedAt,
	)
	return err
}

// History returns the newest audit entries for one counter row.
func (s *AuditService) History(ctx context.Context, counterID int64, limit int) ([]AuditEntry, error) {
	sql := `
		SELECT id, action, year, scope, department_code, counter_id, counter,
			   number, document_id, user_id, payload, payload_compressed,
			   compression_algo, created_at
		FROM numbering_audit
		WHERE counter_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, counterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e      AuditEntry
			action string
			algo   string
		)
		err := rows.Scan(
			&e.ID, &action, &e.Year, &e.Scope, &e.DepartmentCode, &e.CounterID, &e.Counter,
			&e.Number, &e.DocumentID, &e.UserID, &e.Payload, &e.PayloadCompressed,
			&algo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.CompressionAlgo = CompressionAlgo(algo)

		if err := s.decompress(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *AuditService) decompress(e *AuditEntry) error {
	if e.CompressionAlgo != CompressionZstd || len(e.PayloadCompressed) == 0 {
		return nil
	}
	payload, err := s.decoder.DecodeAll(e.PayloadCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress payload: %w", err)
	}
	e.Payload = payload
	e.PayloadCompressed = nil
	return nil
}
