package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/opsease/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorage stores archived statements
type ObjectStorage interface {
	// Upload stores data under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// StatementHeader is the column order of exported statements
var StatementHeader = []string{
	"entry_date", "party_name", "party_type", "entry_type",
	"amount", "balance", "reference", "description",
}

const statementContentType = "text/csv"

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Export writes the listing selected by filter as CSV, newest first
func (s *Service) Export(ctx context.Context, userID string, filter ListFilter, w io.Writer) (int, error) {
	entries, err := s.ListEntries(ctx, userID, filter)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(StatementHeader); err != nil {
		return 0, fmt.Errorf("failed to write statement header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.EntryDate.Format(shared.DateLayout),
			textCell(e.PartyName),
			e.PartyType,
			e.EntryType,
			e.Amount.StringFixed(2),
			e.Balance.StringFixed(2),
			textCell(e.Reference),
			textCell(e.Description),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write statement row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush statement: %w", err)
	}
	return len(entries), nil
}

// ArchiveStatement uploads the CSV statement to object storage and returns
// a presigned link to it
func (s *Service) ArchiveStatement(ctx context.Context, userID string, filter ListFilter) (*StatementResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeUnavailable, "Statement storage is not configured")
	}

	var buf bytes.Buffer
	count, err := s.Export(ctx, userID, filter, &buf)
	if err != nil {
		return nil, err
	}

	key := StatementKey(userID, filter.PartyName, s.now())
	if err := s.storage.Upload(ctx, key, buf.Bytes(), statementContentType); err != nil {
		s.logger.Error("failed to upload ledger statement",
			zap.String("user_id", userID),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upload statement: %w", err)
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.statementURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign statement URL: %w", err)
	}

	s.logger.Info("ledger statement archived",
		zap.String("user_id", userID),
		zap.String("key", key),
		zap.Int("entries", count),
	)

	return &StatementResponse{
		Key:         key,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		EntryCount:  count,
	}, nil
}

// StatementKey builds statements/<user>/<party|all>-<timestamp>.csv
func StatementKey(userID, partyName string, at time.Time) string {
	scope := "all"
	if p := strings.TrimSpace(partyName); p != "" {
		scope = sanitizeKeyPart(p)
	}
	return fmt.Sprintf("statements/%s/%s-%s.csv", sanitizeKeyPart(userID), scope, at.UTC().Format("20060102T150405Z"))
}

// textCell quotes free text that a spreadsheet would otherwise evaluate as
// a formula. Numeric columns are written as-is.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func sanitizeKeyPart(s string) string {
	s = unsafeKeyChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "_"
	}
	return s
}
