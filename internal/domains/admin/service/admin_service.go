package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"flipper-backend/internal/domains/admin"
	"flipper-backend/internal/resource"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is satisfied by *jwt.Manager
type TokenIssuer interface {
	GenerateAdminToken() (string, time.Time, error)
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminService handles admin login and data export
type AdminService struct {
	passwordHash []byte
	tokens       TokenIssuer
	managers     map[string]*resource.Manager
}

// NewAdminService creates the service. managers are keyed by kind.
func NewAdminService(passwordHash string, tokens TokenIssuer, managers []*resource.Manager) *AdminService {
	byKind := make(map[string]*resource.Manager, len(managers))
	for _, m := range managers {
		byKind[m.Schema().Kind] = m
	}
	return &AdminService{
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		managers:     byKind,
	}
}

// Login checks password against the configured bcrypt hash and issues a token
func (s *AdminService) Login(password string) (*LoginResult, error) {
	if password == "" || s.tokens == nil {
		return nil, admin.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, admin.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAdminToken()
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Export builds a spreadsheet with every record of kind, newest first
func (s *AdminService) Export(ctx context.Context, kind string) (*excelize.File, error) {
	m, ok := s.managers[kind]
	if !ok {
		return nil, admin.ErrUnknownKind
	}

	records, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	f, err := buildSheet(m.Schema(), records)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildSheet(schema *resource.Schema, records []resource.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := titleCase(schema.Kind)
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// Row 1: Header
	headers := []string{"ID"}
	for _, name := range schema.FieldNames() {
		headers = append(headers, titleCase(name))
	}
	headers = append(headers, titleCase(schema.TimestampField))

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	// Data rows start at row 2
	for i, rec := range records {
		row := []interface{}{rec.ID}
		for _, name := range schema.FieldNames() {
			row = append(row, rec.Get(name))
		}
		row = append(row, rec.CreatedAt.UTC().Format(resource.TimestampLayout))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// titleCase turns "subscribedAt" into "Subscribed At"
func titleCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
