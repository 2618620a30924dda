// Package schemes is the scheme and complaint data service. Mock serves
// fixtures and canned replies; Gemini swaps the replies for model output.
package schemes

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sahayakseva/backend/models"
)

var (
	ErrSchemeNotFound = errors.New("scheme not found")
	ErrEmptyMessage   = errors.New("message is empty")
)

type Service interface {
	ListEligibleSchemes(ctx context.Context) ([]models.Scheme, error)
	GetSchemeByID(ctx context.Context, id string) (*models.Scheme, error)
	SendSchemeMessage(ctx context.Context, text, schemeID string) (string, error)
	SendComplaintMessage(ctx context.Context, text string) (string, error)
}

//go:embed fixtures.json
var fixtures []byte

type Mock struct {
	schemes []models.Scheme
	latency time.Duration
}

func NewMock(latency time.Duration) (*Mock, error) {
	var list []models.Scheme
	if err := json.Unmarshal(fixtures, &list); err != nil {
		return nil, fmt.Errorf("load scheme fixtures: %w", err)
	}
	return &Mock{schemes: list, latency: latency}, nil
}

// NewMockWith serves the given schemes instead of the bundled fixtures.
func NewMockWith(list []models.Scheme, latency time.Duration) *Mock {
	return &Mock{schemes: list, latency: latency}
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Mock) ListEligibleSchemes(ctx context.Context) ([]models.Scheme, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return append([]models.Scheme{}, m.schemes...), nil
}

func (m *Mock) GetSchemeByID(ctx context.Context, id string) (*models.Scheme, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	for _, s := range m.schemes {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSchemeNotFound, id)
}

func (m *Mock) SendSchemeMessage(ctx context.Context, text, schemeID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if schemeID == "" {
		return "I can help with any government scheme. Tell me a little about what you need, for example pension, housing or scholarships, and I will point you to the right one.", nil
	}
	for _, s := range m.schemes {
		if s.ID == schemeID {
			return fmt.Sprintf("Thank you. I have noted that for your %s application. Please keep your Aadhaar card and bank passbook ready. What is the name of your bank branch?", s.Name), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSchemeNotFound, schemeID)
}

func (m *Mock) SendComplaintMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	ref := "CMP-" + strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("Your complaint has been registered with reference number %s. It will be forwarded to the concerned department and you should hear back within 7 working days.", ref), nil
}
