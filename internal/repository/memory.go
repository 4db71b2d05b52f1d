package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/domain"
)

// LeadMemory is an in-memory LeadRepository. It mirrors the single-record
// atomicity of the Postgres implementation and is used by tests and local
// runs without a database.
type LeadMemory struct {
	mu    sync.RWMutex
	leads map[string]*domain.Lead
	order []string
}

// NewLeadMemory creates an empty in-memory lead store.
func NewLeadMemory() *LeadMemory {
	return &LeadMemory{leads: make(map[string]*domain.Lead)}
}

func (m *LeadMemory) Create(_ context.Context, lead *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead.ID = uuid.NewString()
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	clone := *lead
	m.leads[lead.ID] = &clone
	m.order = append(m.order, lead.ID)
	return nil
}

func (m *LeadMemory) Update(_ context.Context, lead *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.leads[lead.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	lead.CreatedAt = stored.CreatedAt
	lead.UpdatedAt = time.Now()
	clone := *lead
	m.leads[lead.ID] = &clone
	return nil
}

func (m *LeadMemory) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (m *LeadMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leads[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.leads, id)
	for i, stored := range m.order {
		if stored == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *LeadMemory) List(_ context.Context, filter LeadFilter) ([]domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.Lead
	// newest first, matching the SQL ordering
	for i := len(m.order) - 1; i >= 0; i-- {
		lead := m.leads[m.order[i]]
		if !matchesFilter(lead, filter) {
			continue
		}
		result = append(result, *lead)
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *LeadMemory) SetAssignee(_ context.Context, leadID string, staffID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.leads[leadID]
	if !ok {
		return pgx.ErrNoRows
	}
	if staffID != nil {
		id := *staffID
		stored.AssignedTo = &id
	} else {
		stored.AssignedTo = nil
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *LeadMemory) ClearAssigneeForStaff(_ context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, stored := range m.leads {
		if stored.AssignedTo != nil && *stored.AssignedTo == staffID {
			stored.AssignedTo = nil
			stored.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (m *LeadMemory) CountGrouped(_ context.Context, field GroupField, scope LeadFilter) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, lead := range m.leads {
		if scope.AssignedTo != nil && (lead.AssignedTo == nil || *lead.AssignedTo != *scope.AssignedTo) {
			continue
		}
		var value string
		switch field {
		case GroupByStatus:
			value = string(lead.Status)
		case GroupBySource:
			value = lead.Source
		case GroupByCourse:
			value = lead.Course
		case GroupByInstitution:
			value = lead.Institution
		}
		if value == "" {
			value = "Not Specified"
		}
		counts[value]++
	}
	return counts, nil
}

func matchesFilter(lead *domain.Lead, filter LeadFilter) bool {
	if filter.AssignedTo != nil {
		if lead.AssignedTo == nil || *lead.AssignedTo != *filter.AssignedTo {
			return false
		}
	} else if filter.Unassigned && lead.AssignedTo != nil {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if lead.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Source != nil && lead.Source != *filter.Source {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(lead.Name), term) &&
			!strings.Contains(strings.ToLower(lead.Email), term) &&
			!strings.Contains(lead.Phone, term) {
			return false
		}
	}
	return true
}

// StaffMemory is an in-memory StaffRepository.
type StaffMemory struct {
	mu       sync.RWMutex
	accounts map[string]*domain.StaffAccount
	order    []string
}

// NewStaffMemory creates an empty in-memory staff store.
func NewStaffMemory() *StaffMemory {
	return &StaffMemory{accounts: make(map[string]*domain.StaffAccount)}
}

func (m *StaffMemory) Create(_ context.Context, account *domain.StaffAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account.ID = uuid.NewString()
	account.Email = strings.ToLower(account.Email)
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	clone := *account
	m.accounts[account.ID] = &clone
	m.order = append(m.order, account.ID)
	return nil
}

func (m *StaffMemory) Update(_ context.Context, account *domain.StaffAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Email = strings.ToLower(account.Email)
	account.CreatedAt = stored.CreatedAt
	account.UpdatedAt = time.Now()
	clone := *account
	m.accounts[account.ID] = &clone
	return nil
}

func (m *StaffMemory) GetByID(_ context.Context, id string) (*domain.StaffAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (m *StaffMemory) GetByEmail(_ context.Context, email string) (*domain.StaffAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(email)
	for _, stored := range m.accounts {
		if stored.Email == needle {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *StaffMemory) List(_ context.Context, filter StaffFilter) ([]domain.StaffAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.StaffAccount
	for i := len(m.order) - 1; i >= 0; i-- {
		account := m.accounts[m.order[i]]
		if filter.Role != nil && account.Role != *filter.Role {
			continue
		}
		result = append(result, *account)
	}
	return result, nil
}

func (m *StaffMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.accounts, id)
	for i, stored := range m.order {
		if stored == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *StaffMemory) CountByRole(_ context.Context, role domain.StaffRole) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, account := range m.accounts {
		if account.Role == role {
			count++
		}
	}
	return count, nil
}
