package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/infrastructure/memory"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		status  entity.BillingStatus
		allowed bool
		warning bool
	}{
		{entity.BillingStatusActive, true, false},
		{entity.BillingStatusOverdue, true, true},
		{entity.BillingStatusSuspended, false, false},
		{"", true, false},
	}
	for _, tc := range cases {
		d := Decide(tc.status)
		assert.Equal(t, tc.allowed, d.Allowed, string(tc.status))
		assert.Equal(t, tc.warning, d.Warning, string(tc.status))
	}
}

func TestGate_Evaluate(t *testing.T) {
	s := memory.NewStore()
	s.SeedOrganization(entity.Organization{ID: "org1", BillingStatus: entity.BillingStatusSuspended})
	g := NewGate(memory.NewOrganizationRepository(s))

	d, err := g.Evaluate(context.Background(), "org1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	_, err = g.Evaluate(context.Background(), "desconocida")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = g.Evaluate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
