package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/internal/odootest"
	"github.com/optima-ops/revops-cli/pkg/callrail"
	"github.com/optima-ops/revops-cli/pkg/odoo"
)

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newCRM(t *testing.T) (*crm.Service, *odootest.Server) {
	t.Helper()
	srv := odootest.New()
	t.Cleanup(srv.Close)

	client := odoo.NewClient(srv.URL, odoo.Credentials{
		DB:       odootest.DB,
		Login:    odootest.Login,
		Password: odootest.Password,
	})
	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	return crm.New(client), srv
}

func mapper(t *testing.T, name string) *attribution.Mapper {
	t.Helper()
	m, err := attribution.Default().Get(name)
	require.NoError(t, err)
	return m
}

// stubCalls serves a fixed call list and records the last query.
type stubCalls struct {
	calls []callrail.Call
	err   error
	query callrail.CallQuery
}

func (s *stubCalls) ListCalls(_ context.Context, q callrail.CallQuery) ([]callrail.Call, error) {
	s.query = q
	return s.calls, s.err
}
