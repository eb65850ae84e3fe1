package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optima-ops/revops-cli/internal/odootest"
	"github.com/optima-ops/revops-cli/pkg/odoo"
	"github.com/optima-ops/revops-cli/pkg/sheets/sheetstest"
)

func odooClient(t *testing.T, password string) odoo.Client {
	t.Helper()
	srv := odootest.New()
	t.Cleanup(srv.Close)
	return odoo.NewClient(srv.URL, odoo.Credentials{DB: odootest.DB, Login: odootest.Login, Password: password})
}

func TestCheck(t *testing.T) {
	sheet := sheetstest.New("Ops")
	sheet.AddWorksheet("start", [][]string{{"Template:", "Board"}})
	sheet.AddWorksheet("other", nil)

	c := NewCheck(odooClient(t, odootest.Password), sheet, "start", "D4")
	c.now = clock
	res, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.UID)
	assert.Equal(t, "Ops", res.Title)
	assert.Equal(t, []string{"start", "other"}, res.Worksheets)
	assert.Equal(t, "Board", res.Probe)
	assert.Equal(t, "Test connection successful at 2025-03-10 15:00:00", sheet.At("start", "D4"))
}

func TestCheckOdooFailure(t *testing.T) {
	sheet := sheetstest.New("Ops")
	sheet.AddWorksheet("start", nil)

	_, err := NewCheck(odooClient(t, "wrong"), sheet, "start", "D4").Run(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, odoo.ErrAuth))
	assert.Equal(t, "", sheet.At("start", "D4"))
}

func TestCheckMissingWorksheet(t *testing.T) {
	_, err := NewCheck(odooClient(t, odootest.Password), sheetstest.New("Ops"), "start", "D4").Run(context.Background())
	assert.Error(t, err)
}
