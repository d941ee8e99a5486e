package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callforge/callforge/pkg/interactions"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/models"
)

func TestLogCallEndpoint(t *testing.T) {
	db := setupTestDB(t)
	leadService := leads.NewService(db, nil, "US")
	h := NewCallLogHandler(interactions.NewService(db, nil), leadService, nil, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/leads", models.CreateLeadRequest{
		Name:  "Ring Me",
		Phone: "202-555-0123",
	}, models.RoleLowAdmin)
	require.NoError(t, NewLeadHandler(leadService).Create(c))
	var lead models.Lead
	decodeBody(t, rec, &lead)

	c, rec = newAuthedContext(t, http.MethodPost, "/api/v1/calls", models.LogCallRequest{
		LeadID:          lead.ID,
		CallStatus:      models.CallStatusAnswered,
		DurationMinutes: 3,
		Outcome:         models.OutcomeInterested,
	}, models.RoleLowAdmin)
	require.NoError(t, h.LogCall(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry models.CallLog
	decodeBody(t, rec, &entry)
	assert.Equal(t, 180, entry.Duration)

	t.Run("stats reflect the call", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/calls/stats", nil, models.RoleLowAdmin)
		require.NoError(t, h.GetCallStats(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var stats models.CallStats
		decodeBody(t, rec, &stats)
		assert.Equal(t, 1, stats.TotalCalls)
		assert.Equal(t, 1, stats.CompletedCalls)
	})

	t.Run("invalid call status rejected", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/calls", models.LogCallRequest{
			LeadID:     lead.ID,
			CallStatus: "ghosted",
		}, models.RoleLowAdmin)
		require.NoError(t, h.LogCall(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("click to call uses the gateway", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/leads/x/call", nil, models.RoleLowAdmin)
		c.SetParamNames("id")
		c.SetParamValues(lead.ID)
		require.NoError(t, h.InitiateCall(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "initiated")
	})
}
