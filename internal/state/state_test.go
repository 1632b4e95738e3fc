package state

import (
	"testing"

	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func client() *models.Client {
	return &models.Client{ID: "cli_1", Email: "jean.dupont@startup.io"}
}

func TestApplyAndGet(t *testing.T) {
	store := NewStore()

	store.Apply(client(),
		[]models.Project{{ID: "proj_1", Name: "Website Redesign"}},
		[]models.Ticket{{ID: "tick_1", Title: "Mobile menu broken"}})

	snap := store.Get("cli_1")
	require.NotNil(t, snap)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Tickets, 1)

	assert.Nil(t, store.Get("cli_unknown"))
}

func TestApplyDoesNotClobberWithEmpty(t *testing.T) {
	store := NewStore()

	store.Apply(client(),
		[]models.Project{{ID: "proj_1"}},
		[]models.Ticket{{ID: "tick_1"}})

	// A later fetch with empty sub-lists keeps the existing data.
	store.Apply(client(), []models.Project{}, nil)

	snap := store.Get("cli_1")
	require.NotNil(t, snap)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Tickets, 1)

	// Non-empty lists do replace.
	store.Apply(client(),
		[]models.Project{{ID: "proj_1"}, {ID: "proj_2"}},
		[]models.Ticket{{ID: "tick_2"}})

	snap = store.Get("cli_1")
	assert.Len(t, snap.Projects, 2)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, "tick_2", snap.Tickets[0].ID)
}

func TestPrependTicket(t *testing.T) {
	store := NewStore()
	store.Apply(client(), nil, []models.Ticket{{ID: "tick_1"}})

	store.PrependTicket("cli_1", models.Ticket{ID: "tick_2"})

	snap := store.Get("cli_1")
	require.Len(t, snap.Tickets, 2)
	assert.Equal(t, "tick_2", snap.Tickets[0].ID, "newest ticket first")

	// Prepending for an unresolved client is a no-op.
	store.PrependTicket("cli_unknown", models.Ticket{ID: "tick_3"})
	assert.Nil(t, store.Get("cli_unknown"))
}

func TestDrop(t *testing.T) {
	store := NewStore()
	store.Apply(client(), nil, nil)
	require.NotNil(t, store.Get("cli_1"))

	store.Drop("cli_1")
	assert.Nil(t, store.Get("cli_1"))
	assert.Empty(t, store.ClientIDs())
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Apply(client(), nil, []models.Ticket{{ID: "tick_1", Status: "New"}})

	snap := store.Get("cli_1")
	snap.Tickets[0].Status = "Done"

	assert.Equal(t, "New", store.Get("cli_1").Tickets[0].Status)
}
