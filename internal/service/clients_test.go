package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomtax/backoffice/internal/model"
)

func TestCreateClientAutoNumbering(t *testing.T) {
	ts := newTestServer(t)

	first := ts.createClient(model.Client{CompanyName: "첫번째"})
	assert.Equal(t, "1", first.Number)

	second := ts.createClient(model.Client{CompanyName: "두번째"})
	assert.Equal(t, "2", second.Number)

	// Explicit numbers leave a gap, which auto-assignment fills.
	ts.createClient(model.Client{CompanyName: "다섯번째", Number: "5"})
	gapFill := ts.createClient(model.Client{CompanyName: "세번째"})
	assert.Equal(t, "3", gapFill.Number)
}

func TestCreateClientDuplicateNumberConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.createClient(model.Client{CompanyName: "선점", Number: "7"})

	rec := ts.do(http.MethodPost, "/api/clients", model.Client{CompanyName: "충돌", Number: "7"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `7`)
}

func TestCreateClientReusesTerminatedNumber(t *testing.T) {
	ts := newTestServer(t)
	dead := ts.createClient(model.Client{CompanyName: "폐업", Number: "4"})

	dead.IsTerminated = true
	rec := ts.do(http.MethodPut, "/api/clients/"+dead.ID, dead)
	require.Equal(t, http.StatusOK, rec.Code)

	// Explicit reuse of a terminated client's number is allowed...
	rec = ts.do(http.MethodPost, "/api/clients", model.Client{CompanyName: "신규", Number: "4"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// ...but gap-filling still treats it as taken.
	auto := ts.createClient(model.Client{CompanyName: "자동"})
	assert.NotEqual(t, "4", auto.Number)
}

func TestUpdateClientKeepsOwnNumber(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "그대로", Number: "9"})

	c.Manager = "김담당"
	rec := ts.do(http.MethodPut, "/api/clients/"+c.ID, c)
	assert.Equal(t, http.StatusOK, rec.Code, "a client may keep its own number on update")
}

func TestUpdateClientNumberCollision(t *testing.T) {
	ts := newTestServer(t)
	ts.createClient(model.Client{CompanyName: "하나", Number: "1"})
	two := ts.createClient(model.Client{CompanyName: "둘", Number: "2"})

	two.Number = "1"
	rec := ts.do(http.MethodPut, "/api/clients/"+two.ID, two)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListClientsTerminatedFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.createClient(model.Client{CompanyName: "활성", Number: "1"})
	dead := ts.createClient(model.Client{CompanyName: "폐업", Number: "2"})
	dead.IsTerminated = true
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/clients/"+dead.ID, dead).Code)

	var active []model.Client
	ts.decode(ts.do(http.MethodGet, "/api/clients?terminated=false", nil), &active)
	require.Len(t, active, 1)
	assert.Equal(t, "활성", active[0].CompanyName)

	var terminated []model.Client
	ts.decode(ts.do(http.MethodGet, "/api/clients?terminated=true", nil), &terminated)
	require.Len(t, terminated, 1)
	assert.Equal(t, "폐업", terminated[0].CompanyName)

	var all []model.Client
	ts.decode(ts.do(http.MethodGet, "/api/clients", nil), &all)
	assert.Len(t, all, 2)
}

func TestGetClientNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/clients/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClientRemovesInventory(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "삭제예정", Number: "1"})
	item := ts.addItem(c.ID)

	rec := ts.do(http.MethodDelete, "/api/clients/"+c.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodGet, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
