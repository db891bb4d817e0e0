package upstream_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-categorias/internal/domain"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/upstream"
	"github.com/jhoicas/erp-categorias/pkg/requestid"
)

const testCompanyID = "00000000-0000-0000-0000-000000000002"

func newClient(t *testing.T, h http.HandlerFunc, retries int) *upstream.CategoryClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.NewCategoryClient(upstream.Config{
		BaseURL: srv.URL + "/",
		Token:   "svc-token",
		Timeout: 2 * time.Second,
		Retries: retries,
		Backoff: time.Millisecond,
	}, zerolog.Nop())
}

func TestCategoryClient_ListByCompany(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		assert.Equal(t, testCompanyID, r.Header.Get(upstream.CompanyHeader))
		assert.Equal(t, "req-1", r.Header.Get(requestid.Header))
		_, _ = io.WriteString(w, `[
			{"id":"a","name":"Root","parentId":null,"code":"R","color":"azul","createdAt":"2024-01-02T03:04:05Z"},
			{"id":"b","name":"Mid","parentId":"a","children":[{"id":"zz"}]},
			{"id":7,"name":"Numérica","parentId":"a","createdAt":"ayer"}
		]`)
	}, 0)

	ctx := requestid.NewContext(context.Background(), "req-1")
	list, err := client.ListByCompany(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "", list[0].ParentID)
	assert.Equal(t, "R", list[0].Code)
	assert.Equal(t, testCompanyID, list[0].CompanyID)
	assert.JSONEq(t, `"azul"`, string(list[0].Extra["color"]))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), list[0].CreatedAt.UTC())

	assert.Equal(t, "a", list[1].ParentID)
	assert.NotContains(t, list[1].Extra, "children")

	assert.Equal(t, "7", list[2].ID)
	assert.True(t, list[2].CreatedAt.IsZero())
	assert.JSONEq(t, `"ayer"`, string(list[2].Extra["createdAt"]))
}

func TestCategoryClient_ListByCompany_Sobre(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"id":"a","name":"Root"}]}`)
	}, 0)
	list, err := client.ListByCompany(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Root", list[0].Name)
}

func TestCategoryClient_ReintentaGETAnte5xx(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}, 2)

	list, err := client.ListByCompany(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCategoryClient_AgotaReintentos(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"mantenimiento"}`)
	}, 1)

	_, err := client.ListByCompany(context.Background(), testCompanyID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "mantenimiento")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCategoryClient_NoReintentaEscrituras(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 3)

	_, err := client.Create(context.Background(), &entity.Category{CompanyID: testCompanyID, Name: "X"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCategoryClient_GetByID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories/a":
			_, _ = io.WriteString(w, `{"id":"a","name":"Root"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, 0)

	c, err := client.GetByID(context.Background(), testCompanyID, "a")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Root", c.Name)

	c, err = client.GetByID(context.Background(), testCompanyID, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCategoryClient_CreateEnviaCuerpo(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Nueva", body["name"])
		assert.Equal(t, "a", body["parentId"])
		assert.Equal(t, "azul", body["color"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"n1","name":"Nueva","parentId":"a","color":"azul"}`)
	}, 0)

	created, err := client.Create(context.Background(), &entity.Category{
		CompanyID: testCompanyID,
		Name:      "Nueva",
		ParentID:  "a",
		Extra:     map[string]json.RawMessage{"color": json.RawMessage(`"azul"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)
	assert.Equal(t, testCompanyID, created.CompanyID)
}

func TestCategoryClient_UpdateRaizEnviaParentNulo(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/categories/b", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"parentId":null`)
		w.WriteHeader(http.StatusNoContent)
	}, 0)

	updated, err := client.Update(context.Background(), &entity.Category{ID: "b", CompanyID: testCompanyID, Name: "Mid"})
	require.NoError(t, err)
	assert.Equal(t, "b", updated.ID)
}

func TestCategoryClient_TraduceStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusUnauthorized, domain.ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}, 0)
			err := client.Delete(context.Background(), testCompanyID, "a")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeCategories_Errores(t *testing.T) {
	_, err := upstream.DecodeCategories(strings.NewReader(`[{"name":"sin id"}]`))
	assert.Error(t, err)

	_, err = upstream.DecodeCategories(strings.NewReader(`"texto"`))
	assert.Error(t, err)

	list, err := upstream.DecodeCategories(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, list)
}
