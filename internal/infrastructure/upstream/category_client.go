// Package upstream implementa el cliente REST del almacén externo de categorías del ERP.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhoicas/erp-categorias/internal/domain"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
	"github.com/jhoicas/erp-categorias/pkg/requestid"
)

// Verificar en tiempo de compilación que CategoryClient implementa el puerto completo.
var _ repository.CategoryRepository = (*CategoryClient)(nil)

// CompanyHeader header con el que el almacén externo filtra por empresa.
const CompanyHeader = "X-Company-ID"

const maxResponseBytes = 8 << 20

// Config parámetros del cliente.
type Config struct {
	BaseURL       string
	Token         string        // Bearer del servicio; vacío = sin Authorization
	Timeout       time.Duration // timeout de red por intento
	RatePerSecond float64       // <= 0 = sin límite
	Burst         int
	Retries       int           // reintentos extra para GET ante error de red o 5xx
	Backoff       time.Duration // espera base entre reintentos (lineal)
}

// CategoryClient adaptador que implementa CategoryRepository sobre la API REST externa.
type CategoryClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	log        zerolog.Logger
}

// NewCategoryClient construye el cliente.
func NewCategoryClient(cfg Config, log zerolog.Logger) *CategoryClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &CategoryClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		retries:    max(cfg.Retries, 0),
		backoff:    backoff,
		log:        log.With().Str("component", "upstream.categories").Logger(),
	}
}

// ListByCompany obtiene la lista plana de categorías de la empresa (GET /categories).
func (c *CategoryClient) ListByCompany(ctx context.Context, companyID string) ([]entity.Category, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/categories", companyID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}
	list, err := DecodeCategories(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	for i := range list {
		list[i].CompanyID = companyID
	}
	return list, nil
}

// GetByID obtiene una categoría (GET /categories/{id}). Devuelve nil, nil ante 404.
func (c *CategoryClient) GetByID(ctx context.Context, companyID, id string) (*entity.Category, error) {
	status, body, err := c.do(ctx, http.MethodGet, categoryPath(id), companyID, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}
	return decodeOne(body, companyID)
}

// Create crea la categoría (POST /categories). El almacén asigna el ID.
func (c *CategoryClient) Create(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	payload, err := encodeCategory(category)
	if err != nil {
		return nil, fmt.Errorf("serializar categoría: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, "/categories", category.CompanyID, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, statusError(status, body)
	}
	return decodeOne(body, category.CompanyID)
}

// Update reemplaza la categoría (PUT /categories/{id}).
func (c *CategoryClient) Update(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	payload, err := encodeCategory(category)
	if err != nil {
		return nil, fmt.Errorf("serializar categoría: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPut, categoryPath(category.ID), category.CompanyID, payload)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decodeOne(body, category.CompanyID)
	case http.StatusNoContent:
		cp := *category
		return &cp, nil
	default:
		return nil, statusError(status, body)
	}
}

// Delete elimina la categoría (DELETE /categories/{id}).
func (c *CategoryClient) Delete(ctx context.Context, companyID, id string) error {
	status, body, err := c.do(ctx, http.MethodDelete, categoryPath(id), companyID, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return statusError(status, body)
	}
	return nil
}

// do envía la petición respetando el limitador. Solo los GET se reintentan.
func (c *CategoryClient) do(ctx context.Context, method, path, companyID string, body []byte) (int, []byte, error) {
	attempts := 1
	if method == http.MethodGet {
		attempts += c.retries
	}
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("%w: esperar cupo: %v", domain.ErrUpstream, err)
		}
		status, raw, err := c.send(ctx, method, path, companyID, body)
		retryable := err != nil || status >= http.StatusInternalServerError
		if !retryable || attempt >= attempts {
			return status, raw, err
		}

		ev := c.log.Warn().Str("method", method).Str("path", path).Int("attempt", attempt)
		if err != nil {
			ev = ev.Err(err)
		} else {
			ev = ev.Int("status", status)
		}
		ev.Msg("reintentando llamada al servicio de categorías")

		select {
		case <-ctx.Done():
			return 0, nil, fmt.Errorf("%w: %v", domain.ErrUpstream, ctx.Err())
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
}

func (c *CategoryClient) send(ctx context.Context, method, path, companyID string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if companyID != "" {
		req.Header.Set(CompanyHeader, companyID)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrUpstream, ctx.Err())
		}
		return 0, nil, fmt.Errorf("%w: llamada HTTP fallida: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}
	return resp.StatusCode, raw, nil
}

func categoryPath(id string) string {
	return "/categories/" + url.PathEscape(id)
}

func decodeOne(body []byte, companyID string) (*entity.Category, error) {
	c, err := decodeCategory(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	c.CompanyID = companyID
	return &c, nil
}

// statusError traduce un status HTTP no exitoso a un error de dominio con el mensaje del servicio.
func statusError(status int, body []byte) error {
	msg := upstreamMessage(body)
	var base error
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = domain.ErrInvalidInput
	case http.StatusNotFound:
		base = domain.ErrNotFound
	case http.StatusConflict:
		base = domain.ErrConflict
	default:
		base = domain.ErrUpstream
	}
	if msg == "" {
		return fmt.Errorf("%w: HTTP %d", base, status)
	}
	return fmt.Errorf("%w: HTTP %d: %s", base, status, msg)
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
