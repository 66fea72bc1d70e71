// Package client talks to the remote quotation service. Every endpoint
// answers with the {success, data, error, details} envelope; non-2xx
// responses become an *APIError carrying the API-supplied message when one
// is present.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/models/api"
)

// APIError is a classified remote failure. Message is user-facing.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quotation api: %s (status %d)", e.Message, e.StatusCode)
}

type Config struct {
	BaseURL string
	Token   string
	// HTTPClient overrides http.DefaultClient, mainly for tests.
	HTTPClient *http.Client
}

type Quotations struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewQuotations(cfg Config) (*Quotations, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Quotations{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
	}, nil
}

func (q *Quotations) CreateQuotation(
	ctx context.Context,
	payload api.QuotationPayload,
) (*api.Quotation, error) {
	return q.doQuotation(ctx, http.MethodPost, "/quotations", payload)
}

// SaveDraft persists a draft remotely. With no id the server allocates a new
// draft (POST); with an id the existing one is replaced (PUT).
func (q *Quotations) SaveDraft(
	ctx context.Context,
	payload api.QuotationPayload,
	id *int64,
) (*api.Quotation, error) {
	if id == nil {
		return q.doQuotation(ctx, http.MethodPost, "/quotations/draft", payload)
	}
	return q.doQuotation(ctx, http.MethodPut, fmt.Sprintf("/quotations/%d/draft", *id), payload)
}

func (q *Quotations) UpdateQuotation(
	ctx context.Context,
	id int64,
	payload api.QuotationPayload,
) (*api.Quotation, error) {
	return q.doQuotation(ctx, http.MethodPut, fmt.Sprintf("/quotations/%d", id), payload)
}

func (q *Quotations) UpdateQuotationStatus(
	ctx context.Context,
	id int64,
	status string,
) (*api.Quotation, error) {
	body := api.StatusUpdate{Status: status}
	return q.doQuotation(ctx, http.MethodPut, fmt.Sprintf("/quotations/%d/status", id), body)
}

func (q *Quotations) GetQuotation(ctx context.Context, id int64) (*api.Quotation, error) {
	return q.doQuotation(ctx, http.MethodGet, fmt.Sprintf("/quotations/%d", id), nil)
}

func (q *Quotations) ListQuotations(ctx context.Context) ([]api.Quotation, error) {
	data, err := q.do(ctx, http.MethodGet, "/quotations", nil)
	if err != nil {
		return nil, err
	}

	var quotations []api.Quotation
	if err := json.Unmarshal(data, &quotations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quotation list: %w", err)
	}

	return quotations, nil
}

// ListMaterials returns the backend's material catalog.
func (q *Quotations) ListMaterials(ctx context.Context) ([]api.Material, error) {
	data, err := q.do(ctx, http.MethodGet, "/materials", nil)
	if err != nil {
		return nil, err
	}

	var materials []api.Material
	if err := json.Unmarshal(data, &materials); err != nil {
		return nil, fmt.Errorf("failed to unmarshal material list: %w", err)
	}

	return materials, nil
}

func (q *Quotations) DeleteQuotation(ctx context.Context, id int64) error {
	_, err := q.do(ctx, http.MethodDelete, fmt.Sprintf("/quotations/%d", id), nil)
	return err
}

func (q *Quotations) DuplicateQuotation(ctx context.Context, id int64) (*api.Quotation, error) {
	return q.doQuotation(ctx, http.MethodPost, fmt.Sprintf("/quotations/%d/duplicate", id), nil)
}

// GenerateQuotationPDF returns the rendered document bytes. Generation
// happens server side, the caller decides where the bytes go.
func (q *Quotations) GenerateQuotationPDF(ctx context.Context, id int64) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	req, err := q.newRequest(ctx, http.MethodGet, fmt.Sprintf("/quotations/%d/pdf", id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := q.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("pdf request failed")
		return nil, err
	}
	defer closeBody(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classify(resp.StatusCode, body)
	}

	return body, nil
}

func (q *Quotations) doQuotation(
	ctx context.Context,
	method string,
	path string,
	body interface{},
) (*api.Quotation, error) {
	data, err := q.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var quotation api.Quotation
	if err := json.Unmarshal(data, &quotation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quotation response: %w", err)
	}

	return &quotation, nil
}

func (q *Quotations) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
) (json.RawMessage, error) {
	logger := zerolog.Ctx(ctx)

	req, err := q.newRequest(ctx, method, path, body)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to create request")
		return nil, err
	}

	resp, err := q.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("request failed")
		return nil, err
	}
	defer closeBody(ctx, resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classify(resp.StatusCode, raw)
	}

	var envelope api.Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response envelope: %w", err)
	}

	if !envelope.Success {
		message := envelope.Error
		if message == "" {
			message = "request failed"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return envelope.Data, nil
}

func (q *Quotations) newRequest(
	ctx context.Context,
	method string,
	path string,
	body interface{},
) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.token != "" {
		req.Header.Set("Authorization", "Bearer "+q.token)
	}

	return req, nil
}

// classify turns a non-2xx response into an *APIError, preferring the
// message the API put in the envelope over the generic per-status one.
func classify(status int, raw []byte) *APIError {
	message := statusMessage(status)

	var envelope api.Response
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			message = envelope.Error
		} else if envelope.Details != "" {
			message = envelope.Details
		}
	}

	return &APIError{StatusCode: status, Message: message}
}

func statusMessage(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "Invalid quotation data"
	case status == http.StatusUnauthorized:
		return "Authentication required"
	case status == http.StatusForbidden:
		return "Access denied"
	case status == http.StatusNotFound:
		return "Quotation not found"
	case status >= http.StatusInternalServerError:
		return "Server error, please try again later"
	default:
		return "Request failed"
	}
}

func closeBody(ctx context.Context, body io.ReadCloser) {
	if err := body.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close response body")
	}
}
