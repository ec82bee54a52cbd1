package services

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

	"linecheck/config"
	"linecheck/internal/logger"
	"linecheck/internal/models"
)

// GatewayError wraps any transport or authorization failure from the upstream
// operations API. The two are deliberately not distinguished: refreshing
// credentials is the host application's concern, not this client's.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// GatewayService is the HTTP/JSON client for the upstream operations API.
// All three operations are plain request/response; no streaming.
type GatewayService struct {
	baseURL    string
	httpClient *http.Client
	creds      *CredentialService
	log        logger.Logger
}

func NewGatewayService(cfg config.Config, creds *CredentialService) (*GatewayService, error) {
	log := logger.New("GatewayService")

	if cfg.OpsAPIURL == "" {
		return nil, log.ErrMsg("operations API URL required but not configured")
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	service := &GatewayService{
		baseURL:    strings.TrimSuffix(cfg.OpsAPIURL, "/"),
		httpClient: httpClient,
		creds:      creds,
		log:        log,
	}

	log.Info("Gateway service initialized", "baseURL", service.baseURL)
	return service, nil
}

// FetchItems returns the checklist item definitions for one shift type.
func (g *GatewayService) FetchItems(
	ctx context.Context,
	shift models.ShiftType,
) ([]models.ChecklistItem, error) {
	query := url.Values{"type": {shift.String()}}

	var items []models.ChecklistItem
	if err := g.do(ctx, http.MethodGet, "/api/checklist-items", query, nil, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// FetchCompletions returns completion records for one shift type from
// startDate onward, ordered newest-first by the upstream API.
func (g *GatewayService) FetchCompletions(
	ctx context.Context,
	shift models.ShiftType,
	startDate string,
) ([]models.ChecklistCompletion, error) {
	query := url.Values{
		"type":      {shift.String()},
		"startDate": {startDate},
	}

	var completions []models.ChecklistCompletion
	if err := g.do(ctx, http.MethodGet, "/api/checklist-completions", query, nil, &completions); err != nil {
		return nil, err
	}

	return completions, nil
}

// SubmitCompletion posts one full-snapshot completion record and returns the
// server-assigned record.
func (g *GatewayService) SubmitCompletion(
	ctx context.Context,
	shift models.ShiftType,
	submission models.CompletionSubmission,
) (*models.ChecklistCompletion, error) {
	body := struct {
		Type models.ShiftType `json:"type"`
		models.CompletionSubmission
	}{
		Type:                 shift,
		CompletionSubmission: submission,
	}

	var completion models.ChecklistCompletion
	if err := g.do(ctx, http.MethodPost, "/api/checklist-completions", nil, body, &completion); err != nil {
		return nil, err
	}

	return &completion, nil
}

func (g *GatewayService) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	out any,
) error {
	log := g.log.Function("do")
	op := method + " " + path

	endpoint := g.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return log.Err("failed to marshal request body", err, "op", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return log.Err("failed to build request", err, "op", op)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := g.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		gatewayErr := &GatewayError{Op: op, Err: err}
		log.Er("gateway request failed", gatewayErr, "endpoint", endpoint)
		return gatewayErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		gatewayErr := &GatewayError{Op: op, StatusCode: resp.StatusCode}
		log.Er("gateway returned failure status", gatewayErr, "endpoint", endpoint)
		return gatewayErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			gatewayErr := &GatewayError{Op: op, Err: err}
			log.Er("failed to decode gateway response", gatewayErr, "endpoint", endpoint)
			return gatewayErr
		}
	}

	return nil
}
