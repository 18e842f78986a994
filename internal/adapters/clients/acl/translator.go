package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/character-votes/internal/adapters/clients"
	"github.com/jsamuelsen/character-votes/internal/domain"
)

// BaseAdapter sends requests for one backend and maps failures to domain
// errors. Successful bodies are handed back for the caller to decode and
// close.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

func (a *BaseAdapter) Get(ctx context.Context, path, operation, entityID string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.body(resp, err, operation, entityID)
}

func (a *BaseAdapter) Post(ctx context.Context, path string, payload any, operation string) (io.ReadCloser, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := a.client.Post(ctx, path, bytes.NewReader(raw))

	return a.body(resp, err, operation, "")
}

func (a *BaseAdapter) Patch(ctx context.Context, path string, payload any, operation, entityID string) (io.ReadCloser, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := a.client.Patch(ctx, path, bytes.NewReader(raw))

	return a.body(resp, err, operation, entityID)
}

func (a *BaseAdapter) body(resp *http.Response, err error, operation, entityID string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation, entityID)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation, entityID)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}

// DecodeResponseForService reports a body the service sent but we cannot
// read as the service being unavailable.
func DecodeResponseForService[T any](body io.ReadCloser, serviceName string) (*T, error) {
	out, err := DecodeResponse[T](body)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return out, nil
}

// Translator converts one backend record into a domain value.
type Translator[External, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice translates every item and stops at the first failure,
// naming its index.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) ([]*D, error) {
	out := make([]*D, 0, len(items))

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		out = append(out, d)
	}

	return out, nil
}
