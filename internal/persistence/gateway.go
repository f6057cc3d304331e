// Package persistence provides the gateway to the remote document store.
// Collections are stored whole, as a single envelope document keyed by the
// collection name; there are no partial updates at this layer.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// StorageType is the storage backend requested on writes, by convention.
const StorageType = "mongo"

// Gateway is an HTTP client for the document store. Loads never fail from
// the caller's perspective: any transport, auth, or decoding problem yields
// an empty record list with a log line. Writes return their error so callers
// can decide to log and swallow.
type Gateway struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	log     *logrus.Logger
}

type queryRequest struct {
	Collection string                 `json:"collection"`
	Query      map[string]interface{} `json:"query"`
	Limit      int                    `json:"limit"`
}

type storeRequest struct {
	ID          string      `json:"id"`
	Data        interface{} `json:"data"`
	StorageType string      `json:"storageType"`
	Collection  string      `json:"collection"`
}

type deleteRequest struct {
	Collection string                 `json:"collection"`
	Query      map[string]interface{} `json:"query"`
}

// NewGateway creates a gateway client for the store at baseURL. The token
// source supplies the bearer token attached to every call.
func NewGateway(baseURL string, tokens TokenSource, log *logrus.Logger) *Gateway {
	if log == nil {
		log = logrus.New()
	}
	return &Gateway{
		baseURL: baseURL,
		tokens:  tokens,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (g *Gateway) SetHTTPClient(client *http.Client) {
	g.client = client
}

// LoadCollection fetches the envelope document for a collection and returns
// its embedded record array. The store has historically persisted two shapes
// for the first query result: the envelope `{_id, data: [...]}` and the bare
// array; both are tolerated. Any failure returns an empty list.
func (g *Gateway) LoadCollection(ctx context.Context, name string) []json.RawMessage {
	body, err := g.post(ctx, "/queryData", queryRequest{
		Collection: name,
		Query:      map[string]interface{}{"_id": name},
		Limit:      1,
	})
	if err != nil {
		g.log.WithError(err).WithField("collection", name).Warn("Failed to load collection; treating as empty")
		return nil
	}

	var response struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		g.log.WithError(err).WithField("collection", name).Warn("Malformed store response; treating collection as empty")
		return nil
	}
	if len(response.Data) == 0 {
		return nil
	}

	first := response.Data[0]

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(first, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data
	}

	var records []json.RawMessage
	if err := json.Unmarshal(first, &records); err == nil {
		return records
	}

	g.log.WithField("collection", name).Warn("Unrecognized envelope shape; treating collection as empty")
	return nil
}

// StoreCollection upserts the full record array as the collection's envelope
// document.
func (g *Gateway) StoreCollection(ctx context.Context, name string, records interface{}) error {
	_, err := g.post(ctx, "/storeData", storeRequest{
		ID:          name,
		Data:        records,
		StorageType: StorageType,
		Collection:  name,
	})
	if err != nil {
		return fmt.Errorf("store collection %s: %w", name, err)
	}
	return nil
}

// DeleteCollection removes the collection's envelope document.
func (g *Gateway) DeleteCollection(ctx context.Context, name string) error {
	_, err := g.post(ctx, "/deleteData", deleteRequest{
		Collection: name,
		Query:      map[string]interface{}{"_id": name},
	})
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// post sends a JSON request with the bearer token and returns the raw
// response body. The caller's context deadline is honored.
func (g *Gateway) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if g.tokens != nil {
		token, err := g.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store API error: %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
