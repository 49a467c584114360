package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore talks to a remote feature-store service:
//
//	GET  /entities                  -> {"ids": [...]}
//	POST /features/batch            -> {"features": {"<id>": {...}}}
//	GET  /entities/<id>/features    -> {"features": {...}} (404 when unknown)
//	PUT  /entities/<id>/features    <- {"features": {...}}
type HTTPStore struct {
	base string
	rest *resty.Client
}

func NewHTTP(base string, timeout time.Duration) *HTTPStore {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &HTTPStore{base: base, rest: r}
}

type idsResp struct {
	IDs []string `json:"ids"`
}

type batchReq struct {
	IDs []string `json:"ids"`
}

type batchResp struct {
	Features map[string]map[string]float64 `json:"features"`
}

type featuresResp struct {
	Features map[string]float64 `json:"features"`
}

func (s *HTTPStore) GetAllEntityIDs(ctx context.Context) ([]string, error) {
	out := &idsResp{}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(out).
		Get(s.base + "/entities")
	if err != nil {
		return nil, fmt.Errorf("feature store list entities: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("feature store list entities: status %d", resp.StatusCode())
	}
	return out.IDs, nil
}

func (s *HTTPStore) GetBatchFeatures(ctx context.Context, ids []string) (map[string]map[string]float64, error) {
	out := &batchResp{}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(batchReq{IDs: ids}).
		SetResult(out).
		Post(s.base + "/features/batch")
	if err != nil {
		return nil, fmt.Errorf("feature store batch fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("feature store batch fetch: status %d", resp.StatusCode())
	}
	return out.Features, nil
}

func (s *HTTPStore) GetFeatures(ctx context.Context, id string) (map[string]float64, error) {
	out := &featuresResp{}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(out).
		Get(s.base + "/entities/" + id + "/features")
	if err != nil {
		return nil, fmt.Errorf("feature store fetch %s: %w", id, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("feature store fetch %s: status %d", id, resp.StatusCode())
	}
	return out.Features, nil
}

func (s *HTTPStore) PutFeatures(ctx context.Context, id string, features map[string]float64) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(featuresResp{Features: features}).
		Put(s.base + "/entities/" + id + "/features")
	if err != nil {
		return fmt.Errorf("feature store put %s: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("feature store put %s: status %d", id, resp.StatusCode())
	}
	return nil
}
