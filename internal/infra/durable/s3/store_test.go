package s3

import (
	"bizstate/internal/durable/core"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 serves the subset of the S3 REST API the backend uses, keyed by object name.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return respond(http.StatusInternalServerError, nil, nil), nil
	}
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var names []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range names {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		f.objects[key] = body
		return respond(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, nil, nil), nil
		}
		return respond(http.StatusOK, body, http.Header{"Content-Type": {"application/json"}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return respond(http.StatusNoContent, nil, nil), nil
	}
	return respond(http.StatusNotImplemented, nil, nil), nil
}

func respond(status int, body []byte, h http.Header) *http.Response {
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: h, ContentLength: int64(len(body))}
}

// decodeChunked unwraps an aws-chunked payload: <hex>\r\n<data>\r\n ... 0\r\n<trailers>.
func decodeChunked(b []byte) ([]byte, bool) {
	var out []byte
	rest := b
	for {
		idx := bytes.Index(rest, []byte("\r\n"))
		if idx <= 0 {
			return nil, false
		}
		sizeField := string(rest[:idx])
		if semi := strings.IndexByte(sizeField, ';'); semi >= 0 {
			sizeField = sizeField[:semi]
		}
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil {
			return nil, false
		}
		rest = rest[idx+2:]
		if size == 0 {
			return out, true
		}
		if int64(len(rest)) < size+2 {
			return nil, false
		}
		out = append(out, rest[:size]...)
		rest = rest[size+2:]
	}
}

func newFakeStore(t *testing.T, prefix string) (*Store, *fakeS3) {
	t.Helper()
	rt := &fakeS3{objects: make(map[string][]byte)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://fake.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		o.RetryMaxAttempts = 1
	})
	return NewFromClient(client, "state-bucket", prefix), rt
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, rt := newFakeStore(t, "tenants/acme/")
	if store.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	if _, ok, err := store.Get(ctx, "businesses"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "businesses", `[{"id":"biz_1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "businesses", `[{"id":"biz_2"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, ok := rt.objects["tenants/acme/businesses.json"]; !ok {
		t.Fatalf("expected prefixed object, have %v", rt.objects)
	}
	got, ok, err := store.Get(ctx, "businesses")
	if err != nil || !ok || got != `[{"id":"biz_2"}]` {
		t.Fatalf("unexpected get %q ok=%v err=%v", got, ok, err)
	}
	if err := store.Set(ctx, "active_business_id", `"biz_2"`); err != nil {
		t.Fatalf("set active: %v", err)
	}
	rt.objects["other/ignored.json"] = []byte("{}")
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "active_business_id" || keys[1] != "businesses" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := store.Delete(ctx, "businesses"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "businesses"); ok {
		t.Fatalf("expected deleted key")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestS3StoreErrors(t *testing.T) {
	ctx := context.Background()
	store, rt := newFakeStore(t, "")
	rt.fail = true
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatalf("expected get error")
	}
	if err := store.Set(ctx, "k", "{}"); err == nil {
		t.Fatalf("expected set error")
	}
	if _, err := store.Keys(ctx); err == nil {
		t.Fatalf("expected keys error")
	}
}

func TestS3NewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}
