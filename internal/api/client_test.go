package api

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marketfold/kalshi-trade/internal/auth"
)

const testBasePath = "/trade-api/v2"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *rsa.PublicKey, func()) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	signer, err := auth.NewSigner("test-key-id", pemText)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	srv := httptest.NewServer(handler)
	client := NewClient(srv.URL+testBasePath, signer)

	return client, &key.PublicKey, srv.Close
}

func verifyHeaders(t *testing.T, pub *rsa.PublicKey, r *http.Request, body string) {
	t.Helper()

	keyID := r.Header.Get(auth.HeaderKey)
	ts := r.Header.Get(auth.HeaderTimestamp)
	sig := r.Header.Get(auth.HeaderSignature)

	if keyID != "test-key-id" {
		t.Errorf("%s = %q, want test-key-id", auth.HeaderKey, keyID)
	}
	if ts == "" {
		t.Errorf("%s header missing", auth.HeaderTimestamp)
	}
	if sig == "" {
		t.Fatalf("%s header missing", auth.HeaderSignature)
	}

	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}

	message := ts + r.Method + r.URL.Path + body
	digest := sha256.Sum256([]byte(message))
	opts := &rsa.PSSOptions{SaltLength: 32, Hash: crypto.SHA256}
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], raw, opts); err != nil {
		t.Errorf("signature does not verify for %q: %v", message, err)
	}
}

func TestGetMarkets_SignsRequest(t *testing.T) {
	var pub *rsa.PublicKey

	client, pubKey, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifyHeaders(t, pub, r, "")
		if r.URL.Query().Get("status") != "open" {
			t.Errorf("status query = %q, want open", r.URL.Query().Get("status"))
		}
		json.NewEncoder(w).Encode(MarketsResponse{Markets: []Market{{Ticker: "INXD-23DEC29"}}})
	}))
	defer closeFn()
	pub = pubKey

	resp, err := client.GetMarkets(context.Background(), GetMarketsOptions{Status: "open"})
	if err != nil {
		t.Fatalf("GetMarkets failed: %v", err)
	}
	if len(resp.Markets) != 1 || resp.Markets[0].Ticker != "INXD-23DEC29" {
		t.Errorf("unexpected markets: %+v", resp.Markets)
	}
}

func TestCreateOrder_SignatureCoversBody(t *testing.T) {
	var pub *rsa.PublicKey

	client, pubKey, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := readAll(t, r)
		verifyHeaders(t, pub, r, body)

		var req CreateOrderRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("failed to decode order body: %v", err)
		}
		if req.ClientOrderID == "" {
			t.Error("client_order_id not assigned")
		}

		json.NewEncoder(w).Encode(OrderResponse{Order: Order{
			OrderID:       "srv-1",
			ClientOrderID: req.ClientOrderID,
			Ticker:        req.Ticker,
			Status:        "resting",
		}})
	}))
	defer closeFn()
	pub = pubKey

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Ticker: "INXD-23DEC29",
		Side:   "yes",
		Action: "buy",
		Type:   "limit",
		Count:  10,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.OrderID != "srv-1" {
		t.Errorf("OrderID = %q, want srv-1", order.OrderID)
	}
}

func TestCreateOrder_RateLimited(t *testing.T) {
	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer closeFn()

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Ticker: "X", Count: 1})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Message != "rate limited" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "rate limited")
	}
}

func TestAPIError_MalformedBody(t *testing.T) {
	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>nope</html>"))
	}))
	defer closeFn()

	_, err := client.GetBalance(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("Message = %q, want status text fallback", apiErr.Message)
	}
}

func TestGetMarket_DecodeError(t *testing.T) {
	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market": "not an object"`))
	}))
	defer closeFn()

	_, err := client.GetMarket(context.Background(), "INXD-23DEC29")

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error is %T, want *DecodeError", err)
	}
}

func TestGetAllMarkets_FollowsCursor(t *testing.T) {
	var calls int

	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("cursor") {
		case "":
			json.NewEncoder(w).Encode(MarketsResponse{
				Markets: []Market{{Ticker: "A"}, {Ticker: "B"}},
				Cursor:  "page2",
			})
		case "page2":
			json.NewEncoder(w).Encode(MarketsResponse{
				Markets: []Market{{Ticker: "C"}},
			})
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer closeFn()

	markets, err := client.GetAllMarkets(context.Background(), GetMarketsOptions{})
	if err != nil {
		t.Fatalf("GetAllMarkets failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d requests, want 2", calls)
	}
	if len(markets) != 3 {
		t.Fatalf("got %d markets, want 3", len(markets))
	}
	if markets[2].Ticker != "C" {
		t.Errorf("last ticker = %q, want C", markets[2].Ticker)
	}
}

func TestAmendOrder_OmitsUnsetFields(t *testing.T) {
	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(readAll(t, r)), &fields); err != nil {
			t.Fatalf("failed to decode amend body: %v", err)
		}
		if len(fields) != 1 {
			t.Errorf("body has %d fields, want only count: %v", len(fields), fields)
		}
		if _, ok := fields["count"]; !ok {
			t.Error("count field missing from amend body")
		}

		json.NewEncoder(w).Encode(OrderResponse{Order: Order{OrderID: "srv-1", Count: 5}})
	}))
	defer closeFn()

	count := 5
	order, err := client.AmendOrder(context.Background(), "srv-1", AmendOrderRequest{Count: &count})
	if err != nil {
		t.Fatalf("AmendOrder failed: %v", err)
	}
	if order.Count != 5 {
		t.Errorf("Count = %d, want 5", order.Count)
	}
}

func TestCancelOrder_UsesDelete(t *testing.T) {
	client, _, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != testBasePath+"/portfolio/orders/srv-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(OrderResponse{Order: Order{OrderID: "srv-9", Status: "canceled"}})
	}))
	defer closeFn()

	order, err := client.CancelOrder(context.Background(), "srv-9")
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if order.Status != "canceled" {
		t.Errorf("Status = %q, want canceled", order.Status)
	}
}

func readAll(t *testing.T, r *http.Request) string {
	t.Helper()
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read request body: %v", err)
	}
	return string(data)
}
