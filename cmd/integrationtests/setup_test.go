package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/app"
	"auction-engine/internal/catalog"
	"auction-engine/internal/config"
	model "auction-engine/internal/models"
	"auction-engine/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// testClock is a settable clock shared by every service of a test app
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is an engine running on in-memory stores behind the real router
type TestEnv struct {
	App    *app.App
	Router *gin.Engine
	Clock  *testClock
	Events *notify.Recorder
}

// SetupTestEnv seeds the catalog with items and builds the engine with default configuration.
func SetupTestEnv(t *testing.T, items ...model.AuctionItem) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := catalog.NewRegistry()
	for _, item := range items {
		registry.AddItem(item)
	}

	clock := &testClock{now: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)}
	events := &notify.Recorder{}
	engine := app.New(app.Options{
		Config:   config.Default(),
		Catalog:  registry,
		Notifier: events,
		Clock:    clock.Now,
	})
	t.Cleanup(engine.Close)

	return &TestEnv{App: engine, Router: engine.Router, Clock: clock, Events: events}
}

// Item returns a catalog item owned by sellerID
func Item(itemID, sellerID string) model.AuctionItem {
	return model.AuctionItem{
		ItemID:        itemID,
		SellerID:      sellerID,
		Title:         "title " + itemID,
		Description:   "description " + itemID,
		StartingPrice: decimal.NewFromInt(1000),
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// Data returns the data object of a response envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}

// CreateActiveAuction creates an auction on itemID and activates it immediately. Returns the auction id.
func (e *TestEnv) CreateActiveAuction(t *testing.T, itemID, sellerID, startPrice, reservePrice, increment string) string {
	t.Helper()

	now := e.Clock.Now()
	body := map[string]any{
		"auction_item_id": itemID,
		"seller_id":       sellerID,
		"start_price":     startPrice,
		"min_increment":   increment,
		"start_at":        now.Add(time.Minute).Format(time.RFC3339),
		"end_at":          now.Add(time.Hour).Format(time.RFC3339),
	}
	if reservePrice != "" {
		body["reserve_price"] = reservePrice
	}

	resp, w := ExecuteRequestAndParse(t, e.Router, "POST", "/auctions", body)
	if w.Code != 201 {
		t.Fatalf("create auction: status %d: %v", w.Code, resp)
	}
	auctionID := Data(t, resp)["auction_id"].(string)

	resp, w = ExecuteRequestAndParse(t, e.Router, "POST", "/auctions/"+auctionID+"/activate", nil)
	if w.Code != 200 {
		t.Fatalf("activate auction: status %d: %v", w.Code, resp)
	}
	return auctionID
}

// Bid places a bid and returns the parsed response
func (e *TestEnv) Bid(t *testing.T, auctionID, bidderID, amount string) (map[string]any, int) {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, e.Router, "POST", "/auctions/"+auctionID+"/bids", map[string]any{
		"bidder_id": bidderID,
		"amount":    amount,
	})
	return resp, w.Code
}
