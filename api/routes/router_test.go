package routes

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedivyam/noon-sde3/internal/cart"
	"github.com/thedivyam/noon-sde3/internal/catalog"
	"github.com/thedivyam/noon-sde3/internal/checkout"
	"github.com/thedivyam/noon-sde3/internal/notifications"
	"github.com/thedivyam/noon-sde3/internal/theme"
	"github.com/thedivyam/noon-sde3/pkg/config"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/kv"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/metrics"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

type stubFetcher struct {
	mu       sync.Mutex
	ships    []swapi.Starship
	err      error
	searches []string
}

func (s *stubFetcher) FetchStarships(_ context.Context, search string) ([]swapi.Starship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, search)
	if s.err != nil {
		return nil, s.err
	}
	return s.ships, nil
}

type harness struct {
	handler http.Handler
	cart    *cart.Store
	theme   *theme.Store
	hub     *notifications.Hub
	fetcher *stubFetcher
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	skipInit bool
}

func withoutInitialize() harnessOption {
	return func(c *harnessConfig) { c.skipInit = true }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	hc := harnessConfig{}
	for _, opt := range opts {
		opt(&hc)
	}

	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		Catalog: config.CatalogConfig{PageLimit: 2},
		Pricing: config.PricingConfig{TaxRate: 0.05, Currency: "AED"},
	}
	logg := logger.Nop()
	reg := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(reg)
	storage := kv.NewMemory()
	hub := notifications.NewHub(logg, 8)

	cartStore := cart.NewStore(storage, hub, logg, storefrontMetrics, cart.Options{})
	themeStore := theme.NewStore(storage, logg, storefrontMetrics, "")
	if !hc.skipInit {
		cartStore.Initialize(context.Background())
		themeStore.Initialize(context.Background())
	}

	fetcher := &stubFetcher{ships: []swapi.Starship{
		{Name: "CR90 corvette", CostInCredits: "3500000"},
		{Name: "Star Destroyer", CostInCredits: "150000000"},
		{Name: "X-wing", CostInCredits: "149999"},
	}}
	catalogService, err := catalog.NewService(fetcher, logg)
	require.NoError(t, err)
	searcher := catalog.NewSearcher(fetcher, logg, 50*time.Millisecond)
	checkoutService, err := checkout.NewService(cartStore, hub, logg, storefrontMetrics, "AED")
	require.NoError(t, err)

	t.Cleanup(func() {
		searcher.Close()
		hub.Close()
		_ = cartStore.Close(context.Background())
	})

	handler := NewRouter(cfg, logg, storage, reg, catalogService, searcher, cartStore, checkoutService, themeStore, hub)
	return &harness{handler: handler, cart: cartStore, theme: themeStore, hub: hub, fetcher: fetcher}
}

func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	envelope := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error.Code
}

type cartResponse struct {
	Lines []struct {
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		LineTotal string `json:"line_total"`
	} `json:"lines"`
	Summary struct {
		Subtotal  string `json:"subtotal"`
		Tax       string `json:"tax"`
		Total     string `json:"total"`
		ItemCount int    `json:"item_count"`
	} `json:"summary"`
	Loading bool `json:"loading"`
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))

	rec = h.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	loading := newHarness(t, withoutInitialize())
	rec = loading.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCartAddCapsAtMaximum(t *testing.T) {
	h := newHarness(t)
	body := `{"item":{"name":"Falcon","cost_in_credits":"100000"}}`

	for i := 0; i < 5; i++ {
		rec := h.do(t, http.MethodPost, "/api/v1/cart/items", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := h.do(t, http.MethodPost, "/api/v1/cart/items", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var added struct {
		Outcome string `json:"outcome"`
		Line    struct {
			Quantity int `json:"quantity"`
		} `json:"line"`
	}
	decodeData(t, rec, &added)
	assert.Equal(t, "capped", added.Outcome)
	assert.Equal(t, 5, added.Line.Quantity)

	rec = h.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartResponse
	decodeData(t, rec, &view)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.Equal(t, "100.00", view.Lines[0].UnitPrice)
	assert.Equal(t, "500.00", view.Lines[0].LineTotal)
	assert.Equal(t, "500.00", view.Summary.Subtotal)
	assert.Equal(t, "25.00", view.Summary.Tax)
	assert.Equal(t, "525.00", view.Summary.Total)
	assert.Equal(t, 5, view.Summary.ItemCount)
}

func TestCartAddValidatesPayload(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/cart/items", `{"item":{"name":"  "}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/cart/items", `{"ship":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemoveDecodesEscapedNames(t *testing.T) {
	h := newHarness(t)
	h.cart.Add(context.Background(), swapi.Starship{Name: "TIE/LN starfighter", CostInCredits: "unknown"})
	h.cart.Add(context.Background(), swapi.Starship{Name: "TIE/LN starfighter", CostInCredits: "unknown"})

	rec := h.do(t, http.MethodDelete, "/api/v1/cart/items/TIE%2FLN%20starfighter", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var removed struct {
		Outcome  string `json:"outcome"`
		Quantity int    `json:"quantity"`
	}
	decodeData(t, rec, &removed)
	assert.Equal(t, "decremented", removed.Outcome)
	assert.Equal(t, 1, removed.Quantity)

	rec = h.do(t, http.MethodDelete, "/api/v1/cart/items/Executor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &removed)
	assert.Equal(t, "absent", removed.Outcome)
}

func TestCartRemoveKeepsLiteralPercent(t *testing.T) {
	h := newHarness(t)
	h.cart.Add(context.Background(), swapi.Starship{Name: "100% Ship", CostInCredits: "unknown"})

	rec := h.do(t, http.MethodDelete, "/api/v1/cart/items/100%25%20Ship", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var removed struct {
		Outcome string `json:"outcome"`
		Name    string `json:"name"`
	}
	decodeData(t, rec, &removed)
	assert.Equal(t, "removed", removed.Outcome)
	assert.Equal(t, "100% Ship", removed.Name)
}

func TestCartClearWithoutNotification(t *testing.T) {
	h := newHarness(t)
	h.cart.Add(context.Background(), swapi.Starship{Name: "X-wing", CostInCredits: "149999"})

	_, toasts, cancel := h.hub.Subscribe()
	defer cancel()

	rec := h.do(t, http.MethodDelete, "/api/v1/cart?notify=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, h.cart.TotalItemCount())

	select {
	case toast := <-toasts:
		t.Fatalf("unexpected toast %+v", toast)
	default:
	}

	rec = h.do(t, http.MethodDelete, "/api/v1/cart?notify=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartMutationsRejectedWhileLoading(t *testing.T) {
	h := newHarness(t, withoutInitialize())

	rec := h.do(t, http.MethodPost, "/api/v1/cart/items", `{"item":{"name":"X-wing"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), errorCode(t, rec))

	rec = h.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartResponse
	decodeData(t, rec, &view)
	assert.True(t, view.Loading)
}

func TestListStarshipsPaginates(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/starships", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		} `json:"items"`
		Count  int    `json:"count"`
		Cursor string `json:"cursor"`
	}
	decodeData(t, rec, &page)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "3500.00", page.Items[0].Price)
	require.NotEmpty(t, page.Cursor)

	rec = h.do(t, http.MethodGet, "/api/v1/starships?cursor="+page.Cursor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "X-wing", page.Items[0].Name)
	assert.Empty(t, page.Cursor)

	rec = h.do(t, http.MethodGet, "/api/v1/starships?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStarshipsSurfacesRemoteErrors(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = &swapi.RemoteError{StatusCode: http.StatusNotFound, Message: "Failed to fetch starships: Not Found"}

	rec := h.do(t, http.MethodGet, "/api/v1/starships?search=wing", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeDependency), errorCode(t, rec))
	assert.Equal(t, []string{"wing"}, h.fetcher.searches)
}

func TestSearchIsDebounced(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPut, "/api/v1/search", `{"query":"x"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = h.do(t, http.MethodPut, "/api/v1/search", `{"query":"wing"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var state struct {
		Query   string `json:"query"`
		Loading bool   `json:"loading"`
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	require.Eventually(t, func() bool {
		rec := h.do(t, http.MethodGet, "/api/v1/search", "")
		decodeData(t, rec, &state)
		return !state.Loading
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "wing", state.Query)
	assert.Len(t, state.Results, 3)
	h.fetcher.mu.Lock()
	assert.Equal(t, []string{"wing"}, h.fetcher.searches)
	h.fetcher.mu.Unlock()
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	h.cart.Add(context.Background(), swapi.Starship{Name: "X-wing", CostInCredits: "100000"})

	rec = h.do(t, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Bitcoin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, h.cart.TotalItemCount())

	rec = h.do(t, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Cash on Delivery"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var confirmation struct {
		Number        string `json:"number"`
		PaymentMethod string `json:"payment_method"`
		Summary       struct {
			Total string `json:"total"`
		} `json:"summary"`
	}
	decodeData(t, rec, &confirmation)
	assert.NotEmpty(t, confirmation.Number)
	assert.Equal(t, "Cash on Delivery", confirmation.PaymentMethod)
	assert.Equal(t, "105.00", confirmation.Summary.Total)
	assert.Zero(t, h.cart.TotalItemCount())
}

func TestThemeRoutes(t *testing.T) {
	h := newHarness(t)
	var view struct {
		Preference  string `json:"preference"`
		ColorScheme string `json:"color_scheme"`
	}

	rec := h.do(t, http.MethodGet, "/api/v1/theme?system=dark", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Equal(t, "auto", view.Preference)
	assert.Equal(t, "dark", view.ColorScheme)

	rec = h.do(t, http.MethodPut, "/api/v1/theme", `{"preference":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/v1/theme", `{"preference":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Equal(t, "light", view.Preference)

	rec = h.do(t, http.MethodPost, "/api/v1/theme/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Equal(t, "dark", view.Preference)
	assert.Equal(t, "dark", view.ColorScheme)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.cart.Add(context.Background(), swapi.Starship{Name: "X-wing"})

	rec := h.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_mutations_total{outcome="added"} 1`)
}

func TestNotificationsStreamDeliversToasts(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return h.hub.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	h.cart.Add(context.Background(), swapi.Starship{Name: "X-wing"})

	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "Added to cart") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}
	var toast notifications.Toast
	require.NoError(t, json.Unmarshal([]byte(data), &toast))
	assert.Equal(t, "X-wing (1)", toast.Text2)
}
