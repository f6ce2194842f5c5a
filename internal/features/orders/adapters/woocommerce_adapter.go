package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"postnet-delivery/internal/core/config"
	"postnet-delivery/internal/core/httpclient"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/orders/domain"

	"go.uber.org/zap"
)

const apiPrefix = "/wp-json/wc/v3"

// errNotFound marks a 404 from the REST API; callers map it to their own sentinel.
type errNotFound struct{ path string }

func (e errNotFound) Error() string { return "woocommerce resource not found: " + e.path }

// WooCommerceAdapter implements the order, product and zone ports using the WooCommerce REST API.
type WooCommerceAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the WooCommerce connection details.
	config config.WooCommerceConfig
}

// NewWooCommerceAdapter creates a new instance of WooCommerceAdapter.
func NewWooCommerceAdapter(cfg config.WooCommerceConfig) *WooCommerceAdapter {
	return &WooCommerceAdapter{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// do sends an authenticated request and decodes the JSON response into out (if non-nil).
func (a *WooCommerceAdapter) do(ctx context.Context, method, path string, body, out interface{}) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.config.URL, "/")+apiPrefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", httpclient.BasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound{path: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("woocommerce API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

func isNotFound(err error) bool {
	var nf errNotFound
	return errors.As(err, &nf)
}

// GetOrder fetches an order from WooCommerce and maps it to the domain entity.
func (a *WooCommerceAdapter) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var wcOrder woocommerceOrder
	if _, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, &wcOrder); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, orderID)
		}
		return nil, err
	}

	return mapOrder(wcOrder), nil
}

// UpdateOrderMeta writes meta key/values onto the order.
func (a *WooCommerceAdapter) UpdateOrderMeta(ctx context.Context, orderID int64, meta map[string]string) error {
	entries := make([]wcMetaData, 0, len(meta))
	for k, v := range meta {
		entries = append(entries, wcMetaData{Key: k, Value: v})
	}

	_, err := a.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), map[string]interface{}{"meta_data": entries}, nil)
	if isNotFound(err) {
		return fmt.Errorf("%w: %d", domain.ErrOrderNotFound, orderID)
	}
	return err
}

// DeleteOrderMeta blanks every meta row stored under key. The REST API has no
// meta delete; an empty value reads as absent everywhere in this service.
func (a *WooCommerceAdapter) DeleteOrderMeta(ctx context.Context, orderID int64, key string) error {
	order, err := a.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	ids := order.MetaIDs(key)
	if len(ids) == 0 {
		return nil
	}

	entries := make([]wcMetaData, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, wcMetaData{ID: id, Key: key, Value: ""})
	}

	_, err = a.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), map[string]interface{}{"meta_data": entries}, nil)
	return err
}

// GetProduct fetches a single product.
func (a *WooCommerceAdapter) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	var p wcProduct
	if _, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, &p); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
		}
		return nil, err
	}
	product := p.toDomain()
	return &product, nil
}

// ListProducts walks every page of the product catalog.
func (a *WooCommerceAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product

	for page := 1; ; page++ {
		var batch []wcProduct
		header, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/products?per_page=100&page=%d&orderby=id&order=asc", page), nil, &batch)
		if err != nil {
			return nil, err
		}

		for _, p := range batch {
			products = append(products, p.toDomain())
		}

		totalPages, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
		if len(batch) == 0 || page >= totalPages {
			break
		}
	}

	logger.Get().Debug("Listed products", zap.Int("count", len(products)))
	return products, nil
}

// ListZones returns every shipping zone.
func (a *WooCommerceAdapter) ListZones(ctx context.Context) ([]domain.Zone, error) {
	var zones []wcZone
	if _, err := a.do(ctx, http.MethodGet, "/shipping/zones", nil, &zones); err != nil {
		return nil, err
	}

	out := make([]domain.Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, domain.Zone{ID: z.ID, Name: z.Name})
	}
	return out, nil
}

// CreateZone creates a shipping zone at order 0.
func (a *WooCommerceAdapter) CreateZone(ctx context.Context, name string) (domain.Zone, error) {
	var z wcZone
	if _, err := a.do(ctx, http.MethodPost, "/shipping/zones", map[string]interface{}{"name": name, "order": 0}, &z); err != nil {
		return domain.Zone{}, err
	}
	return domain.Zone{ID: z.ID, Name: z.Name}, nil
}

// SetZoneCountry restricts the zone to a single country.
func (a *WooCommerceAdapter) SetZoneCountry(ctx context.Context, zoneID int64, country string) error {
	body := []map[string]string{{"code": country, "type": "country"}}
	_, err := a.do(ctx, http.MethodPut, fmt.Sprintf("/shipping/zones/%d/locations", zoneID), body, nil)
	return err
}

// ZoneMethods lists the method instances of a zone.
func (a *WooCommerceAdapter) ZoneMethods(ctx context.Context, zoneID int64) ([]domain.ShippingMethod, error) {
	var methods []wcZoneMethod
	if _, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/shipping/zones/%d/methods", zoneID), nil, &methods); err != nil {
		return nil, err
	}

	out := make([]domain.ShippingMethod, 0, len(methods))
	for _, m := range methods {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// AddFlatRate adds a zero-cost taxable flat rate titled title.
func (a *WooCommerceAdapter) AddFlatRate(ctx context.Context, zoneID int64, title string) (domain.ShippingMethod, error) {
	body := map[string]interface{}{
		"method_id": domain.FlatRateMethod,
		"settings": map[string]string{
			"title":      title,
			"cost":       "0.00",
			"tax_status": "taxable",
		},
	}

	var m wcZoneMethod
	if _, err := a.do(ctx, http.MethodPost, fmt.Sprintf("/shipping/zones/%d/methods", zoneID), body, &m); err != nil {
		return domain.ShippingMethod{}, err
	}
	return m.toDomain(), nil
}

// HealthCheck verifies that the WooCommerce API is reachable and credentials are valid.
func (a *WooCommerceAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.do(ctx, http.MethodGet, "/orders?per_page=1", nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// mapOrder converts a raw WooCommerce order response into a domain Order entity.
func mapOrder(wc woocommerceOrder) *domain.Order {
	order := &domain.Order{
		ID:        wc.ID,
		Number:    wc.Number,
		Status:    wc.Status,
		Total:     float64(wc.Total),
		Billing:   wc.Billing.toDomain(),
		Shipping:  wc.Shipping.toDomain(),
		CreatedAt: time.Time(wc.DateCreated),
	}

	for _, li := range wc.LineItems {
		order.Items = append(order.Items, domain.LineItem{
			ID:        li.ID,
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Total:     float64(li.Total),
		})
	}

	for _, sl := range wc.ShippingLines {
		order.ShippingLines = append(order.ShippingLines, domain.ShippingLine{
			ID:          sl.ID,
			MethodID:    sl.MethodID,
			InstanceID:  string(sl.InstanceID),
			MethodTitle: sl.MethodTitle,
		})
	}

	for _, m := range wc.MetaData {
		order.Meta = append(order.Meta, domain.MetaEntry{
			ID:    m.ID,
			Key:   m.Key,
			Value: metaString(m.Value),
		})
	}

	return order
}

// metaString renders a meta value; non-string values are re-encoded as JSON.
func metaString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// internal structs for mapping

// woocommerceOrder represents the JSON structure of an order from WooCommerce API.
type woocommerceOrder struct {
	ID            int64            `json:"id"`
	Number        string           `json:"number"`
	Status        string           `json:"status"`
	Total         wcAmount         `json:"total"`
	DateCreated   wcTime           `json:"date_created"`
	Billing       wcAddress        `json:"billing"`
	Shipping      wcAddress        `json:"shipping"`
	LineItems     []wcLineItem     `json:"line_items"`
	ShippingLines []wcShippingLine `json:"shipping_lines"`
	MetaData      []wcMetaData     `json:"meta_data"`
}

// wcMetaData represents a key-value pair in WooCommerce metadata.
type wcMetaData struct {
	ID    int64       `json:"id,omitempty"`
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// wcAddress holds billing or shipping address information.
type wcAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (a wcAddress) toDomain() domain.Address {
	return domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

// wcLineItem represents a product in the WooCommerce order.
type wcLineItem struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Total     wcAmount `json:"total"`
}

// wcShippingLine represents the shipping method applied to the order.
type wcShippingLine struct {
	ID          int64    `json:"id"`
	MethodID    string   `json:"method_id"`
	InstanceID  wcString `json:"instance_id"`
	MethodTitle string   `json:"method_title"`
}

// wcProduct holds the catalog fields used for fees and dispatch.
type wcProduct struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Weight     wcAmount `json:"weight"`
	Dimensions struct {
		Length wcAmount `json:"length"`
		Width  wcAmount `json:"width"`
		Height wcAmount `json:"height"`
	} `json:"dimensions"`
}

func (p wcProduct) toDomain() domain.Product {
	return domain.Product{
		ID:     p.ID,
		Name:   p.Name,
		Weight: float64(p.Weight),
		Length: float64(p.Dimensions.Length),
		Width:  float64(p.Dimensions.Width),
		Height: float64(p.Dimensions.Height),
	}
}

// wcZone is a shipping zone.
type wcZone struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// wcZoneMethod is a shipping method instance of a zone.
type wcZoneMethod struct {
	InstanceID int64  `json:"instance_id"`
	Title      string `json:"title"`
	Enabled    bool   `json:"enabled"`
	MethodID   string `json:"method_id"`
	Settings   map[string]struct {
		Value interface{} `json:"value"`
	} `json:"settings"`
}

func (m wcZoneMethod) toDomain() domain.ShippingMethod {
	title := m.Title
	if s, ok := m.Settings["title"].Value.(string); ok && s != "" {
		title = s
	}
	return domain.ShippingMethod{
		InstanceID: m.InstanceID,
		MethodID:   m.MethodID,
		Title:      title,
		Enabled:    m.Enabled,
	}
}

// wcAmount decodes WooCommerce's decimal strings ("12.50") as well as plain numbers.
type wcAmount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *wcAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = wcAmount(v)
	return nil
}

// wcString decodes either a JSON string or number into a string.
type wcString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *wcString) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), "\"")
	if str == "null" {
		str = ""
	}
	*s = wcString(str)
	return nil
}

// wcTime is a custom helper struct to handle WooCommerce's date format.
type wcTime time.Time

// UnmarshalJSON parses the custom date format used by WooCommerce.
func (t *wcTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	// WooCommerce usually returns ISO8601 "2018-12-19T14:48:25"
	if s == "null" || s == "" {
		*t = wcTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse date", zap.String("date", s), zap.Error(err))
		return nil
	}
	*t = wcTime(parsed)
	return nil
}
