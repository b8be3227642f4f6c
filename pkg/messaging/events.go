package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventStockReceived   = "ledger.stock.received"
	EventSaleRecorded    = "ledger.sale.recorded"
	EventRecipeProduced  = "ledger.recipe.produced"
	EventLotExpired      = "ledger.lot.expired"
	EventStockAdjusted   = "ledger.stock.adjusted"
	EventQualityRecorded = "ledger.quality.recorded"
)

// Exchange names
const (
	ExchangeLedgerEvents = "ledger.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// StockReceivedEvent is published when a lot is received into inventory
type StockReceivedEvent struct {
	LotID      string          `json:"lot_id"`
	ProductID  string          `json:"product_id"`
	SupplierID string          `json:"supplier_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiryDate string          `json:"expiry_date"`
	ReceivedBy string          `json:"received_by"`
}

// SaleRecordedEvent is published when a sale commits
type SaleRecordedEvent struct {
	SaleID    string          `json:"sale_id"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	SoldBy    string          `json:"sold_by"`
}

// RecipeProducedEvent is published when a recipe production commits
type RecipeProducedEvent struct {
	ProductionID    string          `json:"production_id"`
	RecipeID        string          `json:"recipe_id"`
	BatchMultiplier decimal.Decimal `json:"batch_multiplier"`
	OutputProductID string          `json:"output_product_id"`
	OutputQuantity  decimal.Decimal `json:"output_quantity"`
	ProducedBy      string          `json:"produced_by"`
}

// LotExpiredEvent is published when a lot is written off as expired
type LotExpiredEvent struct {
	LotID             string          `json:"lot_id"`
	ProductID         string          `json:"product_id"`
	WrittenOffQty     decimal.Decimal `json:"written_off_quantity"`
	ExpiryDate        string          `json:"expiry_date"`
	RemovedBy         string          `json:"removed_by"`
	ExpiredProductsID string          `json:"expired_products_id"`
}

// StockAdjustedEvent is published when a manual adjustment is written
type StockAdjustedEvent struct {
	ProductID   string          `json:"product_id"`
	Delta       decimal.Decimal `json:"delta"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	Reason      string          `json:"reason"`
	PerformedBy string          `json:"performed_by"`
}

// QualityRecordedEvent is published when a quality check is recorded
type QualityRecordedEvent struct {
	CheckID   string `json:"check_id"`
	CheckType string `json:"check_type"`
	ProductID string `json:"product_id,omitempty"`
	LotID     string `json:"lot_id,omitempty"`
	Passed    bool   `json:"passed"`
	CheckedBy string `json:"checked_by"`
}
