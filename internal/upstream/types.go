package upstream

import "encoding/json"

// SpendPoint is one time bucket of aggregated spend.
type SpendPoint struct {
	Period     string  `json:"period"`
	TotalSpent float64 `json:"total_spent"`
}

// SpendResult carries the spend-over-time series plus the account currency.
type SpendResult struct {
	Currency string
	Data     []SpendPoint
}

// UnmarshalJSON accepts both the enveloped form {"data":[...],"currency":...}
// and a bare array of points, normalizing to one shape at the client boundary.
func (r *SpendResult) UnmarshalJSON(raw []byte) error {
	var bare []SpendPoint
	if err := json.Unmarshal(raw, &bare); err == nil {
		r.Data = bare
		r.Currency = ""
		return nil
	}
	var envelope struct {
		Currency string       `json:"currency"`
		Data     []SpendPoint `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	r.Currency = envelope.Currency
	r.Data = envelope.Data
	return nil
}

// CategorySlice is one category's summed spend within a period.
type CategorySlice struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryResult is the expenses-by-category payload.
type CategoryResult struct {
	Categories []CategorySlice `json:"categories"`
	Currency   string          `json:"currency"`
	HasData    bool            `json:"has_data"`
}

// RankedProduct appears in both top-products (Count/Percentage populated) and
// most-expensive-products (Price populated). Rank is implied by slice order.
type RankedProduct struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Price      float64 `json:"price"`
	Category   string  `json:"category"`
}

// ProductsResult is shared by the two ranked-product endpoints.
type ProductsResult struct {
	Period        string          `json:"period"`
	Products      []RankedProduct `json:"products"`
	TotalReceipts int             `json:"total_receipts"`
	Currency      string          `json:"currency"`
	HasData       bool            `json:"has_data"`
}

// ShoppingDayCount is the receipt count for one weekday, labelled Mon..Sun.
type ShoppingDayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ShoppingDaysResult is the shopping-days histogram payload.
type ShoppingDaysResult struct {
	Period   string             `json:"period"`
	Data     []ShoppingDayCount `json:"data"`
	Currency string             `json:"currency"`
	HasData  bool               `json:"has_data"`
}

// DietSample is one dated sample of diet composition percentages. Samples
// with TotalSpent == 0 carry no signal and are excluded from line rendering.
type DietSample struct {
	Period            string  `json:"period"`
	TotalSpent        float64 `json:"total_spent"`
	FruitsPercent     float64 `json:"fruits_percent"`
	VegetablesPercent float64 `json:"vegetables_percent"`
	MeatPercent       float64 `json:"meat_percent"`
	SeafoodPercent    float64 `json:"seafood_percent"`
	SnacksPercent     float64 `json:"snacks_percent"`
	DairyPercent      float64 `json:"dairy_percent"`
}

// DietResult is the diet-composition payload.
type DietResult struct {
	Data     []DietSample `json:"data"`
	Currency string       `json:"currency"`
}

// BillStats summarizes receipt count and average bill for an interval.
type BillStats struct {
	TotalReceipts    int      `json:"total_receipts"`
	AverageBill      float64  `json:"average_bill"`
	AverageBillDelta *float64 `json:"average_bill_delta"`
	Currency         string   `json:"currency"`
	HasData          bool     `json:"has_data"`
}

// CategoryItem is one grouped product inside a category drill-down.
type CategoryItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// CategoryItemsResult is the products-by-category drill-down payload.
type CategoryItemsResult struct {
	Items    []CategoryItem `json:"items"`
	Currency string         `json:"currency"`
	HasData  bool           `json:"has_data"`
}

// ReceiptItem is a line item on a receipt.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Total    float64 `json:"total"`
	Category string  `json:"category"`
}

// Receipt is a full receipt as returned by the drill-down and edit endpoints.
type Receipt struct {
	ID            int64         `json:"id"`
	StoreName     string        `json:"store_name"`
	StoreCategory string        `json:"store_category"`
	Date          string        `json:"date"`
	Total         float64       `json:"total"`
	Currency      string        `json:"currency"`
	TaxAmount     float64       `json:"tax_amount"`
	TotalDiscount float64       `json:"total_discount"`
	Items         []ReceiptItem `json:"items"`
}

// ReceiptsResult is the receipts-by-date drill-down payload.
type ReceiptsResult struct {
	Receipts []Receipt `json:"receipts"`
}

// StoreNamesResult lists distinct store names for the filter sidebar.
type StoreNamesResult struct {
	Success    bool     `json:"success"`
	StoreNames []string `json:"store_names"`
}

// StoreCategoriesResult lists distinct store categories for the filter sidebar.
type StoreCategoriesResult struct {
	Success         bool     `json:"success"`
	StoreCategories []string `json:"store_categories"`
}

// WidgetOrderResult is the persisted dashboard widget order.
type WidgetOrderResult struct {
	Order []string `json:"order"`
}

// ReceiptMutationResult acknowledges a field-level receipt edit.
type ReceiptMutationResult struct {
	Success bool    `json:"success"`
	Receipt Receipt `json:"receipt"`
}

// ExportPayload is the aggregate analytics document posted to the server-side
// PDF renderer. Data is keyed chart -> interval -> raw endpoint payload.
type ExportPayload struct {
	UserPlan   string                    `json:"user_plan"`
	Data       map[string]map[string]any `json:"data"`
	ExportDate string                    `json:"export_date"`
}
