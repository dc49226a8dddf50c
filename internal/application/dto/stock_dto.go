package dto

import "time"

// StockMutationRequest body para POST /api/stock/in y POST /api/stock/out.
// Quantity siempre positiva; el servicio aplica el signo según el tipo.
type StockMutationRequest struct {
	ProductID       string `json:"product_id"`
	VariantID       string `json:"variant_id,omitempty"`
	Quantity        int64  `json:"quantity"`
	Reason          string `json:"reason"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Notes           string `json:"notes,omitempty"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

// StockMutationResponse respuesta de una mutación exitosa.
type StockMutationResponse struct {
	MovementID int64 `json:"movement_id"`
	NewBalance int64 `json:"new_balance"`
}

// InsufficientStockResponse detalle del rechazo por stock insuficiente.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
}

// StockHistoryQuery filtros de GET /api/stock/movements (query string).
// Start y End en formato 2006-01-02; el fin es inclusivo (hasta el último instante del día).
type StockHistoryQuery struct {
	Start  string `query:"start"`
	End    string `query:"end"`
	Type   string `query:"type"`
	Search string `query:"search"`
	PageRequest
}

// StockMovementResponse una fila del historial de movimientos.
type StockMovementResponse struct {
	ID              int64     `json:"id"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	SKUCode         string    `json:"sku_code"`
	VariantID       *string   `json:"variant_id,omitempty"`
	Type            string    `json:"type"`
	Quantity        int64     `json:"quantity"`
	PreviousStock   int64     `json:"previous_stock"`
	CurrentStock    int64     `json:"current_stock"`
	Reason          string    `json:"reason"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	MovementDate    time.Time `json:"movement_date"`
}

// StockHistoryResponse página del historial global.
type StockHistoryResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ProductHistoryResponse página del historial de un producto, con su saldo actual.
type ProductHistoryResponse struct {
	ProductID    string                  `json:"product_id"`
	CurrentStock int64                   `json:"current_stock"`
	Items        []StockMovementResponse `json:"items"`
	Page         PageResponse            `json:"page"`
}

// StockStatisticsResponse agregados para el dashboard.
// TotalOut se reporta en valor absoluto; NetChange = TotalIn - TotalOut.
type StockStatisticsResponse struct {
	TotalIn           int64 `json:"total_in"`
	TotalOut          int64 `json:"total_out"`
	NetChange         int64 `json:"net_change"`
	MovementCount     int64 `json:"movement_count"`
	CurrentTotalStock int64 `json:"current_total_stock"`
	LowStockCount     int64 `json:"low_stock_count"`
}
