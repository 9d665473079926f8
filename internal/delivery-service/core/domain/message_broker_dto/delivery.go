package messagebrokerdto

type DeliveryStatus struct {
	OrderID       int64  `json:"order_id"`
	CourierID     int64  `json:"courier_id"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlation_id"`
}
