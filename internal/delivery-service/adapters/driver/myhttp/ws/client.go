package ws

import (
	"context"
	"encoding/json"
	"time"

	"foodbridge/internal/delivery-service/core/domain/dto"
	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/mylogger"

	"github.com/gorilla/websocket"
)

// frame is what a courier client sends: a position sample, optionally
// carrying a status change.
type frame struct {
	OrderID int64    `json:"order_id"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Status  *string  `json:"status"`
}

type reply struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Client struct {
	ctx       context.Context
	conn      *websocket.Conn
	dis       *Dispatcher
	service   ports.IDeliveryService
	log       mylogger.Logger
	egress    chan reply
	courierID int64
}

func NewClient(ctx context.Context, conn *websocket.Conn, dis *Dispatcher, service ports.IDeliveryService, log mylogger.Logger, courierID int64) *Client {
	return &Client{
		ctx:       ctx,
		conn:      conn,
		dis:       dis,
		service:   service,
		log:       log,
		egress:    make(chan reply, 8),
		courierID: courierID,
	}
}

func (c *Client) ReadMessages() {
	defer c.dis.RemoveClient(c)
	c.conn.SetReadLimit(1024)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("courier connection closed unexpectedly", "courier-id", c.courierID)
			}
			return
		}

		var req frame
		if err := json.Unmarshal(payload, &req); err != nil {
			c.egress <- reply{Error: "invalid frame"}
			continue
		}
		c.handle(req)
	}
}

func (c *Client) handle(req frame) {
	ctx, cancel := context.WithTimeout(c.ctx, time.Second*15)
	defer cancel()

	if req.Status != nil {
		res, err := c.service.UpdateStatus(ctx, req.OrderID, dto.DeliveryStatusDto{
			Status: req.Status,
			Lat:    req.Lat,
			Lng:    req.Lng,
		})
		if err != nil {
			c.egress <- reply{OrderID: req.OrderID, Error: err.Error()}
			return
		}
		c.egress <- reply{OrderID: req.OrderID, Status: res.Status}
		return
	}

	if req.Lat == nil || req.Lng == nil {
		c.egress <- reply{OrderID: req.OrderID, Error: "lat and lng are required"}
		return
	}
	if err := c.service.ReportLocation(ctx, c.courierID, req.OrderID, *req.Lat, *req.Lng); err != nil {
		c.egress <- reply{OrderID: req.OrderID, Error: err.Error()}
		return
	}
	c.egress <- reply{OrderID: req.OrderID, Status: "location_recorded"}
}

func (c *Client) WriteMessages() {
	for {
		select {
		case <-c.ctx.Done():
			c.conn.Close()
			return
		case msg, ok := <-c.egress:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Warn("cannot write to courier socket", "courier-id", c.courierID, "error", err.Error())
				return
			}
		}
	}
}
