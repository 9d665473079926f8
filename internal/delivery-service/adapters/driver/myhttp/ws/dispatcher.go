package ws

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/mylogger"

	"github.com/gorilla/websocket"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientList is a map used to help manage a map of clients
type ClientList map[*Client]bool

type Dispatcher struct {
	clients ClientList
	sync.RWMutex
	ctx     context.Context
	log     mylogger.Logger
	service ports.IDeliveryService
}

func NewDispatcher(ctx context.Context, log mylogger.Logger, service ports.IDeliveryService) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		ctx:     ctx,
		log:     log,
		service: service,
	}
}

func (d *Dispatcher) CourierHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("courierWsHandler")

		courierID, err := strconv.ParseInt(r.PathValue("courier_id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(d.ctx, conn, d, d.service, d.log, courierID)
		d.AddClient(client)
		go client.ReadMessages()
		go client.WriteMessages()

		log.Info("courier connected", "courier-id", courierID)
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[client] = true
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		client.conn.Close()
		delete(d.clients, client)
	}
}
