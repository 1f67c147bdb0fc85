// Package net exposes the simulation over HTTP and websocket. Clients
// receive a full state snapshot after every tick and every accepted
// command; commands carry an optional sequence number that is echoed
// back as an ack or reject.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"emberhollow/server/internal/core"
	"emberhollow/server/logging"
)

const ProtocolVersion = 1

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
	Router    *logging.Router
}

type clientMessage struct {
	Ver      int     `json:"ver,omitempty"`
	Type     string  `json:"type"`
	Skill    string  `json:"skill,omitempty"`
	Action   string  `json:"action,omitempty"`
	Recipe   string  `json:"recipe,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	Enemy    string  `json:"enemy,omitempty"`
	Item     string  `json:"item,omitempty"`
	Shop     string  `json:"shop,omitempty"`
	Slot     string  `json:"slot,omitempty"`
	Style    string  `json:"style,omitempty"`
	Upgrade  string  `json:"upgrade,omitempty"`
	Stat     string  `json:"stat,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Amount   int     `json:"amount,omitempty"`
	SentAt   int64   `json:"sentAt,omitempty"`
	Seq      *uint64 `json:"seq,omitempty"`
}

type stateMessage struct {
	Ver   int           `json:"ver"`
	Type  string        `json:"type"`
	State core.Snapshot `json:"state"`
}

type commandAckMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
}

type commandRejectMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
}

type offlineMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Summary any    `json:"summary"`
}

// conn serializes writes so the broadcast goroutine and the command
// loop never interleave frames.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) writeJSON(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func NewHTTPHandler(c *core.Core, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string           `json:"status"`
			ServerTime int64            `json:"serverTime"`
			Core       core.Diagnostics `json:"core"`
			Logging    any              `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Core:       c.Diagnostics(),
		}
		if cfg.Router != nil {
			payload.Logging = cfg.Router.Stats()
		}
		writeHTTPJSON(w, payload)
	})

	mux.HandleFunc("/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeHTTPJSON(w, stateMessage{Ver: ProtocolVersion, Type: "state", State: c.Snapshot()})
	})

	mux.HandleFunc("/reset", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		c.ResetGame(r.Context())
		writeHTTPJSON(w, stateMessage{Ver: ProtocolVersion, Type: "state", State: c.Snapshot()})
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed: %v", err)
			return
		}
		cn := &conn{ws: ws}
		defer ws.Close()

		if err := cn.writeJSON(stateMessage{Ver: ProtocolVersion, Type: "state", State: c.Snapshot()}); err != nil {
			return
		}
		if sum := c.OfflineSummary(); sum != nil {
			if err := cn.writeJSON(offlineMessage{Ver: ProtocolVersion, Type: "offline", Summary: sum}); err != nil {
				return
			}
		}

		updates, cancel := c.Changes().Subscribe()
		defer cancel()
		done := make(chan struct{})
		defer close(done)
		go func() {
			for {
				select {
				case <-done:
					return
				case snap, ok := <-updates:
					if !ok {
						return
					}
					if err := cn.writeJSON(stateMessage{Ver: ProtocolVersion, Type: "state", State: snap}); err != nil {
						return
					}
				}
			}
		}()

		serveCommands(r.Context(), c, cn, logger)
	})

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func serveCommands(ctx context.Context, c *core.Core, cn *conn, logger *log.Logger) {
	for {
		_, payload, err := cn.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Printf("discarding malformed message: %v", err)
			continue
		}

		if msg.Type == "heartbeat" {
			ack := heartbeatMessage{
				Ver:        ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: time.Now().UnixMilli(),
				ClientTime: msg.SentAt,
			}
			if err := cn.writeJSON(ack); err != nil {
				return
			}
			continue
		}

		cmdErr := dispatch(ctx, c, msg)
		if msg.Seq != nil && *msg.Seq > 0 {
			var response any
			if cmdErr != nil {
				response = commandRejectMessage{
					Ver:    ProtocolVersion,
					Type:   "commandReject",
					Seq:    *msg.Seq,
					Reason: cmdErr.Error(),
				}
			} else {
				response = commandAckMessage{Ver: ProtocolVersion, Type: "commandAck", Seq: *msg.Seq}
			}
			if err := cn.writeJSON(response); err != nil {
				return
			}
		} else if cmdErr != nil {
			logger.Printf("command %q rejected: %v", msg.Type, cmdErr)
		}
	}
}

func dispatch(ctx context.Context, c *core.Core, msg clientMessage) error {
	switch msg.Type {
	case "startAction":
		return c.StartAction(ctx, msg.Skill, msg.Action)
	case "stopSkill":
		return c.StopSkill(ctx, msg.Skill)
	case "queueCraft":
		return c.AddToQueue(ctx, msg.Recipe, msg.Quantity)
	case "cancelCraft":
		return c.CancelCraft(ctx)
	case "startCombat":
		return c.StartCombat(ctx, msg.Enemy)
	case "stopCombat":
		return c.StopCombat(ctx)
	case "combatStyle":
		return c.SetCombatStyle(msg.Style)
	case "equipTool":
		return c.EquipTool(msg.Item)
	case "unequipTool":
		return c.UnequipTool(msg.Skill)
	case "equipItem":
		return c.EquipItem(msg.Item)
	case "unequipItem":
		return c.UnequipItem(msg.Slot)
	case "buy":
		return c.BuyFromShop(ctx, msg.Shop, msg.Item)
	case "sell":
		_, err := c.SellItem(ctx, msg.Item, msg.Amount)
		return err
	case "open":
		_, err := c.OpenItem(ctx, msg.Item)
		return err
	case "applyBuff":
		return c.AddBuff(msg.Item)
	case "prestige":
		return c.PurchasePrestigeUpgrade(ctx, msg.Upgrade)
	case "save":
		c.Save(ctx)
		return nil
	default:
		return errUnknownCommand
	}
}

var errUnknownCommand = errors.New("unknown command")

func writeHTTPJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
