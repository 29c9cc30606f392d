package statesock

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WebsocketRW is the gorilla-backed MessageReaderWriter used in
// production.
type WebsocketRW struct {
	m    sync.Mutex
	url  string
	conn *websocket.Conn
}

func NewWebsocketRW(url string) *WebsocketRW {
	return &WebsocketRW{url: url}
}

func (w *WebsocketRW) Connect() error {
	w.m.Lock()
	defer w.m.Unlock()

	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
	if err != nil {
		return err
	}
	w.conn = conn
	return nil
}

func (w *WebsocketRW) Connected() bool {
	w.m.Lock()
	defer w.m.Unlock()
	return w.conn != nil
}

func (w *WebsocketRW) WriteMessage(data []byte) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.conn == nil {
		return websocket.ErrCloseSent
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		_ = w.conn.Close()
		w.conn = nil
		return err
	}
	return nil
}

func (w *WebsocketRW) ReadMessage() ([]byte, error) {
	w.m.Lock()
	conn := w.conn
	w.m.Unlock()
	if conn == nil {
		return nil, websocket.ErrCloseSent
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		w.m.Lock()
		_ = conn.Close()
		w.conn = nil
		w.m.Unlock()
		return nil, err
	}
	return data, nil
}
