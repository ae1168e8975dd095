package ws

import (
	"sync"

	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
)

// Conn is the slice of *websocket.Conn the registry needs.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry tracks live push connections and fans broadcasts out to all of
// them. A connection whose send fails is dropped; the rest still receive the
// message.
type Registry struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
}

func CreateRegistry() *Registry {
	return &Registry{
		conns: make(map[Conn]struct{}),
	}
}

func (r *Registry) Register(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn] = struct{}{}

	logger.Info("push client connected",
		zap.String("function", "Registry.Register"),
		zap.Int("total", len(r.conns)),
	)
}

// Unregister is idempotent: removing an unknown connection is a no-op.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, tracked := r.conns[conn]; !tracked {
		return
	}
	delete(r.conns, conn)

	logger.Info("push client disconnected",
		zap.String("function", "Registry.Unregister"),
		zap.Int("total", len(r.conns)),
	)
}

func (r *Registry) Broadcast(message any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for conn := range r.conns {
		if err := conn.WriteJSON(message); err != nil {
			logger.Warn("failed to send to push client, dropping connection",
				zap.String("function", "Registry.Broadcast"),
				zap.Error(err),
			)
			delete(r.conns, conn)
			_ = conn.Close()
		}
	}
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
