package room

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

// Manager owns the live rooms. Rooms remove themselves when they close.
type Manager struct {
	cfg    Config
	sender Sender
	clock  quartz.Clock
	logger *log.Logger

	mu     sync.RWMutex
	rooms  map[string]*Room
	hooks  []func(*Room, CloseReason)
	serial int
}

func NewManager(cfg Config, sender Sender, clock quartz.Clock, logger *log.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		sender: sender,
		clock:  clock,
		logger: logger.WithPrefix("rooms"),
		rooms:  make(map[string]*Room),
	}
}

// OnClose adds fn to the hooks every room runs when it closes.
func (m *Manager) OnClose(fn func(*Room, CloseReason)) {
	m.mu.Lock()
	m.hooks = append(m.hooks, fn)
	m.mu.Unlock()
}

// Create seats players in order and starts the room.
func (m *Manager) Create(players [game.NumSeats]models.Player) *Room {
	id := uuid.NewString()

	m.mu.Lock()
	m.serial++
	name := fmt.Sprintf("Table %04d", m.serial)
	hooks := slices.Clone(m.hooks)
	r := New(id, name, players, m.cfg, m.sender, m.clock, m.logger)
	m.rooms[id] = r
	m.mu.Unlock()

	r.OnClose(func(r *Room, reason CloseReason) {
		m.remove(r.ID)
		for _, fn := range hooks {
			fn(r, reason)
		}
	})
	r.Start()
	m.logger.Info("room created", "room", id, "name", name)
	return r
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// List returns the public view of every live room, oldest name first.
func (m *Manager) List() []models.RoomInfo {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	infos := make([]models.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Shutdown closes every room and waits for them to finish.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	for _, r := range rooms {
		r.Close()
	}
	for _, r := range rooms {
		<-r.Done()
	}
}
