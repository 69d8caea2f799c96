package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/broadcast"
	"github.com/smallbiznis/billingconsole/internal/cache"
	"github.com/smallbiznis/billingconsole/internal/clock"
	communitydomain "github.com/smallbiznis/billingconsole/internal/community/domain"
	"github.com/smallbiznis/billingconsole/internal/config"
	obsmetrics "github.com/smallbiznis/billingconsole/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg       config.Config
	Console   *config.ConsoleConfigHolder
	Log       *zap.Logger
	Node      *snowflake.Node
	Resources resourcedomain.Loader
	Cache     cache.Store
	Backend   paymentdomain.Backend
	Directory communitydomain.Directory
	Provider  paymentdomain.CardProvider
	Hub       *broadcast.Hub
	Clock     clock.Clock
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Manager owns the open screens of this process.
type Manager struct {
	deps Deps
	node *snowflake.Node
	log  *zap.Logger

	mu      sync.RWMutex
	screens map[string]*Workflow
}

func NewManager(p Params) *Manager {
	return &Manager{
		deps: Deps{
			Cfg:       p.Cfg,
			Console:   p.Console,
			Log:       p.Log,
			Resources: p.Resources,
			Cache:     p.Cache,
			Backend:   p.Backend,
			Directory: p.Directory,
			Provider:  p.Provider,
			Hub:       p.Hub,
			Metrics:   p.Metrics,
			Clock:     p.Clock,
		},
		node:    p.Node,
		log:     p.Log.Named("billing.manager"),
		screens: make(map[string]*Workflow),
	}
}

// Open registers a new screen and activates it. The screen stays registered
// when activation fails so the presenter can still show notices and retry.
func (m *Manager) Open(ctx context.Context, modal bool) (domain.Screen, error) {
	w := NewWorkflow(m.node.Generate().String(), m.deps)
	w.SetModal(modal)

	m.mu.Lock()
	m.screens[w.ID()] = w
	m.mu.Unlock()

	if err := w.Activate(ctx); err != nil {
		m.log.Warn("screen activation incomplete", zap.String("screen_id", w.ID()), zap.Error(err))
		return w, err
	}
	return w, nil
}

func (m *Manager) Get(id string) (domain.Screen, error) {
	w, err := m.workflow(id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Workflow returns the concrete screen, for callers that need its notices.
func (m *Manager) Workflow(id string) (*Workflow, error) {
	return m.workflow(id)
}

func (m *Manager) workflow(id string) (*Workflow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidScreenID
	}
	if _, err := snowflake.ParseString(id); err != nil {
		return nil, domain.ErrInvalidScreenID
	}
	m.mu.RLock()
	w, ok := m.screens[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrScreenNotFound
	}
	return w, nil
}

// Remove tears the screen down and forgets it.
func (m *Manager) Remove(id string) error {
	w, err := m.workflow(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.screens, w.ID())
	m.mu.Unlock()
	w.Teardown()
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.screens)
}

// Shutdown tears down every open screen.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	screens := make([]*Workflow, 0, len(m.screens))
	for id, w := range m.screens {
		screens = append(screens, w)
		delete(m.screens, id)
	}
	m.mu.Unlock()

	for _, w := range screens {
		w.Teardown()
	}
	if len(screens) > 0 {
		m.log.Info("closed open screens", zap.Int("count", len(screens)))
	}
}

var _ domain.Manager = (*Manager)(nil)
var _ domain.Screen = (*Workflow)(nil)
