package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fullon/master-api/internal/model"
)

// ServiceManager supervises the gateway's named background workers
// (ticker, ohlcv, account). Start/stop are idempotent per service.
type ServiceManager struct {
	mu       sync.Mutex
	services map[string]*managedService
}

type managedService struct {
	name      string
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

func NewServiceManager(names ...string) *ServiceManager {
	services := make(map[string]*managedService, len(names))
	for _, name := range names {
		services[name] = &managedService{name: name}
	}
	return &ServiceManager{services: services}
}

func (m *ServiceManager) Start(name string) (model.ServiceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	svc, ok := m.services[name]
	if !ok {
		return model.ServiceState{}, fmt.Errorf("%w: unknown service %q", ErrInvalidInput, name)
	}
	if svc.cancel != nil {
		return stateOf(svc), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel
	svc.done = make(chan struct{})
	svc.startedAt = time.Now()
	go run(ctx, svc.name, svc.done)

	log.Printf("Service started: service=%s", name)
	return stateOf(svc), nil
}

func (m *ServiceManager) Stop(name string) (model.ServiceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	svc, ok := m.services[name]
	if !ok {
		return model.ServiceState{}, fmt.Errorf("%w: unknown service %q", ErrInvalidInput, name)
	}
	stopLocked(svc)
	return stateOf(svc), nil
}

func (m *ServiceManager) Restart(name string) (model.ServiceState, error) {
	if _, err := m.Stop(name); err != nil {
		return model.ServiceState{}, err
	}
	return m.Start(name)
}

func (m *ServiceManager) Status(name string) (model.ServiceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	svc, ok := m.services[name]
	if !ok {
		return model.ServiceState{}, fmt.Errorf("%w: unknown service %q", ErrInvalidInput, name)
	}
	return stateOf(svc), nil
}

func (m *ServiceManager) StatusAll() map[string]model.ServiceState {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make(map[string]model.ServiceState, len(m.services))
	for name, svc := range m.services {
		states[name] = stateOf(svc)
	}
	return states
}

func (m *ServiceManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, svc := range m.services {
		stopLocked(svc)
	}
}

func stopLocked(svc *managedService) {
	if svc.cancel == nil {
		return
	}
	svc.cancel()
	<-svc.done
	svc.cancel = nil
	svc.done = nil
	log.Printf("Service stopped: service=%s", svc.name)
}

func stateOf(svc *managedService) model.ServiceState {
	state := model.ServiceState{Name: svc.name, Running: svc.cancel != nil}
	if state.Running {
		state.StartedAt = svc.startedAt.UTC().Format(time.RFC3339)
	}
	return state
}

func run(ctx context.Context, name string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Service heartbeat: service=%s", name)
		}
	}
}
