package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/domain/services"
	"github.com/carlosrabelo/switchkit/core/infrastructure/transport"
	"github.com/carlosrabelo/switchkit/core/platform"
)

const defaultWorkers = 4

// Connector returns the device callback of a switch.
type Connector interface {
	Callback(cfg entities.SwitchConfig) ports.Callback
}

// InventoryApplicationService orchestrates driver resolution, port-channel
// collection and report publishing for configured switches.
type InventoryApplicationService struct {
	connector  Connector
	registry   *platform.Registry
	publishers []ports.Publisher
	metrics    *transport.CallbackMetrics
	workers    int
	log        *zap.Logger
	now        func() time.Time
}

// Option customizes an InventoryApplicationService.
type Option func(*InventoryApplicationService)

// WithPublishers ships every collected report to publishers.
func WithPublishers(publishers ...ports.Publisher) Option {
	return func(s *InventoryApplicationService) { s.publishers = append(s.publishers, publishers...) }
}

// WithMetrics instruments every device request.
func WithMetrics(m *transport.CallbackMetrics) Option {
	return func(s *InventoryApplicationService) { s.metrics = m }
}

// WithWorkers bounds the number of switches collected concurrently.
func WithWorkers(n int) Option {
	return func(s *InventoryApplicationService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewInventoryApplicationService creates a new instance of the inventory application service
func NewInventoryApplicationService(connector Connector, registry *platform.Registry, log *zap.Logger, opts ...Option) *InventoryApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &InventoryApplicationService{
		connector: connector,
		registry:  registry,
		workers:   defaultWorkers,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver resolves the platform driver of cfg and returns it with the
// callback every request must go through. Sandboxed switches get a
// callback that never sends mutating requests.
func (s *InventoryApplicationService) Driver(ctx context.Context, cfg entities.SwitchConfig) (platform.SwitchDriver, ports.Callback, error) {
	raw := s.connector.Callback(cfg)
	lc, loginConfigurable := raw.(ports.LoginConfigurable)

	if cfg.PlatformID() != platform.Auto && loginConfigurable {
		if driver, err := s.registry.Get(cfg.PlatformID()); err == nil {
			lc.SetLoginSequence(driver.LoginSequence(cfg.Username, cfg.Password, cfg.EnablePassword))
		}
	}

	cb := raw
	if s.metrics != nil {
		cb = s.metrics.Wrap(cfg.Target, cb)
	}
	if cfg.Sandbox {
		cb = transport.NewSandboxCallback(cb, s.log.With(zap.String("target", cfg.Target)))
	}

	driver, err := s.registry.Resolve(ctx, cfg.PlatformID(), cb)
	if err != nil {
		return nil, nil, fmt.Errorf("switch %s: %w", cfg.Target, err)
	}
	if cfg.PlatformID() == platform.Auto {
		s.log.Info("detected platform", zap.String("target", cfg.Target), zap.String("platform", driver.Name()))
		if loginConfigurable {
			lc.SetLoginSequence(driver.LoginSequence(cfg.Username, cfg.Password, cfg.EnablePassword))
		}
	}
	return driver, cb, nil
}

// Collect lists the port-channels of one switch and publishes the report.
// The report is returned even when a publisher fails.
func (s *InventoryApplicationService) Collect(ctx context.Context, cfg entities.SwitchConfig) (entities.InventoryReport, error) {
	report := entities.InventoryReport{Target: cfg.Target}

	driver, cb, err := s.Driver(ctx, cfg)
	if err != nil {
		return report, err
	}
	report.Platform = driver.Name()

	index, err := driver.InterfaceIndex(cb)
	if err != nil {
		return report, fmt.Errorf("switch %s: %w", cfg.Target, err)
	}
	log := s.log.With(zap.String("target", cfg.Target))
	records, err := services.NewPortChannelService(cb, driver, index, log).ListPortChannels(ctx)
	if err != nil {
		return report, fmt.Errorf("switch %s: %w", cfg.Target, err)
	}
	report.PortChannels = records
	report.CollectedAt = s.now()
	log.Info("collected port-channels", zap.Int("count", len(records)))

	return report, s.publish(ctx, report)
}

func (s *InventoryApplicationService) publish(ctx context.Context, report entities.InventoryReport) error {
	var errs []error
	for _, p := range s.publishers {
		if err := p.Publish(ctx, report); err != nil {
			s.log.Error("publish failed", zap.String("target", report.Target), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CollectAll collects every switch on a bounded worker pool. Reports are
// returned in switch order; failed switches keep only their target and the
// joined error lists every failure.
func (s *InventoryApplicationService) CollectAll(ctx context.Context, switches []entities.SwitchConfig) ([]entities.InventoryReport, error) {
	pool := gopool.NewPool("switchkit-inventory", int32(s.workers), gopool.NewConfig())
	reports := make([]entities.InventoryReport, len(switches))
	errs := make([]error, len(switches))

	var wg sync.WaitGroup
	pool.SetPanicHandler(func(_ context.Context, r interface{}) {
		s.log.Error("collector panicked", zap.Any("panic", r))
	})
	for i, sw := range switches {
		i, sw := i, sw
		reports[i].Target = sw.Target
		errs[i] = fmt.Errorf("switch %s: collector did not finish", sw.Target)
		wg.Add(1)
		pool.CtxGo(ctx, func() {
			defer wg.Done()
			reports[i], errs[i] = s.Collect(ctx, sw)
		})
	}
	wg.Wait()
	return reports, errors.Join(errs...)
}

// Apply resolves the driver of cfg and runs op against it.
func (s *InventoryApplicationService) Apply(ctx context.Context, cfg entities.SwitchConfig, op func(context.Context, platform.SwitchDriver, ports.Callback) error) error {
	driver, cb, err := s.Driver(ctx, cfg)
	if err != nil {
		return err
	}
	if err := op(ctx, driver, cb); err != nil {
		return fmt.Errorf("switch %s: %w", cfg.Target, err)
	}
	return nil
}
