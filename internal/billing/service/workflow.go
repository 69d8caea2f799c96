package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/broadcast"
	"github.com/smallbiznis/billingconsole/internal/cache"
	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/communitycontext"
	communitydomain "github.com/smallbiznis/billingconsole/internal/community/domain"
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/notice"
	obscontext "github.com/smallbiznis/billingconsole/internal/observability/context"
	"github.com/smallbiznis/billingconsole/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/billingconsole/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by every screen.
type Deps struct {
	Cfg       config.Config
	Console   *config.ConsoleConfigHolder
	Log       *zap.Logger
	Resources resourcedomain.Loader
	Cache     cache.Store
	Backend   paymentdomain.Backend
	Directory communitydomain.Directory
	Provider  paymentdomain.CardProvider
	Hub       *broadcast.Hub
	Metrics   *obsmetrics.Metrics
	Clock     clock.Clock
}

// Workflow drives one billing screen. State is guarded by mu, which is never
// held across calls to collaborators, so overlapping calls interleave at I/O.
type Workflow struct {
	id      string
	deps    Deps
	log     *zap.Logger
	notices *notice.Recorder

	lifetime     context.Context
	cancel       context.CancelFunc
	listening    sync.WaitGroup
	teardownOnce sync.Once

	// captureMu serializes BeginCapture so a second widget is never created.
	captureMu sync.Mutex

	mu            sync.Mutex
	closed        bool
	sub           *broadcast.Subscription
	community     communitycontext.Community
	modal         bool
	anchor        string
	card          domain.CardElement
	captureErr    error
	resource      *resourcedomain.PlanResource
	customer      *paymentdomain.Customer
	snapshot      *domain.Snapshot
	invoices      []paymentdomain.Invoice
	endOfInvoices bool
	activeUsers   int64
	updatePayment bool
	spinner       bool
	state         domain.SubmitState
	transitions   []domain.SubmitState
	form          domain.BillingForm
	refreshNeeded bool
	openedAt      time.Time
}

func NewWorkflow(id string, deps Deps) *Workflow {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	lifetime, cancel := context.WithCancel(obscontext.WithScreenID(context.Background(), id))
	w := &Workflow{
		id:       id,
		deps:     deps,
		log:      logger.WithScreen(deps.Log.Named("billing.workflow"), id, ""),
		notices:  notice.NewRecorder(deps.Clock),
		lifetime: lifetime,
		cancel:   cancel,
		anchor:   domain.AnchorInline,
		invoices: []paymentdomain.Invoice{},
		state:    domain.StateIdle,
		openedAt: deps.Clock.Now(),
	}
	deps.Metrics.ScreenOpened(lifetime)
	return w
}

func (w *Workflow) ID() string { return w.id }

func (w *Workflow) Notices() *notice.Recorder { return w.notices }

// SetModal records how the screen is presented. It takes effect on Enter.
func (w *Workflow) SetModal(modal bool) {
	w.mu.Lock()
	w.modal = modal
	w.mu.Unlock()
}

// Enter picks the card anchor for the current presentation.
func (w *Workflow) Enter() {
	w.mu.Lock()
	w.anchor = domain.AnchorFor(w.modal)
	w.mu.Unlock()
}

// Close returns whether the presenter should refresh after dismissal.
func (w *Workflow) Close() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshNeeded
}

// Teardown releases the broadcast subscription and cancels in-flight work.
// It is safe to call at any time, including while Activate is running.
func (w *Workflow) Teardown() {
	w.teardownOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		sub := w.sub
		w.mu.Unlock()

		w.cancel()
		sub.Close()
		w.listening.Wait()
		w.deps.Metrics.ScreenClosed(context.Background())
		w.log.Debug("screen torn down")
	})
}

func (w *Workflow) View() domain.View {
	w.mu.Lock()
	defer w.mu.Unlock()

	invoices := make([]paymentdomain.Invoice, len(w.invoices))
	copy(invoices, w.invoices)
	return domain.View{
		ScreenID:            w.id,
		CommunityID:         w.community.ID,
		Modal:               w.modal,
		Anchor:              w.anchor,
		Card:                w.card,
		Resource:            w.resource,
		Customer:            w.customer,
		Snapshot:            w.snapshot,
		Invoices:            invoices,
		EndOfInvoices:       w.endOfInvoices,
		NumberOfActiveUsers: w.activeUsers,
		UpdatePayment:       w.updatePayment,
		Spinner:             w.spinner,
		State:               w.state,
		Form:                w.form,
		RefreshNeeded:       w.refreshNeeded,
		OpenedAt:            w.openedAt,
	}
}

// Transitions returns the states visited by the most recent submission.
func (w *Workflow) Transitions() []domain.SubmitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.SubmitState, len(w.transitions))
	copy(out, w.transitions)
	return out
}

func (w *Workflow) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// communityID prefers the community carried by ctx over the last activated one.
func (w *Workflow) communityID(ctx context.Context) string {
	if id, ok := communitycontext.IDFromContext(ctx); ok {
		return id
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.community.ID
}

// scoped ties ctx to the screen lifetime so Teardown cancels it.
func (w *Workflow) scoped(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(obscontext.WithScreenID(ctx, w.id))
	stop := context.AfterFunc(w.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// subscribe registers the single broadcast subscription of this screen.
func (w *Workflow) subscribe() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrScreenClosed
	}
	if w.sub != nil {
		return nil
	}
	sub, err := w.deps.Hub.Subscribe()
	if err != nil {
		return err
	}
	w.sub = sub
	w.listening.Add(1)
	go w.listen(sub)
	return nil
}

func (w *Workflow) listen(sub *broadcast.Subscription) {
	defer w.listening.Done()
	for msg := range sub.Messages() {
		if msg.Kind != broadcast.KindLoadCommunityReady {
			continue
		}
		w.refresh(msg)
	}
}

// refresh re-runs the bootstrap. A message naming a community switches the
// screen to it; one without a community reloads the current one.
func (w *Workflow) refresh(msg broadcast.Message) {
	target := ""
	if msg.CommunityReady != nil {
		target = strings.TrimSpace(msg.CommunityReady.CommunityID)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if target != "" && target != w.community.ID {
		w.log.Info("switching community", zap.String("from", w.community.ID), zap.String("to", target))
		w.community = communitycontext.Community{ID: target}
	}
	w.updatePayment = false
	w.invoices = []paymentdomain.Invoice{}
	communityID := w.community.ID
	w.mu.Unlock()

	if err := w.bootstrap(w.lifetime, communityID); err != nil && w.lifetime.Err() == nil {
		w.log.Warn("refresh after community ready failed",
			zap.String("community_id", communityID),
			zap.Error(err),
		)
	}
}
