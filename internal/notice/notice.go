package notice

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/billingconsole/internal/clock"
)

type Kind string

const (
	KindSuccess   Kind = "success"
	KindFailure   Kind = "failure"
	KindNoNetwork Kind = "no_network"
	KindRedirect  Kind = "redirect"
)

// Notice is a dismissible alert shown to the user. Blocking notices hold the
// screen until dismissed but never block navigation.
type Notice struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Header      string    `json:"header"`
	SubHeader   string    `json:"sub_header,omitempty"`
	Message     string    `json:"message,omitempty"`
	Blocking    bool      `json:"blocking"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	headerFailure = "Something Went Wrong"
	retryLater    = "We cannot process your request at this time. Please try again later."
	cannotProcess = "We cannot process your request at this time."
)

func newNotice(kind Kind) Notice {
	return Notice{
		ID:   ulid.Make().String(),
		Kind: kind,
	}
}

func Success() Notice {
	n := newNotice(KindSuccess)
	n.Header = "Success"
	n.SubHeader = "Your payment method is updated."
	return n
}

// GenericFailure carries no diagnostic detail.
func GenericFailure() Notice {
	n := newNotice(KindFailure)
	n.Header = headerFailure
	n.SubHeader = retryLater
	return n
}

// ProviderFailure surfaces the card provider's own message, e.g. a decline.
func ProviderFailure(message string) Notice {
	n := newNotice(KindFailure)
	n.Header = headerFailure
	n.SubHeader = cannotProcess
	n.Message = message
	return n
}

func NoConnection() Notice {
	n := newNotice(KindNoNetwork)
	n.Header = "No Internet Connection"
	n.Message = "Please check your internet connection."
	n.Blocking = true
	return n
}

func Redirect(url string) Notice {
	n := newNotice(KindRedirect)
	n.Header = "Opening the In-App Browser"
	n.SubHeader = "To update the billing information, you will be redirected to app.restvo.com."
	n.RedirectURL = url
	return n
}

// Recorder collects notices raised by one screen until the presenter drains them.
type Recorder struct {
	clock clock.Clock

	mu      sync.Mutex
	pending []Notice
	last    *Notice
}

func NewRecorder(clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Recorder{clock: clk}
}

// Show stamps CreatedAt with the time the notice is raised.
func (r *Recorder) Show(n Notice) {
	n.CreatedAt = r.clock.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, n)
	last := n
	r.last = &last
}

// Drain returns pending notices oldest first and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

// Last returns the most recent notice, drained or not.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Notice{}, false
	}
	return *r.last, true
}

func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
