package ledger

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// DefaultScale is the number of fractional digits amounts may carry.
const DefaultScale int32 = 4

const (
	// maxIntegerDigits bounds the integer part of an amount.
	maxIntegerDigits = 20
	// maxAmountDigits bounds the significant digits of an amount, trailing
	// fractional zeros included.
	maxAmountDigits = 40
)

type options struct {
	scale              int32
	withdrawalDisputes bool
}

// Option configures an Engine.
type Option func(*options)

// WithScale sets the maximum number of fractional digits accepted on
// deposit and withdrawal amounts.
func WithScale(scale int32) Option {
	return func(o *options) { o.scale = scale }
}

// WithWithdrawalDisputes controls whether withdrawals can be disputed.
// When disabled, a dispute naming a withdrawal is rejected as not disputable.
func WithWithdrawalDisputes(enabled bool) Option {
	return func(o *options) { o.withdrawalDisputes = enabled }
}

// accountState is one client's account guarded by its own lock. A state
// exists in the map once any record names the client, but it is only
// visible through Account and Snapshot after a record has been accepted.
type accountState struct {
	mu   sync.Mutex
	acct model.Account
	open bool
}

// Engine applies transaction records to client accounts.
//
// Records for the same client must be applied in input order. Records for
// different clients may be applied from different goroutines.
type Engine struct {
	opts options

	mu       sync.RWMutex
	accounts map[model.ClientID]*accountState
	entries  map[model.TxID]*model.DisputeEntry

	stats *statsCounter
}

// NewEngine creates an empty Engine.
func NewEngine(opts ...Option) *Engine {
	o := options{scale: DefaultScale, withdrawalDisputes: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		opts:     o,
		accounts: make(map[model.ClientID]*accountState),
		entries:  make(map[model.TxID]*model.DisputeEntry),
		stats:    newStatsCounter(),
	}
}

// Scale returns the configured amount scale.
func (e *Engine) Scale() int32 {
	return e.opts.scale
}

// Apply applies a single record. It returns nil on success or a
// *RejectionError describing why the record was skipped.
func (e *Engine) Apply(rec model.TransactionRecord) error {
	err := e.apply(rec)
	e.stats.record(rec.Kind, err)
	if err != nil {
		return err
	}
	return nil
}

func (e *Engine) apply(rec model.TransactionRecord) *RejectionError {
	switch {
	case rec.Kind.IsFundsMovement():
		if rej := e.checkAmount(rec); rej != nil {
			return rej
		}
	case rec.Kind.IsDisputeLifecycle():
	default:
		return reject(rec, ReasonUnknownKind, "kind %q", string(rec.Kind))
	}

	st := e.state(rec.Client)
	st.mu.Lock()
	defer st.mu.Unlock()

	switch rec.Kind {
	case model.KindDeposit:
		return e.deposit(st, rec)
	case model.KindWithdrawal:
		return e.withdraw(st, rec)
	case model.KindDispute:
		return e.dispute(st, rec)
	case model.KindResolve:
		return e.resolve(st, rec)
	default:
		return e.chargeback(st, rec)
	}
}

func (e *Engine) checkAmount(rec model.TransactionRecord) *RejectionError {
	if rec.Amount == nil {
		return reject(rec, ReasonInvalidAmount, "missing amount")
	}
	amount := *rec.Amount
	if !amount.IsPositive() {
		return reject(rec, ReasonInvalidAmount, "amount %s must be positive", amount)
	}
	if digits := amount.NumDigits() + int(amount.Exponent()); digits > maxIntegerDigits {
		return reject(rec, ReasonInvalidAmount, "amount has %d integer digits, limit is %d", digits, maxIntegerDigits)
	}
	if amount.NumDigits() > maxAmountDigits {
		return reject(rec, ReasonInvalidAmount, "amount has more than %d digits", maxAmountDigits)
	}
	if !amount.Equal(amount.Truncate(e.opts.scale)) {
		return reject(rec, ReasonInvalidAmount, "amount %s has more than %d decimal places", amount, e.opts.scale)
	}
	return nil
}

func (e *Engine) deposit(st *accountState, rec model.TransactionRecord) *RejectionError {
	amount := *rec.Amount
	if st.acct.Locked {
		return reject(rec, ReasonAccountLocked, "")
	}
	if !e.reserve(rec, amount) {
		return reject(rec, ReasonDuplicateTransaction, "")
	}

	st.open = true
	st.acct.Available = st.acct.Available.Add(amount)
	st.acct.Total = st.acct.Total.Add(amount)
	return nil
}

func (e *Engine) withdraw(st *accountState, rec model.TransactionRecord) *RejectionError {
	amount := *rec.Amount
	if st.acct.Locked {
		return reject(rec, ReasonAccountLocked, "")
	}
	if e.seen(rec.Tx) {
		return reject(rec, ReasonDuplicateTransaction, "")
	}
	if st.acct.Available.LessThan(amount) {
		return reject(rec, ReasonInsufficientFunds, "available %s, requested %s", st.acct.Available, amount)
	}
	if !e.reserve(rec, amount) {
		return reject(rec, ReasonDuplicateTransaction, "")
	}

	st.open = true
	st.acct.Available = st.acct.Available.Sub(amount)
	st.acct.Total = st.acct.Total.Sub(amount)
	return nil
}

func (e *Engine) dispute(st *accountState, rec model.TransactionRecord) *RejectionError {
	entry, rej := e.lookup(rec)
	if rej != nil {
		return rej
	}
	if entry.Kind == model.KindWithdrawal && !e.opts.withdrawalDisputes {
		return reject(rec, ReasonNotDisputable, "withdrawal disputes are disabled")
	}
	if !entry.Status.CanTransition(model.DisputeDisputed) {
		return transitionRejected(rec, entry.Status)
	}

	st.acct.Available = st.acct.Available.Sub(entry.Amount)
	st.acct.Held = st.acct.Held.Add(entry.Amount)
	entry.Status = model.DisputeDisputed
	return nil
}

func (e *Engine) resolve(st *accountState, rec model.TransactionRecord) *RejectionError {
	entry, rej := e.lookup(rec)
	if rej != nil {
		return rej
	}
	if !entry.Status.CanTransition(model.DisputeResolved) {
		return transitionRejected(rec, entry.Status)
	}

	st.acct.Available = st.acct.Available.Add(entry.Amount)
	st.acct.Held = st.acct.Held.Sub(entry.Amount)
	entry.Status = model.DisputeResolved
	return nil
}

func (e *Engine) chargeback(st *accountState, rec model.TransactionRecord) *RejectionError {
	entry, rej := e.lookup(rec)
	if rej != nil {
		return rej
	}
	if !entry.Status.CanTransition(model.DisputeChargedBack) {
		return transitionRejected(rec, entry.Status)
	}

	st.acct.Held = st.acct.Held.Sub(entry.Amount)
	st.acct.Total = st.acct.Total.Sub(entry.Amount)
	st.acct.Locked = true
	entry.Status = model.DisputeChargedBack
	return nil
}

func transitionRejected(rec model.TransactionRecord, status model.DisputeStatus) *RejectionError {
	if status.Terminal() {
		return reject(rec, ReasonInvalidLifecycleTransition, "transaction is %s, which is final", status)
	}
	return reject(rec, ReasonInvalidLifecycleTransition, "transaction is %s", status)
}

// lookup finds the entry a lifecycle record references. The caller holds
// the record client's lock, which is the only lock entries of that client
// are mutated under.
func (e *Engine) lookup(rec model.TransactionRecord) (*model.DisputeEntry, *RejectionError) {
	e.mu.RLock()
	entry, ok := e.entries[rec.Tx]
	e.mu.RUnlock()

	if !ok {
		return nil, reject(rec, ReasonUnknownTransaction, "")
	}
	if entry.Client != rec.Client {
		return nil, reject(rec, ReasonClientMismatch, "transaction belongs to client %d", entry.Client)
	}
	return entry, nil
}

func (e *Engine) seen(tx model.TxID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.entries[tx]
	return ok
}

// reserve records a new entry for rec. It returns false if another record
// claimed the same transaction ID first.
func (e *Engine) reserve(rec model.TransactionRecord, amount decimal.Decimal) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.entries[rec.Tx]; ok {
		return false
	}
	e.entries[rec.Tx] = &model.DisputeEntry{
		Tx:     rec.Tx,
		Client: rec.Client,
		Kind:   rec.Kind,
		Amount: amount,
		Status: model.DisputeNormal,
	}
	return true
}

func (e *Engine) state(client model.ClientID) *accountState {
	e.mu.RLock()
	st, ok := e.accounts[client]
	e.mu.RUnlock()
	if ok {
		return st
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.accounts[client]; ok {
		return st
	}
	st = &accountState{acct: model.NewAccount(client)}
	e.accounts[client] = st
	return st
}

// Account returns the current state of a client's account. Unknown clients
// yield an empty account and false.
func (e *Engine) Account(client model.ClientID) (model.Account, bool) {
	e.mu.RLock()
	st, ok := e.accounts[client]
	e.mu.RUnlock()
	if !ok {
		return model.NewAccount(client), false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.open {
		return model.NewAccount(client), false
	}
	return st.acct, true
}

// Dispute returns the lifecycle entry for a deposit or withdrawal.
func (e *Engine) Dispute(tx model.TxID) (model.DisputeEntry, bool) {
	e.mu.RLock()
	entry, ok := e.entries[tx]
	var st *accountState
	if ok {
		st = e.accounts[entry.Client]
	}
	e.mu.RUnlock()
	if !ok {
		return model.DisputeEntry{}, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return *entry, true
}

// Snapshot returns a copy of every account, ordered by client ID.
func (e *Engine) Snapshot() []model.Account {
	e.mu.RLock()
	states := make([]*accountState, 0, len(e.accounts))
	for _, st := range e.accounts {
		states = append(states, st)
	}
	e.mu.RUnlock()

	accts := make([]model.Account, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		if st.open {
			accts = append(accts, st.acct)
		}
		st.mu.Unlock()
	}

	slices.SortFunc(accts, func(a, b model.Account) int {
		return int(a.Client) - int(b.Client)
	})
	return accts
}

// Stats returns counters of applied and rejected records.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}
