package matcher

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/pkg/logger"
)

// CascadeState is the only mutable data in the matching core: which
// transaction ids have already been claimed, and the append-only list of
// match groups committed so far. Encapsulated in a single value passed
// into every pass rather than kept in process-wide globals.
type CascadeState struct {
	matchedBank   map[string]bool
	matchedLedger map[string]bool
	matches       []domain.MatchGroup
	nextID        func() string
}

func newCascadeState(idGen func() string) *CascadeState {
	return &CascadeState{
		matchedBank:   make(map[string]bool),
		matchedLedger: make(map[string]bool),
		nextID:        idGen,
	}
}

// commit records a new MatchGroup and claims all of its transactions'
// ids. It is an InternalInvariantViolation to commit a transaction that is
// already claimed on its side.
func (s *CascadeState) commit(bank, ledger []domain.Transaction, kind domain.MatchKind, reason string, confidence float64) error {
	for _, b := range bank {
		if s.matchedBank[b.ID] {
			return fmt.Errorf("%w: bank transaction %s already matched", ErrInvariantViolation, b.ID)
		}
	}
	for _, l := range ledger {
		if s.matchedLedger[l.ID] {
			return fmt.Errorf("%w: ledger transaction %s already matched", ErrInvariantViolation, l.ID)
		}
	}

	group := domain.MatchGroup{
		ID:         s.nextID(),
		Bank:       append([]domain.Transaction(nil), bank...),
		Ledger:     append([]domain.Transaction(nil), ledger...),
		Kind:       kind,
		Reason:     reason,
		Confidence: confidence,
	}

	for _, b := range bank {
		s.matchedBank[b.ID] = true
	}
	for _, l := range ledger {
		s.matchedLedger[l.ID] = true
	}
	s.matches = append(s.matches, group)

	logger.GetLogger().WithFields(map[string]interface{}{
		"match_id":   group.ID,
		"kind":       kind,
		"confidence": confidence,
		"reason":     reason,
	}).Debug("Committed match group")

	return nil
}

// Cascade orchestrates the ordered pass list against one sorted view of
// each side, enforcing mutual exclusion via CascadeState.
type Cascade struct {
	cfg    Config
	state  *CascadeState
	bank   []domain.Transaction // sorted ascending by date, ties by input order
	ledger []domain.Transaction // sorted ascending by date, ties by input order

	ledgerIndex *AmountIndex // indexes ledger, queried while iterating bank
	bankIndex   *AmountIndex // indexes bank, queried while iterating ledger (pass 5b)
}

// NewCascade builds a cascade over already sorted bank/ledger views.
func NewCascade(cfg Config, bankSorted, ledgerSorted []domain.Transaction, idGen func() string) *Cascade {
	return &Cascade{
		cfg:         cfg,
		state:       newCascadeState(idGen),
		bank:        bankSorted,
		ledger:      ledgerSorted,
		ledgerIndex: NewAmountIndex(ledgerSorted),
		bankIndex:   NewAmountIndex(bankSorted),
	}
}

// Run executes every pass in the fixed cascade order. Each pass only
// considers transactions not yet claimed by an earlier pass.
func (c *Cascade) Run() error {
	passes := []func() error{
		c.passReferenceID,
		c.passPerfectDate,
		c.passStrictWindow,
		c.passLooseAmountStrongText,
		c.passFuzzyDate,
		c.passOneToMany,
		c.passManyToOne,
	}
	for _, p := range passes {
		if err := p(); err != nil {
			return err
		}
	}
	return nil
}

// Matches returns the committed match groups in commit order.
func (c *Cascade) Matches() []domain.MatchGroup { return c.state.matches }

func dollarsToCents(dollars float64) int64 {
	if dollars < 0 {
		dollars = -dollars
	}
	return int64(math.Ceil(dollars*100 - 1e-9))
}

func dateDiffDays(a, b time.Time) int {
	diff := a.Sub(b).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return int(math.Round(diff))
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Pass 1 — Reference-ID Match (confidence 0.99, kind exact).
func (c *Cascade) passReferenceID() error {
	tolCents := dollarsToCents(c.cfg.AmountTolerance)

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		candidates := c.ledgerIndex.Candidates(b.AmountCents, tolCents)
		for _, l := range candidates {
			if c.state.matchedLedger[l.ID] {
				continue
			}
			if l.Type != b.Type {
				continue
			}
			if dateDiffDays(b.Date, l.Date) > c.cfg.DateWindowReference {
				continue
			}
			if !sharesNumericToken(b.Description, l.Description) {
				continue
			}

			if err := c.state.commit([]domain.Transaction{b}, []domain.Transaction{l},
				domain.KindExact, "Matched by Amount & Reference ID", 0.99); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// Pass 2 — Perfect Date (confidence 0.95, kind exact).
func (c *Cascade) passPerfectDate() error {
	tolCents := dollarsToCents(c.cfg.AmountTolerance)

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		candidates := c.ledgerIndex.Candidates(b.AmountCents, tolCents)
		type scored struct {
			tx    domain.Transaction
			score float64
		}
		var pool []scored
		for _, l := range candidates {
			if c.state.matchedLedger[l.ID] || l.Type != b.Type {
				continue
			}
			if dateDiffDays(b.Date, l.Date) != 0 {
				continue
			}
			pool = append(pool, scored{l, similarity(b.Description, l.Description)})
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })
		best := pool[0]

		reason := "Matched by Amount & Exact Date"
		if best.score > 0.8 {
			reason = "Perfect Match"
		}
		if err := c.state.commit([]domain.Transaction{b}, []domain.Transaction{best.tx},
			domain.KindExact, reason, 0.95); err != nil {
			return err
		}
	}
	return nil
}

// Pass 3 — Strict Window (confidence 0.90, kind exact).
func (c *Cascade) passStrictWindow() error {
	tolCents := dollarsToCents(c.cfg.AmountTolerance)
	const scoreBand = 0.1

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		candidates := c.ledgerIndex.Candidates(b.AmountCents, tolCents)
		type scored struct {
			tx       domain.Transaction
			score    float64
			dateDiff int
		}
		var pool []scored
		for _, l := range candidates {
			if c.state.matchedLedger[l.ID] || l.Type != b.Type {
				continue
			}
			dd := dateDiffDays(b.Date, l.Date)
			if dd > c.cfg.DateWindowStrict {
				continue
			}
			pool = append(pool, scored{l, similarity(b.Description, l.Description), dd})
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool {
			if math.Abs(pool[i].score-pool[j].score) > scoreBand {
				return pool[i].score > pool[j].score
			}
			return pool[i].dateDiff < pool[j].dateDiff
		})
		best := pool[0]

		if !(best.score >= 0.5 || best.dateDiff <= 1) {
			continue
		}

		reason := "Amount & Nearby Date"
		if best.score >= 0.8 {
			reason = "Strong Text & Nearby Date"
		}
		if err := c.state.commit([]domain.Transaction{b}, []domain.Transaction{best.tx},
			domain.KindExact, reason, 0.90); err != nil {
			return err
		}
	}
	return nil
}

// Pass 3.5 — Loose Amount, Strong Text (confidence 0.88, kind fuzzy).
func (c *Cascade) passLooseAmountStrongText() error {
	tolCents := dollarsToCents(c.cfg.AmountToleranceLoose)
	const scoreBand = 0.05

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		candidates := c.ledgerIndex.Candidates(b.AmountCents, tolCents)
		type scored struct {
			tx        domain.Transaction
			score     float64
			amountDif int64
		}
		var pool []scored
		for _, l := range candidates {
			if c.state.matchedLedger[l.ID] || l.Type != b.Type {
				continue
			}
			if dateDiffDays(b.Date, l.Date) > c.cfg.DateWindowStrict {
				continue
			}
			score := similarity(b.Description, l.Description)
			if score <= 0.85 {
				continue
			}
			pool = append(pool, scored{l, score, absInt64(b.AmountCents - l.AmountCents)})
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool {
			if math.Abs(pool[i].score-pool[j].score) > scoreBand {
				return pool[i].score > pool[j].score
			}
			return pool[i].amountDif < pool[j].amountDif
		})
		best := pool[0]

		reason := fmt.Sprintf("Loose Amount & Strong Text Match (Approx Amount (Diff: %.2f))", float64(best.amountDif)/100)
		if err := c.state.commit([]domain.Transaction{b}, []domain.Transaction{best.tx},
			domain.KindFuzzy, reason, 0.88); err != nil {
			return err
		}
	}
	return nil
}

// Pass 4 — Fuzzy Date (confidence = finalScore, kind fuzzy).
func (c *Cascade) passFuzzyDate() error {
	tolCents := dollarsToCents(c.cfg.AmountTolerance)

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		candidates := c.ledgerIndex.Candidates(b.AmountCents, tolCents)
		type scored struct {
			tx         domain.Transaction
			rawScore   float64
			dateDiff   int
			finalScore float64
		}
		var pool []scored
		for _, l := range candidates {
			if c.state.matchedLedger[l.ID] || l.Type != b.Type {
				continue
			}
			dd := dateDiffDays(b.Date, l.Date)
			if dd > c.cfg.DateWindowLoose {
				continue
			}
			raw := similarity(b.Description, l.Description)
			penalty := (float64(dd) / float64(c.cfg.DateWindowLoose)) * 0.2
			pool = append(pool, scored{l, raw, dd, raw - penalty})
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool { return pool[i].finalScore > pool[j].finalScore })
		best := pool[0]

		if best.rawScore < c.cfg.FuzzyTextThreshold {
			continue
		}

		reason := fmt.Sprintf("Fuzzy match: %.0f%% text sim, %dd offset", best.rawScore*100, best.dateDiff)
		if err := c.state.commit([]domain.Transaction{b}, []domain.Transaction{best.tx},
			domain.KindFuzzy, reason, best.finalScore); err != nil {
			return err
		}
	}
	return nil
}

// Pass 5a — One-to-Many (confidence 0.85, kind one-to-many): one bank
// transaction split across several ledger entries.
func (c *Cascade) passOneToMany() error {
	if c.cfg.MaxCombinationDepth == 0 {
		return nil
	}
	tolCents := dollarsToCents(c.cfg.AmountTolerance)

	for _, b := range c.bank {
		if c.state.matchedBank[b.ID] {
			continue
		}

		var pool []domain.Transaction
		for _, l := range c.ledger {
			if c.state.matchedLedger[l.ID] || l.Type != b.Type {
				continue
			}
			if dateDiffDays(b.Date, l.Date) > c.cfg.DateWindowStrict {
				continue
			}
			if l.AmountCents > b.AmountCents+tolCents {
				continue
			}
			pool = append(pool, l)
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool {
			return dateDiffDays(b.Date, pool[i].Date) < dateDiffDays(b.Date, pool[j].Date)
		})

		items := make([]SubsetSumItem, len(pool))
		for i, l := range pool {
			items[i] = SubsetSumItem{Index: i, Amount: l.AmountCents}
		}

		found := findSubset(items, b.AmountCents, tolCents, c.cfg.MaxCombinationDepth)
		if found == nil {
			continue
		}

		subset := make([]domain.Transaction, len(found))
		for i, item := range found {
			subset[i] = pool[item.Index]
		}

		reason := fmt.Sprintf("Split across %d ledger entries", len(subset))
		if err := c.state.commit([]domain.Transaction{b}, subset,
			domain.KindOneToMany, reason, 0.85); err != nil {
			return err
		}
	}
	return nil
}

// Pass 5b — Many-to-One (confidence 0.85, kind many-to-one): several bank
// transactions merged into one ledger entry. Symmetric to pass 5a.
func (c *Cascade) passManyToOne() error {
	if c.cfg.MaxCombinationDepth == 0 {
		return nil
	}
	tolCents := dollarsToCents(c.cfg.AmountTolerance)

	for _, l := range c.ledger {
		if c.state.matchedLedger[l.ID] {
			continue
		}

		var pool []domain.Transaction
		for _, b := range c.bank {
			if c.state.matchedBank[b.ID] || b.Type != l.Type {
				continue
			}
			if dateDiffDays(l.Date, b.Date) > c.cfg.DateWindowStrict {
				continue
			}
			if b.AmountCents > l.AmountCents+tolCents {
				continue
			}
			pool = append(pool, b)
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool {
			return dateDiffDays(l.Date, pool[i].Date) < dateDiffDays(l.Date, pool[j].Date)
		})

		items := make([]SubsetSumItem, len(pool))
		for i, b := range pool {
			items[i] = SubsetSumItem{Index: i, Amount: b.AmountCents}
		}

		found := findSubset(items, l.AmountCents, tolCents, c.cfg.MaxCombinationDepth)
		if found == nil {
			continue
		}

		subset := make([]domain.Transaction, len(found))
		for i, item := range found {
			subset[i] = pool[item.Index]
		}

		reason := fmt.Sprintf("Merged from %d bank entries", len(subset))
		if err := c.state.commit(subset, []domain.Transaction{l},
			domain.KindManyToOne, reason, 0.85); err != nil {
			return err
		}
	}
	return nil
}
