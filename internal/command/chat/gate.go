package chat

import (
	"sync"

	"golang.org/x/time/rate"
)

// llmGate throttles model calls twice over: a global budget shared by the
// whole bot and a stricter per-user budget.
type llmGate struct {
	global *rate.Limiter

	mu        sync.Mutex
	perUser   map[string]*rate.Limiter
	userRate  rate.Limit
	userBurst int
}

func newLLMGate(globalRate rate.Limit, globalBurst int, userRate rate.Limit, userBurst int) *llmGate {
	return &llmGate{
		global:    rate.NewLimiter(globalRate, globalBurst),
		perUser:   map[string]*rate.Limiter{},
		userRate:  userRate,
		userBurst: userBurst,
	}
}

// Allow reports whether a call for this user fits both budgets. A user denial
// does not consume the global budget.
func (g *llmGate) Allow(userID string) bool {
	g.mu.Lock()
	lim, ok := g.perUser[userID]
	if !ok {
		lim = rate.NewLimiter(g.userRate, g.userBurst)
		g.perUser[userID] = lim
	}
	g.mu.Unlock()

	if !lim.Allow() {
		return false
	}
	return g.global.Allow()
}
