package pool

import "sync"

// EndpointProvider provides access to endpoints for selection.
type EndpointProvider interface {
	// AvailableMain returns available main endpoints.
	AvailableMain() []*Endpoint

	// AvailableFallback returns available fallback endpoints.
	AvailableFallback() []*Endpoint
}

// Selector picks the next endpoint, skipping excluded names.
type Selector interface {
	Next(exclude map[string]bool) *Endpoint
}

// WeightedRoundRobin implements weighted round-robin endpoint selection.
// It prefers available main endpoints and falls back to fallback endpoints
// only when no main endpoint is available.
type WeightedRoundRobin struct {
	provider      EndpointProvider
	mu            sync.Mutex
	currentIndex  int
	currentWeight int
}

// NewWeightedRoundRobin creates a new WeightedRoundRobin balancer.
func NewWeightedRoundRobin(provider EndpointProvider) *WeightedRoundRobin {
	return &WeightedRoundRobin{
		provider:      provider,
		currentIndex:  -1,
		currentWeight: 0,
	}
}

// Next returns the next endpoint using the weighted round-robin algorithm,
// excluding endpoints in the exclude map. Returns nil when nothing is
// available.
func (wrr *WeightedRoundRobin) Next(exclude map[string]bool) *Endpoint {
	wrr.mu.Lock()
	defer wrr.mu.Unlock()

	endpoints := wrr.getAvailable(exclude)
	if len(endpoints) == 0 {
		return nil
	}

	if len(endpoints) == 1 {
		return endpoints[0]
	}

	gcdWeight := gcdWeights(endpoints)
	maxW := maxWeight(endpoints)

	for {
		wrr.currentIndex = (wrr.currentIndex + 1) % len(endpoints)

		if wrr.currentIndex == 0 {
			wrr.currentWeight = wrr.currentWeight - gcdWeight
			if wrr.currentWeight <= 0 {
				wrr.currentWeight = maxW
			}
		}

		e := endpoints[wrr.currentIndex]
		if e.Weight() >= wrr.currentWeight {
			return e
		}
	}
}

// Reset resets the balancer state.
func (wrr *WeightedRoundRobin) Reset() {
	wrr.mu.Lock()
	defer wrr.mu.Unlock()

	wrr.currentIndex = -1
	wrr.currentWeight = 0
}

// getAvailable returns main endpoints if any, otherwise fallback.
func (wrr *WeightedRoundRobin) getAvailable(exclude map[string]bool) []*Endpoint {
	main := filterExcluded(wrr.provider.AvailableMain(), exclude)
	if len(main) > 0 {
		return main
	}
	return filterExcluded(wrr.provider.AvailableFallback(), exclude)
}

// filterExcluded removes excluded endpoints from the list.
func filterExcluded(endpoints []*Endpoint, exclude map[string]bool) []*Endpoint {
	if len(exclude) == 0 {
		return endpoints
	}

	result := make([]*Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if !exclude[e.Name()] {
			result = append(result, e)
		}
	}
	return result
}

// gcdWeights calculates the GCD of all endpoint weights.
func gcdWeights(endpoints []*Endpoint) int {
	if len(endpoints) == 0 {
		return 1
	}

	result := endpoints[0].Weight()
	for i := 1; i < len(endpoints); i++ {
		result = gcd(result, endpoints[i].Weight())
	}
	return result
}

// maxWeight returns the maximum weight among endpoints.
func maxWeight(endpoints []*Endpoint) int {
	max := 0
	for _, e := range endpoints {
		if e.Weight() > max {
			max = e.Weight()
		}
	}
	return max
}

// gcd calculates the greatest common divisor.
func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
