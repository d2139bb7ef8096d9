package imagestudio

import (
	"log/slog"
	"time"
)

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets a structured logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithStorage sets a storage backend for downloads and exports.
func WithStorage(storage Storage) ManagerOption {
	return func(m *Manager) {
		m.storage = storage
	}
}

// WithDefaultModel sets the default model used when a request names none.
func WithDefaultModel(model Model) ManagerOption {
	return func(m *Manager) {
		m.defaultModel = model
	}
}

// WithAdvisor sets the backend for prompt suggestions and style matching,
// replacing any advisor detected on the provider.
func WithAdvisor(advisor PromptAdvisor) ManagerOption {
	return func(m *Manager) {
		m.advisor = advisor
	}
}

// WithTokenEstimator replaces the estimator used for rate limiting.
func WithTokenEstimator(estimator TokenEstimator) ManagerOption {
	return func(m *Manager) {
		m.tokenEstimator = estimator
	}
}

// WithRateLimitWait lets generation calls wait up to d for the local rate
// limiter instead of failing at once.
func WithRateLimitWait(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.rateLimitWait = d
	}
}

// NewManager creates a Manager with the given provider and options.
// If the provider also implements PromptAdvisor it is used for ideation.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	manager := imagestudio.NewManager(gen,
//	    imagestudio.WithLogger(slog.Default()),
//	    imagestudio.WithDefaultModel(imagestudio.ModelFlashImage),
//	)
func NewManager(defaultProvider ImageGenerator, opts ...ManagerOption) *Manager {
	m := New()

	models := defaultProvider.Models()
	for i := range models {
		info := &models[i]

		m.providers[info.Provider] = defaultProvider

		m.RegisterModel(Model(info.Name),
			ModelMapping{
				Provider:        info.Provider,
				ActualModelName: info.APIModelName,
			},
			info)
	}

	if advisor, ok := defaultProvider.(PromptAdvisor); ok {
		m.advisor = advisor
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}
