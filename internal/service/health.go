package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/sirupsen/logrus"
)

const (
	IndicatorDatabase = "database"
	IndicatorBroker   = "broker"
	IndicatorDocs     = "api-docs"
)

type HealthIndicator func(ctx context.Context) error

type HealthService interface {
	Check(ctx context.Context) dto.HealthResult
}

type healthService struct {
	indicators map[string]HealthIndicator
	config     dto.Config
}

func newHealthService(indicators map[string]HealthIndicator, config dto.Config) HealthService {
	return &healthService{
		indicators: indicators,
		config:     config,
	}
}

// defaultIndicators wires the probes for the running process. The docs
// probe is skipped in production, where the endpoint is not mounted.
func defaultIndicators(pinger interface {
	Ping(ctx context.Context) error
}, clients client.Clients, authService AuthService, config dto.Config) map[string]HealthIndicator {
	indicators := map[string]HealthIndicator{
		IndicatorDatabase: pinger.Ping,
		IndicatorBroker:   clients.RabbitMQClient().Ping,
	}
	if !config.IsProduction() {
		indicators[IndicatorDocs] = docsIndicator(clients.HTTPClient(), authService, config.AppURL+"/docs")
	}
	return indicators
}

func docsIndicator(httpClient client.HTTPClient, authService AuthService, url string) HealthIndicator {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		for key, values := range authService.BasicAuthHeaders() {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	}
}

func (h *healthService) Check(ctx context.Context) dto.HealthResult {
	result := dto.HealthResult{
		Status:  dto.HealthStatusOK,
		Info:    map[string]dto.IndicatorStatus{},
		Error:   map[string]dto.IndicatorStatus{},
		Details: map[string]dto.IndicatorStatus{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, indicator := range h.indicators {
		wg.Add(1)
		go func(name string, indicator HealthIndicator) {
			defer wg.Done()

			status := h.probe(ctx, name, indicator)

			mu.Lock()
			defer mu.Unlock()
			result.Details[name] = status
			if status.Status == dto.IndicatorUp {
				result.Info[name] = status
			} else {
				result.Error[name] = status
				result.Status = dto.HealthStatusError
			}
		}(name, indicator)
	}
	wg.Wait()

	return result
}

func (h *healthService) probe(ctx context.Context, name string, indicator HealthIndicator) (status dto.IndicatorStatus) {
	ctx, cancel := context.WithTimeout(ctx, h.config.HealthTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			status = dto.IndicatorStatus{Status: dto.IndicatorDown, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := indicator(ctx); err != nil {
		logrus.WithField("indicator", name).Warnf("Health check failed: %v", err)
		return dto.IndicatorStatus{Status: dto.IndicatorDown, Message: err.Error()}
	}
	return dto.IndicatorStatus{Status: dto.IndicatorUp}
}
