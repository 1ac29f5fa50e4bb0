package fernet

import (
	"errors"
	"sync"
)

// ServiceRequest is the registry key the pipeline stores the current inbound
// request under, so routing and downstream services can resolve it.
const ServiceRequest = "request"

var ErrorServiceAlreadyRegistered = errors.New("service already registered")

// ServiceRegistry is the shared-instance lookup the pipeline and plugins use:
// register an instance under a key, resolve it later by the same key.
type ServiceRegistry struct {
	services map[string]interface{}
	mu       sync.RWMutex
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]interface{})}
}

// Register stores instance under key, failing if the key is taken.
func (r *ServiceRegistry) Register(key string, instance interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[key]; exists {
		return ErrorServiceAlreadyRegistered
	}

	r.services[key] = instance
	return nil
}

// Set stores instance under key unconditionally. The pipeline uses this for
// the per-run request slot, which is overwritten on every run.
func (r *ServiceRegistry) Set(key string, instance interface{}) {
	r.mu.Lock()
	r.services[key] = instance
	r.mu.Unlock()
}

// Get resolves the instance registered under key.
func (r *ServiceRegistry) Get(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.services[key]
	return instance, ok
}

// Keys returns the registered service keys, in no particular order.
func (r *ServiceRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.services))
	for key := range r.services {
		keys = append(keys, key)
	}
	return keys
}
