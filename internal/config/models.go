package config

import (
	"fmt"
	"sort"
	"time"
)

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Defaults applied when the file leaves a preference unset
const (
	DefaultRequestTimeout = 30 // Seconds
	DefaultBridgeAddr     = "127.0.0.1:7419"
)

// Registry represents the entire user configuration file.
// It stores the instances the operator administers and application preferences.
type Registry struct {
	Version     int                  `yaml:"version"`
	Instances   map[string]*Instance `yaml:"instances,omitempty"` // Keyed by instance name
	Preferences *Preferences         `yaml:"preferences,omitempty"`
}

// Instance is one platform instance the console can connect to.
type Instance struct {
	BaseURL  string    `yaml:"base_url"`            // e.g. "https://acme.example.com:19999"
	ClientID string    `yaml:"client_id"`           // API3 client ID
	LastUsed time.Time `yaml:"last_used,omitempty"` // Last successful login
	// The client secret is NEVER stored
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultInstance string `yaml:"default_instance,omitempty"` // Instance used when --instance is not given
	RequestTimeout  int    `yaml:"request_timeout"`            // API request timeout in seconds
	BridgeAddr      string `yaml:"bridge_addr"`                // Host bridge listen address, empty disables
	Advertise       bool   `yaml:"advertise"`                  // Advertise the bridge over mDNS
}

func defaultPreferences() *Preferences {
	return &Preferences{
		RequestTimeout: DefaultRequestTimeout,
		BridgeAddr:     DefaultBridgeAddr,
		Advertise:      false,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Instances:   make(map[string]*Instance),
		Preferences: defaultPreferences(),
	}
}

// GetInstance retrieves an instance by name.
// Returns nil if the instance doesn't exist in the registry.
func (r *Registry) GetInstance(name string) *Instance {
	return r.Instances[name]
}

// SetInstance adds or replaces an instance. The first instance added becomes the default.
func (r *Registry) SetInstance(name, baseURL, clientID string) *Instance {
	if r.Instances == nil {
		r.Instances = make(map[string]*Instance)
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}

	inst, exists := r.Instances[name]
	if !exists {
		inst = &Instance{}
		r.Instances[name] = inst
	}
	inst.BaseURL = baseURL
	inst.ClientID = clientID

	if r.Preferences.DefaultInstance == "" {
		r.Preferences.DefaultInstance = name
	}
	return inst
}

// TouchInstance records a successful login against an instance.
func (r *Registry) TouchInstance(name string) {
	if inst := r.Instances[name]; inst != nil {
		inst.LastUsed = time.Now()
	}
}

// InstanceNames returns the configured instance names in sorted order.
func (r *Registry) InstanceNames() []string {
	names := make([]string, 0, len(r.Instances))
	for name := range r.Instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overrides are command-line values that take precedence over the file.
type Overrides struct {
	Instance string
	BaseURL  string
	ClientID string
}

// Target is a fully resolved connection target.
type Target struct {
	Name     string // Instance name, empty when given entirely by flags
	BaseURL  string
	ClientID string
	Timeout  time.Duration
}

// Resolve picks the instance to connect to. Flags win over the named
// instance, which wins over the default instance.
func (r *Registry) Resolve(o Overrides) (*Target, error) {
	prefs := r.Preferences
	if prefs == nil {
		prefs = defaultPreferences()
	}

	name := o.Instance
	if name == "" {
		name = prefs.DefaultInstance
	}

	target := &Target{Name: name}
	if name != "" {
		inst := r.Instances[name]
		if inst == nil && o.Instance != "" {
			return nil, fmt.Errorf("unknown instance %q (have: %v)", name, r.InstanceNames())
		}
		if inst != nil {
			target.BaseURL = inst.BaseURL
			target.ClientID = inst.ClientID
		}
	}

	if o.BaseURL != "" {
		target.BaseURL = o.BaseURL
	}
	if o.ClientID != "" {
		target.ClientID = o.ClientID
	}

	if target.BaseURL == "" {
		return nil, fmt.Errorf("no instance configured: pass --base-url or run 'powerpack config init'")
	}
	if target.ClientID == "" {
		return nil, fmt.Errorf("no API client ID for %s: pass --client-id", target.BaseURL)
	}

	timeout := prefs.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	target.Timeout = time.Duration(timeout) * time.Second

	return target, nil
}
