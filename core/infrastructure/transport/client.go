package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// Pool caches one Session per switch configuration.
type Pool struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      *zap.Logger
}

// NewPool creates an empty session cache.
func NewPool(log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{sessions: make(map[string]*Session), log: log}
}

func cacheKey(cfg entities.SwitchConfig) string {
	keyData := struct {
		Transport      string
		Target         string
		Username       string
		Password       string
		EnablePassword string
		Community      string
		SNMPVersion    string
		NetconfPort    int
	}{
		Transport:      cfg.Transport,
		Target:         cfg.Target,
		Username:       cfg.Username,
		Password:       cfg.Password,
		EnablePassword: cfg.EnablePassword,
		Community:      cfg.SNMP.Community,
		SNMPVersion:    cfg.SNMP.Version,
		NetconfPort:    cfg.NetconfPort,
	}
	bytes, _ := json.Marshal(keyData)
	hash := sha256.Sum256(bytes)
	return hex.EncodeToString(hash[:])
}

// Get returns a cached session for the provided configuration or creates a new one
func (p *Pool) Get(cfg entities.SwitchConfig) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := cacheKey(cfg)
	if s, exists := p.sessions[key]; exists {
		return s
	}
	s := NewSession(cfg, p.log)
	p.sessions[key] = s
	return s
}

// Callback returns the cached session of cfg as a device callback.
func (p *Pool) Callback(cfg entities.SwitchConfig) ports.Callback {
	return p.Get(cfg)
}

// Len returns the number of cached sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// CloseAll releases every cached session
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, s := range p.sessions {
		s.Close()
		delete(p.sessions, key)
	}
}
