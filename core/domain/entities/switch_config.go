package entities

import (
	"strings"
	"time"
)

// SNMPConfig holds the SNMP agent settings of a switch.
type SNMPConfig struct {
	Community string        `yaml:"community"`
	Version   string        `yaml:"version"`
	Port      uint16        `yaml:"port"`
	Timeout   time.Duration `yaml:"timeout"`
	// Retries is nil when unset so an explicit 0 survives inheritance.
	Retries   *int          `yaml:"retries"`
}

// SwitchConfig defines the configuration for a single switch
type SwitchConfig struct {
	Target         string     `yaml:"target"`
	Platform       string     `yaml:"platform"`
	Transport      string     `yaml:"transport"`
	Username       string     `yaml:"username"`
	Password       string     `yaml:"password"`
	EnablePassword string     `yaml:"enable_password"`
	SNMP           SNMPConfig `yaml:"snmp"`
	NetconfPort    int        `yaml:"netconf_port"`
	Sandbox        bool       `yaml:"-"`
	VerbosityLevel int        `yaml:"-"`
}

// PlatformID returns the normalized platform name, "auto" when unset.
func (sc SwitchConfig) PlatformID() string {
	p := strings.ToLower(strings.TrimSpace(sc.Platform))
	if p == "" {
		return "auto"
	}
	return p
}

// IsRawOutputEnabled reports whether CLI transcripts are logged, which
// verbosity levels 2 and 3 request.
func (sc SwitchConfig) IsRawOutputEnabled() bool {
	return sc.VerbosityLevel == 2 || sc.VerbosityLevel == 3
}
