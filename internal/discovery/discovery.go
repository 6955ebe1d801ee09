// Package discovery advertises a running agent on the local network over
// mDNS/DNS-SD and finds advertised agents.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/clawd-xsl/android-remote/internal/model"
)

const (
	// ServiceType is the DNS-SD service agents register under.
	ServiceType = "_android-remote._tcp"
	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultBrowseTimeout bounds Browse when ctx has no deadline.
	DefaultBrowseTimeout = 2 * time.Second
)

// Advertiser keeps an mDNS registration alive until Shutdown.
type Advertiser struct {
	server   *zeroconf.Server
	instance string
	logger   *slog.Logger
}

// Advertise registers the agent listening on port. An empty instance name
// is derived from the device model.
func Advertise(instance string, port int, info model.DeviceInfo, ver string, logger *slog.Logger) (*Advertiser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if instance == "" {
		instance = InstanceName(info.Model)
	}
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, TXTRecords(info, ver), nil)
	if err != nil {
		return nil, fmt.Errorf("mdns register: %w", err)
	}
	logger.Info("mdns: advertised", "instance", instance, "service", ServiceType, "port", port)
	return &Advertiser{server: server, instance: instance, logger: logger}, nil
}

// Instance returns the registered instance name.
func (a *Advertiser) Instance() string { return a.instance }

// Shutdown withdraws the registration.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
	a.logger.Info("mdns: withdrawn", "instance", a.instance)
}

// InstanceName turns a device model into a DNS-SD instance label.
func InstanceName(deviceModel string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(deviceModel) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "android-remote"
	}
	return "android-remote-" + name
}

// TXTRecords describes the agent in key=value TXT strings.
func TXTRecords(info model.DeviceInfo, ver string) []string {
	return []string{
		"model=" + info.Model,
		"manufacturer=" + info.Manufacturer,
		"sdk=" + strconv.Itoa(info.SDKInt),
		"version=" + ver,
	}
}

// Agent is an advertised agent found by Browse.
type Agent struct {
	Instance string `yaml:"instance" json:"instance"`
	Host     string `yaml:"host"     json:"host"`
	Port     int    `yaml:"port"     json:"port"`
	Model    string `yaml:"model"    json:"model"`
	SDKInt   int    `yaml:"sdkInt"   json:"sdkInt"`
	Version  string `yaml:"version"  json:"version"`
}

// Addr is host:port of the agent's command server.
func (a Agent) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Browse collects agents until ctx is done, or for DefaultBrowseTimeout if
// ctx has no deadline. Results are sorted by instance name.
func Browse(ctx context.Context) ([]Agent, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultBrowseTimeout)
		defer cancel()
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, Domain, entries); err != nil {
		return nil, fmt.Errorf("mdns browse: %w", err)
	}

	seen := make(map[string]bool)
	var agents []Agent
collect:
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				break collect
			}
			a, ok := agentFromEntry(e)
			if !ok || seen[a.Instance] {
				continue
			}
			seen[a.Instance] = true
			agents = append(agents, a)
		case <-ctx.Done():
			break collect
		}
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].Instance < agents[j].Instance })
	return agents, nil
}

// agentFromEntry reads an agent from a resolved entry. Entries without an
// IPv4 address are skipped.
func agentFromEntry(e *zeroconf.ServiceEntry) (Agent, bool) {
	if e == nil || len(e.AddrIPv4) == 0 {
		return Agent{}, false
	}
	a := Agent{
		Instance: e.Instance,
		Host:     e.AddrIPv4[0].String(),
		Port:     e.Port,
	}
	for _, kv := range e.Text {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "model":
			a.Model = v
		case "sdk":
			a.SDKInt, _ = strconv.Atoi(v)
		case "version":
			a.Version = v
		}
	}
	return a, true
}
