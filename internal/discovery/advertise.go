package discovery

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/logging"
)

// Advertisement is a running mDNS registration
type Advertisement struct {
	server *zeroconf.Server
}

// AdvertiseRecords builds the TXT records for a painter
func AdvertiseRecords(id, path string) []string {
	if path == "" {
		path = DefaultPath
	}
	return []string{TxtPath + "=" + path, TxtID + "=" + id}
}

// Advertise registers a painter on all multicast interfaces until Shutdown.
func Advertise(instance string, port int, id, path string) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, AdvertiseRecords(id, path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("mDNS advertisement started",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
		zap.String("id", id),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Debug("mDNS advertisement stopped")
}
