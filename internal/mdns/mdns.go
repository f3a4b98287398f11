// Package mdns advertises the VTN on the local network so VENs can
// discover it without manual configuration.
package mdns

import (
	"fmt"
	"net"
	"os"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

// Advertisement describes the published VTN service.
type Advertisement struct {
	// ServiceType, e.g. "_openadr3._tcp".
	ServiceType string
	// InstanceName of this VTN.
	InstanceName string
	// HostName advertised; defaults to the OS host name.
	HostName string
	// IPAddress advertised; auto-detected when empty.
	IPAddress string
	// Port the HTTP listener is reachable on.
	Port int
	// Version of the OpenADR API.
	Version string
	// BasePath of the API, e.g. "" or "openadr3/3.1.0".
	BasePath string
	// LocalURL is the authoritative URL VENs should connect to.
	LocalURL string
}

// Server keeps the advertisement alive until shut down.
type Server struct {
	server *mdns.Server
}

// Register publishes the VTN service with its TXT metadata.
func Register(ad Advertisement) (*Server, error) {
	host := ad.HostName
	if host == "" {
		osHost, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("cannot determine host name: %w", err)
		}
		host = osHost
	}
	if host[len(host)-1] != '.' {
		host += "."
	}

	var ips []net.IP
	if ad.IPAddress != "" {
		ip := net.ParseIP(ad.IPAddress)
		if ip == nil {
			return nil, fmt.Errorf("invalid MDNS_IP_ADDRESS %q", ad.IPAddress)
		}
		ips = []net.IP{ip}
	}

	txt := []string{
		"version=" + ad.Version,
		"base_path=" + ad.BasePath,
		"local_url=" + ad.LocalURL,
	}

	service, err := mdns.NewMDNSService(ad.InstanceName, ad.ServiceType, "", host, ad.Port, ips, txt)
	if err != nil {
		return nil, fmt.Errorf("building mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("starting mDNS server: %w", err)
	}

	log.Info().
		Str("service_type", ad.ServiceType).
		Str("instance", ad.InstanceName).
		Str("local_url", ad.LocalURL).
		Msg("mDNS service registered")
	return &Server{server: server}, nil
}

// Shutdown stops the advertisement.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}
