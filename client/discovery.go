package client

import (
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

// DiscoveredVtn is one VTN found on the local network.
type DiscoveredVtn struct {
	// URL to connect to, taken from the local_url TXT property. This is
	// the authoritative address, including scheme, port, and base path.
	URL *url.URL
	// InstanceName of the mDNS advertisement.
	InstanceName string
	// Version of the OpenADR API, e.g. "3.1".
	Version string
	// BasePath of the API.
	BasePath string
}

// DiscoverOptions tune a discovery run.
type DiscoverOptions struct {
	// ServiceType to browse; defaults to "_openadr3._tcp".
	ServiceType string
	// Timeout ends the browse; defaults to one second.
	Timeout time.Duration
	// Limit stops early once that many VTNs were found; 0 means no limit.
	Limit int
}

// DiscoverVtns browses the local network for VTN advertisements.
// Advertisements without a local_url TXT property are skipped with a
// warning since there is no authoritative address to connect to.
func DiscoverVtns(opts DiscoverOptions) ([]DiscoveredVtn, error) {
	serviceType := opts.ServiceType
	if serviceType == "" {
		serviceType = "_openadr3._tcp"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []DiscoveredVtn, 1)

	go func() {
		var found []DiscoveredVtn
		defer func() { done <- found }()
		for entry := range entries {
			vtn, ok := parseEntry(entry)
			if !ok {
				continue
			}
			found = append(found, vtn)
			if opts.Limit > 0 && len(found) >= opts.Limit {
				return
			}
		}
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service: serviceType,
		Timeout: timeout,
		Entries: entries,
	})
	close(entries)
	found := <-done
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(found)).Msg("VTN discovery finished")
	return found, nil
}

func parseEntry(entry *mdns.ServiceEntry) (DiscoveredVtn, bool) {
	var localURL, version, basePath string
	for _, field := range entry.InfoFields {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		switch key {
		case "local_url":
			localURL = value
		case "version":
			version = value
		case "base_path":
			basePath = value
		}
	}

	if localURL == "" {
		log.Warn().Str("instance", entry.Name).Msg("VTN missing required 'local_url' property, skipping")
		return DiscoveredVtn{}, false
	}
	parsed, err := url.Parse(localURL)
	if err != nil {
		log.Warn().Err(err).Str("local_url", localURL).Msg("failed to parse local_url")
		return DiscoveredVtn{}, false
	}
	if version == "" {
		version = "unknown"
	}

	return DiscoveredVtn{
		URL:          parsed,
		InstanceName: entry.Name,
		Version:      version,
		BasePath:     basePath,
	}, true
}
