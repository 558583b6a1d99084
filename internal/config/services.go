package config

import (
	"fmt"
	"sort"
	"strings"
)

// Service names an optional part of the export pipeline
type Service string

const (
	ServicePDFExport            Service = "pdf_export"
	ServiceSpreadsheetExport    Service = "spreadsheet_export"
	ServicePagePreview          Service = "page_preview"
	ServiceFailureNotifications Service = "failure_notifications"
	ServicePaymentSync          Service = "payment_sync"
)

var knownServices = map[Service]bool{
	ServicePDFExport:            true,
	ServiceSpreadsheetExport:    true,
	ServicePagePreview:          true,
	ServiceFailureNotifications: true,
	ServicePaymentSync:          true,
}

// ServiceOptions is the set of enabled services. It is built once from
// configuration and passed explicitly to the components that consult it.
type ServiceOptions struct {
	enabled map[Service]bool
}

// ParseServiceOptions builds options from configured names. Unknown names
// are an error.
func ParseServiceOptions(names []string) (ServiceOptions, error) {
	opts := ServiceOptions{enabled: make(map[Service]bool)}
	var unknown []string
	for _, raw := range names {
		name := Service(strings.ToLower(strings.TrimSpace(raw)))
		if name == "" {
			continue
		}
		if !knownServices[name] {
			unknown = append(unknown, raw)
			continue
		}
		opts.enabled[name] = true
	}
	if len(unknown) > 0 {
		return ServiceOptions{}, fmt.Errorf("unknown services: %s", strings.Join(unknown, ", "))
	}
	return opts, nil
}

// NewServiceOptions enables exactly the given services
func NewServiceOptions(services ...Service) ServiceOptions {
	opts := ServiceOptions{enabled: make(map[Service]bool)}
	for _, s := range services {
		opts.enabled[s] = true
	}
	return opts
}

// Enabled reports whether s is switched on
func (o ServiceOptions) Enabled(s Service) bool {
	return o.enabled[s]
}

// Names lists the enabled services in sorted order
func (o ServiceOptions) Names() []string {
	names := make([]string, 0, len(o.enabled))
	for s := range o.enabled {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}
