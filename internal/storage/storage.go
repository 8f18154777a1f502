// Package storage provides the durable seen-ID ledger backends.
package storage

import (
	"fmt"
	"strings"
)

// Ledger is an append-only record of dispensed feed item identifiers.
type Ledger interface {
	// Load returns every recorded id in append order. Duplicates are returned as stored.
	Load() ([]string, error)
	// Append durably records id before returning.
	Append(id string) error
	Close() error
}

// Supported ledger types.
const (
	TypeFile  = "file"
	TypeBBolt = "bbolt"
	TypeNone  = "none"
)

// NewLedger creates the configured ledger backend.
func NewLedger(typ, path string) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", TypeFile:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("file ledger requires a path")
		}
		return openFile(path)
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt ledger requires a path")
		}
		return openBolt(path)
	case TypeNone, "disabled":
		return noopLedger{}, nil
	default:
		return nil, fmt.Errorf("unsupported ledger type %q", typ)
	}
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("ledger id is empty")
	}
	if strings.ContainsAny(id, "\r\n") {
		return fmt.Errorf("ledger id %q contains a line break", id)
	}
	return nil
}

type noopLedger struct{}

func (noopLedger) Load() ([]string, error) { return nil, nil }
func (noopLedger) Append(string) error     { return nil }
func (noopLedger) Close() error            { return nil }
