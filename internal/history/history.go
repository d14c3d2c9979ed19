// Package history persists one record per successful generation to a local
// append-only JSONL file and reads them back for the --history view.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/harou24/cf-cli/internal/cferr"
)

// Policy is a normalized expiration token: an integer followed by "h"
// (hours) or "d" (days). The zero value means no expiration.
type Policy string

const PolicyNone Policy = ""

var policyRe = regexp.MustCompile(`^([0-9]+)([hd])$`)

// ParsePolicy validates an --expire token. Anything outside the
// integer+unit grammar is an argument error.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return PolicyNone, nil
	}
	if !policyRe.MatchString(s) {
		return PolicyNone, cferr.New(cferr.Argument,
			"invalid expire value %q: expected <number>h or <number>d (e.g. 24h, 30d)", s)
	}
	return Policy(s), nil
}

// Duration returns the policy's duration. ok is false when the policy is
// empty, meaning the record never expires.
func (p Policy) Duration() (time.Duration, bool) {
	m := policyRe.FindStringSubmatch(string(p))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "h":
		return time.Duration(n) * time.Hour, true
	case "d":
		return time.Duration(n) * 24 * time.Hour, true
	}
	return 0, false
}

type Record struct {
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresIn Policy    `json:"expires_in,omitempty"`
}

// Expired reports whether now is strictly past the record's expiration
// instant. At the boundary instant itself a record is still active.
func (r Record) Expired(now time.Time) bool {
	d, ok := r.ExpiresIn.Duration()
	if !ok {
		return false
	}
	return now.Sub(r.CreatedAt) > d
}

// Store is an append-only log. Records are never mutated or deleted. A
// single process writes at a time; concurrent invocations are not
// guaranteed interleave-safe.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append writes one record as a single JSON line. O_APPEND keeps separate
// runs from overwriting each other.
func (s *Store) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing history record: %w", err)
	}
	return nil
}

// List returns all records in insertion order. A missing file is an empty
// history, not an error. Malformed lines are skipped.
func (s *Store) List() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return records, nil
}
