package scanconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/breakwatch/pkg/config"
)

// Load reads a YAML profile on top of base. Keys missing from the file keep base values.
// KnownFields(true) turns typos into load errors.
func Load(path string, base config.ScanConfig) (*Profile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read profile: %w", err)
	}

	profile, err := Parse(data, base)
	if err != nil {
		return nil, data, err
	}
	return profile, data, nil
}

// Parse decodes and validates profile bytes
func Parse(data []byte, base config.ScanConfig) (*Profile, error) {
	profile := FromScanConfig(base)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if err := Validate(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Hash returns the SHA256 of the profile's canonical JSON
func Hash(p *Profile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
