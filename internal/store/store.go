// Package store loads and saves the counterparty alias file. Aliases let the
// analyzer treat differently spelled counterparties ("VASTGOED B.V.",
// "Vastgoed BV") as one recurring posting.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/validation"

	"gopkg.in/yaml.v3"
)

// DefaultAliasFile is used when no alias file is configured.
const DefaultAliasFile = "aliases.yaml"

// AliasLoader is what the analyzer needs from an alias source.
type AliasLoader interface {
	LoadAliases() (*Aliases, error)
}

// aliasFile is the on-disk layout:
//
//	aliases:
//	  Vastgoed BV:
//	    - VASTGOED B.V.
//	    - Vastgoed Beheer BV
type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// AliasStore manages loading and saving of counterparty aliases.
type AliasStore struct {
	AliasFile string
	logger    logging.Logger
}

// NewAliasStore creates a store for the given file. An empty name means
// DefaultAliasFile.
func NewAliasStore(aliasFile string, logger logging.Logger) *AliasStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if aliasFile == "" {
		aliasFile = DefaultAliasFile
	}
	return &AliasStore{AliasFile: aliasFile, logger: logger}
}

// FindConfigFile looks for a file in the current directory, ./config and
// ~/.config/ledger-gaps.
func (s *AliasStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "ledger-gaps", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadMappings reads canonical name → variants. A missing file yields an
// empty map. Both the "aliases:" document and a bare top-level map are
// accepted.
func (s *AliasStore) LoadMappings() (map[string][]string, error) {
	filePath, err := s.FindConfigFile(s.AliasFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Alias file not found", logging.F(logging.FieldFile, s.AliasFile))
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("error resolving alias file: %w", err)
	}

	if info, err := os.Stat(filePath); err == nil {
		if err := validation.FilePermissions(info.Mode().Perm()); err != nil {
			s.logger.Warn("Alias file is readable by others", logging.F(logging.FieldFile, filePath))
		}
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- configured alias file
	if err != nil {
		return nil, fmt.Errorf("error reading alias file: %w", err)
	}

	var doc aliasFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Aliases) > 0 {
		s.logger.Debug("Loaded aliases",
			logging.F(logging.FieldFile, filePath),
			logging.F(logging.FieldCount, len(doc.Aliases)))
		return doc.Aliases, nil
	}

	var bare map[string][]string
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("error parsing alias file %s: %w", filePath, err)
	}
	if bare == nil {
		bare = map[string][]string{}
	}
	delete(bare, "aliases")
	s.logger.Debug("Loaded aliases",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(bare)))
	return bare, nil
}

// LoadAliases implements AliasLoader.
func (s *AliasStore) LoadAliases() (*Aliases, error) {
	mappings, err := s.LoadMappings()
	if err != nil {
		return nil, err
	}
	return NewAliases(mappings), nil
}

// SaveMappings writes mappings back to the alias file, creating its
// directory when needed. Variants are stored sorted.
func (s *AliasStore) SaveMappings(mappings map[string][]string) error {
	filePath, err := s.FindConfigFile(s.AliasFile)
	if err != nil {
		filePath = s.AliasFile
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	doc := aliasFile{Aliases: make(map[string][]string, len(mappings))}
	for canonical, variants := range mappings {
		sorted := append([]string(nil), variants...)
		sort.Strings(sorted)
		doc.Aliases[canonical] = sorted
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling aliases: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("error writing alias file: %w", err)
	}

	s.logger.Info("Saved aliases",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(doc.Aliases)))
	return nil
}

// AddAlias records variant as another spelling of canonical and saves.
func (s *AliasStore) AddAlias(canonical, variant string) error {
	if canonical == "" || variant == "" {
		return fmt.Errorf("canonical name and variant must not be empty")
	}
	mappings, err := s.LoadMappings()
	if err != nil {
		return err
	}
	for _, existing := range mappings[canonical] {
		if existing == variant {
			return nil
		}
	}
	mappings[canonical] = append(mappings[canonical], variant)
	return s.SaveMappings(mappings)
}
