// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

const schemaExtension = ".json"

// Schemas holds compiled JSON Schemas keyed by application id.
//
// Applications without a schema accept any structured payload. A nil
// *Schemas accepts everything.
type Schemas struct {
	byApp map[string]*jsonschema.Schema
}

// LoadSchemas compiles every "{appId}.json" file in dir. An empty dir
// yields an empty registry.
func LoadSchemas(dir string, log *logger.Logger) (*Schemas, error) {
	s := &Schemas{byApp: make(map[string]*jsonschema.Schema)}
	if dir == "" {
		return s, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading schema directory: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, schemaExtension) {
			continue
		}

		appID := strings.TrimSuffix(name, schemaExtension)
		schema, err := compileSchemaFile(compiler, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("error compiling schema for %q: %w", appID, err)
		}
		s.byApp[appID] = schema
		log.Info().Str("app_id", appID).Msg("payload schema loaded")
	}

	return s, nil
}

// NewSchemas compiles raw schema documents keyed by application id.
func NewSchemas(raw map[string][]byte) (*Schemas, error) {
	s := &Schemas{byApp: make(map[string]*jsonschema.Schema, len(raw))}

	compiler := jsonschema.NewCompiler()
	for appID, doc := range raw {
		schema, err := compileSchema(compiler, "https://schemas.local/"+appID+schemaExtension, doc)
		if err != nil {
			return nil, fmt.Errorf("error compiling schema for %q: %w", appID, err)
		}
		s.byApp[appID] = schema
	}

	return s, nil
}

func compileSchemaFile(compiler *jsonschema.Compiler, name string) (*jsonschema.Schema, error) {
	doc, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	return compileSchema(compiler, "file://"+filepath.ToSlash(abs), doc)
}

func compileSchema(compiler *jsonschema.Compiler, url string, doc []byte) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}
	if err = compiler.AddResource(url, parsed); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// Has reports whether appID has a registered schema.
func (s *Schemas) Has(appID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byApp[appID]
	return ok
}

// Validate checks payload against the schema of appID. The returned error
// wraps [ErrSchemaViolation] when the payload does not match.
func (s *Schemas) Validate(ctx context.Context, appID string, payload []byte) error {
	if !s.Has(appID) {
		return nil
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	if err = s.byApp[appID].Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			logger.FromContext(ctx).Debug().Str("app_id", appID).Err(err).Msg("payload rejected by schema")
		}
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	return nil
}
