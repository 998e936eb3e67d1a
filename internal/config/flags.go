// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses configuration flags from args.
//
// Flags:
//
//	-a                  HTTP server address in format [host]:[port]
//	-grpc-address       gRPC server address in format [host]:[port]
//	-d                  database DSN
//	-driver             database driver (pgx, sqlite3)
//	-f                  file blob store directory
//	-blobs              blob store backend (sql, file, memory)
//	-c / -config        JSON or YAML config file path
//	-token-sign-key     token signing key
//	-token-issuer       token issuer name
//	-token-duration     token duration (e.g. "1h")
//	-request-timeout    request timeout (e.g. "30s")
//	-hash-key           request integrity hash key
//	-retention          history snapshots kept per application
//	-max-payload        maximum pushed payload in bytes
//	-schema-dir         directory with per-application JSON Schemas
//	-rate-limit         per-user requests per second
//	-log-level          log level
//	-s                  server address used by the client
//	-token              bearer token used by the client
//	-device             device id used by the client
func parseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress, grpcServerAddress NetAddress
	var cfg StructuredConfig

	fs := flag.NewFlagSet("go-sync-keeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "Database DSN")
	fs.StringVar(&cfg.Storage.DB.Driver, "driver", "", "Database driver")
	fs.StringVar(&cfg.Storage.Files.BinaryDataDir, "f", "", "File storage path")
	fs.StringVar(&cfg.Storage.BlobBackend, "blobs", "", "Blob store backend")
	fs.StringVar(&cfg.ConfigFilePath, "c", "", "Config file path")
	fs.StringVar(&cfg.ConfigFilePath, "config", "", "Config file path (alias)")
	fs.StringVar(&cfg.App.TokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&cfg.App.TokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&cfg.App.TokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.DurationVar(&cfg.Server.RequestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&cfg.App.HashKey, "hash-key", "", "Security hash key")
	fs.IntVar(&cfg.Sync.HistoryRetention, "retention", 0, "History snapshots kept per application")
	fs.Int64Var(&cfg.Sync.MaxPayloadBytes, "max-payload", 0, "Maximum payload size in bytes")
	fs.StringVar(&cfg.Sync.SchemaDir, "schema-dir", "", "Directory with per-application JSON Schemas")
	fs.Float64Var(&cfg.Server.RateLimit, "rate-limit", 0, "Per-user requests per second")
	fs.StringVar(&cfg.App.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.Adapter.HTTPAddress, "s", "", "Server address used by the client")
	fs.StringVar(&cfg.Adapter.Token, "token", "", "Bearer token used by the client")
	fs.StringVar(&cfg.Adapter.DeviceID, "device", "", "Device id used by the client")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg.Server.HTTPAddress = serverAddress.String()
	cfg.Server.GRPCAddress = grpcServerAddress.String()
	cfg.Args = fs.Args()

	return &cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// An unset address renders as an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is empty or
// "localhost", and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	host, portString, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "" && !strings.EqualFold(host, "localhost") {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
