// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/workers"
	"github.com/MKhiriev/go-sync-keeper/models"
)

var errUsage = errors.New("wrong number of arguments")

// commandEnv is what every command runs against.
type commandEnv struct {
	adapter adapter.ServerAdapter
	cfg     *config.ClientConfig
	out     io.Writer
	logger  *logger.Logger
}

type command struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, env *commandEnv, args []string) error
}

func (c command) execute(ctx context.Context, env *commandEnv, args []string) error {
	if len(args) < c.minArgs || len(args) > c.maxArgs {
		return fmt.Errorf("%w, usage: %s", errUsage, c.usage)
	}
	return c.run(ctx, env, args)
}

var commands = map[string]command{
	"register": {usage: "register [flags] <login> <password>", minArgs: 2, maxArgs: 2, run: runRegister},
	"login":    {usage: "login [flags] <login> <password>", minArgs: 2, maxArgs: 2, run: runLogin},
	"push":     {usage: "push [flags] <app> <file> [localVersion]", minArgs: 2, maxArgs: 3, run: runPush},
	"pull":     {usage: "pull [flags] <app> [version] [outFile]", minArgs: 1, maxArgs: 3, run: runPull},
	"meta":     {usage: "meta [flags] <app>", minArgs: 1, maxArgs: 1, run: runMeta},
	"purge":    {usage: "purge [flags] <app>", minArgs: 1, maxArgs: 1, run: runPurge},
	"version":  {usage: "version [flags]", minArgs: 0, maxArgs: 0, run: runVersion},
	"watch":    {usage: "watch [flags] <app> <file>", minArgs: 2, maxArgs: 2, run: runWatch},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: client <command> [flags] [operands]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func runRegister(ctx context.Context, env *commandEnv, args []string) error {
	token, err := env.adapter.Register(ctx, models.User{Login: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.out, token.SignedString)
	return err
}

func runLogin(ctx context.Context, env *commandEnv, args []string) error {
	token, err := env.adapter.Login(ctx, models.User{Login: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.out, token.SignedString)
	return err
}

func runPush(ctx context.Context, env *commandEnv, args []string) error {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	req := models.PushRequest{
		Data:     bytes.TrimSpace(data),
		DeviceID: env.cfg.Adapter.DeviceID,
	}
	if len(args) == 3 {
		localVersion, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: local version %q is not a number", errUsage, args[2])
		}
		req.LocalVersion = &localVersion
	}

	resp, err := env.adapter.Push(ctx, args[0], req)
	if err != nil {
		var conflict *adapter.ConflictError
		if errors.As(err, &conflict) {
			env.logger.Error().
				Int64("local_version", conflict.LocalVersion).
				Int64("server_version", conflict.ServerVersion).
				Time("server_modified", conflict.ServerModified).
				Str("server_device_id", conflict.ServerDeviceID).
				Msg("server holds a newer version, pull before pushing")
		}
		return err
	}

	return writeJSON(env.out, resp)
}

func runPull(ctx context.Context, env *commandEnv, args []string) error {
	version := ""
	if len(args) > 1 {
		version = args[1]
	}

	resp, err := env.adapter.Pull(ctx, args[0], version)
	if err != nil {
		return err
	}

	env.logger.Debug().
		Str("meta", string(resp.Meta)).
		Ints64("available_versions", resp.AvailableVersions).
		Msg("pulled")

	if len(args) == 3 {
		return os.WriteFile(args[2], append(resp.Data, '\n'), 0o600)
	}
	_, err = fmt.Fprintf(env.out, "%s\n", resp.Data)
	return err
}

func runMeta(ctx context.Context, env *commandEnv, args []string) error {
	resp, err := env.adapter.Meta(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(env.out, resp)
}

func runPurge(ctx context.Context, env *commandEnv, args []string) error {
	resp, err := env.adapter.Purge(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(env.out, resp)
}

func runVersion(ctx context.Context, env *commandEnv, _ []string) error {
	version, err := env.adapter.Version(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.out, version)
	return err
}

// runWatch pushes the file on every change until interrupted. The current
// server version seeds localVersion, so the file is expected to hold what
// was last pulled.
func runWatch(ctx context.Context, env *commandEnv, args []string) error {
	localVersion, err := serverVersion(ctx, env.adapter, args[0])
	if err != nil {
		return err
	}

	watcher, err := workers.NewFileWatcher(env.adapter, workers.WatchConfig{
		Path:         args[1],
		AppID:        args[0],
		DeviceID:     env.cfg.Adapter.DeviceID,
		Debounce:     env.cfg.Workers.WatchDebounce,
		LocalVersion: localVersion,
	}, env.logger)
	if err != nil {
		return err
	}

	err = workers.NewWorkers(watcher).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serverVersion returns the version stored on the server, or nil when the
// application has no data yet.
func serverVersion(ctx context.Context, a adapter.ServerAdapter, appID string) (*int64, error) {
	meta, err := a.Meta(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("read server meta: %w", err)
	}
	if !meta.Exists || meta.Meta == nil {
		return nil, nil
	}
	version := meta.Meta.Version
	return &version, nil
}

func writeJSON(w io.Writer, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimSpace(string(body)))
	return err
}
