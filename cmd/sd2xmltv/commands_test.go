// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/sd2xmltv/internal/config"
	"github.com/ManuGH/sd2xmltv/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const validGuide = `<?xml version="1.0" encoding="UTF-8"?>
<tv generator-info-name="sd2xmltv">
  <channel id="I4.1.20001">
    <display-name>4.1</display-name>
  </channel>
  <programme start="20261016180000 +0000" stop="20261016183000 +0000" channel="I4.1.20001">
    <new></new>
    <title lang="en">Evening Show</title>
  </programme>
</tv>
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sd2xmltv dev")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.xml")
	require.NoError(t, os.WriteFile(good, []byte(validGuide), 0o600))

	out, err := execute(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "1 channels, 1 programmes, OK")

	bad := filepath.Join(dir, "bad.xml")
	broken := bytes.Replace([]byte(validGuide), []byte(`channel="I4.1.20001"`), []byte(`channel="missing"`), 1)
	require.NoError(t, os.WriteFile(bad, broken, 0o600))
	_, err = execute(t, "check", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel")

	_, err = execute(t, "check")
	assert.Error(t, err)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "username: alice\npassword: secret\ndays: 2\ndataDir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunCommand(t *testing.T) {
	orig := refreshFunc
	t.Cleanup(func() { refreshFunc = orig })

	var got config.AppConfig
	refreshFunc = func(_ context.Context, cfg config.AppConfig) (*jobs.Status, error) {
		got = cfg
		return &jobs.Status{OutputPath: cfg.OutputPath, Channels: 3, Programmes: 42}, nil
	}

	path := writeConfig(t)
	for _, args := range [][]string{{"--config", path}, {"run", "-c", path}} {
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "3 channels, 42 programmes")
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, 2, got.Days)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "guide.xml"), got.OutputPath)
	}
}

func TestRunCommand_ConfigFromEnv(t *testing.T) {
	orig := refreshFunc
	t.Cleanup(func() { refreshFunc = orig })
	refreshFunc = func(_ context.Context, cfg config.AppConfig) (*jobs.Status, error) {
		return nil, errors.New("upstream down")
	}

	t.Setenv(config.EnvConfigPath, writeConfig(t))
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("username: alice\nbogusKey: 1\n"), 0o600))

	_, err := execute(t, "run", "--config", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownConfigField)
}
