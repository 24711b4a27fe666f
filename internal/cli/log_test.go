package cli

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"vectorlog/internal/config"
	"vectorlog/internal/node"
	"vectorlog/internal/storage"
	"vectorlog/internal/vlog"
)

func runLog(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := RunLog(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunLog_Scenario(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runLog(t, "init", "-dir", dir)
	require.Equal(t, exitOK, code, stderr)

	for _, step := range [][]string{
		{"alice", "hello"},
		{"bob", "world"},
		{"alice", "again"},
	} {
		code, _, stderr := runLog(t, "append", "-dir", dir, "-p", step[0], step[1])
		require.Equal(t, exitOK, code, stderr)
	}

	code, out, stderr := runLog(t, "list", "-dir", dir)
	require.Equal(t, exitOK, code, stderr)
	require.Equal(t, []string{
		"<> -:: ",
		"<alice=1> alice:: hello",
		"<alice=1,bob=1> bob:: world",
		"<alice=2,bob=1> alice:: again",
	}, strings.Split(strings.TrimRight(out, "\n"), "\n"))

	code, out, _ = runLog(t, "verify", "-dir", dir)
	require.Equal(t, exitOK, code)
	require.Equal(t, "ok: 4 entries\n", out)
}

func TestRunLog_InitTwice(t *testing.T) {
	dir := t.TempDir()
	code, _, _ := runLog(t, "init", "-dir", dir, "-log", "chat")
	require.Equal(t, exitOK, code)

	code, _, stderr := runLog(t, "init", "-dir", dir, "-log", "chat")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "already exists")
}

func TestRunLog_AppendErrors(t *testing.T) {
	dir := t.TempDir()

	code, _, _ := runLog(t, "append", "-dir", dir, "-p", "alice", "no log yet")
	require.Equal(t, exitUsage, code)

	code, _, _ = runLog(t, "init", "-dir", dir)
	require.Equal(t, exitOK, code)

	code, _, stderr := runLog(t, "append", "-dir", dir, "anonymous")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, vlog.ErrNoParticipant.Error())

	code, _, _ = runLog(t, "append", "-dir", dir, "-p", "alice")
	require.Equal(t, exitUsage, code)

	// Failed appends leave the log untouched
	code, out, _ := runLog(t, "list", "-dir", dir)
	require.Equal(t, exitOK, code)
	require.Equal(t, "<> -:: \n", out)
}

func TestRunLog_VerifyRejectsUnstampedLog(t *testing.T) {
	dir := t.TempDir()
	unstamped := `[
  {"type":"entry","clock":{},"content":"","writer":null},
  {"type":"entry","clock":{},"content":"hello","writer":"alice"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.json"), []byte(unstamped), 0644))

	code, _, stderr := runLog(t, "verify", "-dir", dir)
	require.Equal(t, exitFalse, code)
	require.Contains(t, stderr, "does not dominate")
}

func TestRunLog_ConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "vlog.yaml")
	content := "participant_id: carol\ndata_dir: " + filepath.Join(dir, "data") + "\nlog_name: notes\nlog_level: none\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	code, _, stderr := runLog(t, "init", "-config", cfgPath)
	require.Equal(t, exitOK, code, stderr)
	code, _, stderr = runLog(t, "append", "-config", cfgPath, "from", "config")
	require.Equal(t, exitOK, code, stderr)

	code, out, _ := runLog(t, "list", "-config", cfgPath)
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "<carol=1> carol:: from config")
}

func TestRunLog_SyncNotImplemented(t *testing.T) {
	cfg := config.Default()
	cfg.ParticipantID = "server"
	n, err := node.NewNode(cfg, storage.NewInMemoryStore(), zerolog.Nop())
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = n.Serve(lis)
	}()
	t.Cleanup(n.Stop)

	code, _, stderr := runLog(t, "sync", "-dir", t.TempDir(), "-p", "alice", "-peer", lis.Addr().String())
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, vlog.ErrSyncNotImplemented.Error())

	code, _, stderr = runLog(t, "sync", "-dir", t.TempDir())
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "-peer")
}

func TestFormatEntry(t *testing.T) {
	l := vlog.New()
	e, err := l.Append("zed", "hi")
	require.NoError(t, err)
	require.Equal(t, "<zed=1> zed:: hi", FormatEntry(e))
	require.Equal(t, "<> -:: ", FormatEntry(l.Entries()[0]))
}
