package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"storyreel/internal/config"
	"storyreel/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, mutate ...func(*config.Config)) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"OPENAI_API_KEY", "ELEVENLABS_API_KEY", "ELEVENLABS_VOICE_ID"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := testsupport.NewConfig(t)
	for _, fn := range mutate {
		fn(cfg)
	}
	configPath := filepath.Join(home, "storyreel.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath, "--log-level", "error"}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestEpisodeCommandWithAllStagesSkipped(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"episode", "3", "--skip-script", "--skip-audio", "--skip-video"}, env.configPath)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	requireContains(t, out, "Episode 3 completed")

	out, _, err = runCLI(t, []string{"history", "--episode", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "-script -audio -video")
}

func TestEpisodeCommandReportsStageFailure(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"episode", "2", "--skip-script", "--skip-video"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure when script.txt is missing")
	}
	requireContains(t, out, "Episode 2 failed: audio stage (not_found)")
	requireContains(t, err.Error(), "episode 2 failed")
}

func TestEpisodeCommandRejectsBadNumber(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, arg := range []string{"abc", "0", "-1"} {
		if _, _, err := runCLI(t, []string{"episode", "--", arg}, env.configPath); err == nil {
			t.Fatalf("expected error for %q", arg)
		}
	}
}

func TestBatchCommandSummarizes(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"batch", "1", "2", "--skip-script", "--skip-audio", "--skip-video"}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "Episode 1 completed")
	requireContains(t, out, "Episode 2 completed")
	requireContains(t, out, "2 ok / 0 failed")
}

func TestBatchCommandFailsWhenEpisodesFail(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"batch", "1", "2", "--skip-script", "--skip-video"}, env.configPath)
	if err == nil {
		t.Fatal("expected batch error")
	}
	requireContains(t, out, "0 ok / 2 failed")
	requireContains(t, err.Error(), "2 of 2 episodes failed: 1, 2")
}

func TestBatchCommandRejectsReversedRange(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"batch", "5", "3"}, env.configPath); err == nil {
		t.Fatal("expected range error")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, filepath.Join(env.cfg.Paths.EpisodesDir, "4", "script.txt"), "It was a dark night.")

	out, _, err := runCLI(t, []string{"status", "4"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Episode 4")
	requireContains(t, out, "script.txt")
	requireContains(t, out, "20 B")
	requireContains(t, out, "manifest.txt")
}

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestPreflightCommandWithStagesSkipped(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preflight", "--skip-script", "--skip-audio", "--skip-video"}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	requireContains(t, out, "Episodes directory")
	requireContains(t, out, "ok")
}

func TestPreflightCommandReportsMissingCredentials(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.LLM.APIKey = ""
	})

	out, _, err := runCLI(t, []string{"preflight", "--skip-audio", "--skip-video"}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "Stage script")
	requireContains(t, out, "api key required")
}

func TestConfigInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.LLM.APIKey = "sk-secret-1234"
	})

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath)
	requireContains(t, out, "****1234")
	if strings.Contains(out, "sk-secret") {
		t.Fatalf("secret leaked:\n%s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{"": "", "abc": "****", "abcdef": "****cdef"}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNotifyTestRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"notify", "test"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}
}

func TestCleanCommandDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	leftover := filepath.Join(env.cfg.Paths.EpisodesDir, "1", "script_temp.mp3")
	testsupport.WriteFile(t, leftover, 2048)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(leftover, old, old); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"clean", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Would remove 1 entries (2.0 kB)")
	if _, err := os.Stat(leftover); err != nil {
		t.Fatal("dry run removed the leftover")
	}

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1 entries")
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatal("leftover should be removed")
	}
}

func TestLogsCommandFiltersByEpisode(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.cfg.Paths.LogDir, "storyreel.log")
	testsupport.WriteText(t, logPath,
		`{"ts":"2026-10-19T10:00:00Z","level":"info","msg":"episode started","episode":1}`+"\n"+
			`{"ts":"2026-10-19T10:00:01Z","level":"error","msg":"episode failed","episode":2,"stage":"audio","error_kind":"not_found"}`+"\n")

	out, _, err := runCLI(t, []string{"logs", "--episode", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "[ep 2/audio] episode failed kind=not_found")
	if strings.Contains(out, "episode started") {
		t.Fatalf("episode 1 record should be filtered:\n%s", out)
	}
}

func TestStoriesListAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stories", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("stories list: %v", err)
	}
	requireContains(t, out, "Second story.")

	out, _, err = runCLI(t, []string{"stories", "check"}, env.configPath)
	if err != nil {
		t.Fatalf("stories check: %v", err)
	}
	requireContains(t, out, "3 stories, no near-duplicates")
}
