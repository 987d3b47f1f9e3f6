package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/deskwm/internal/config"
)

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// X11Env is the display a daemon started outside the graphical session
// (systemd, ssh) should connect to.
type X11Env struct {
	Display    string
	XAuthority string
}

// ResolveX11Env finds DISPLAY and XAUTHORITY. Config values win over env,
// then the user's loginctl session, then the highest X socket, then
// ~/.Xauthority.
func ResolveX11Env(cfg *config.Config, env []string) (X11Env, error) {
	var out X11Env
	if cfg != nil {
		out.Display = strings.TrimSpace(cfg.Display)
		out.XAuthority = strings.TrimSpace(cfg.XAuthority)
	}
	if out.Display == "" {
		out.Display = strings.TrimSpace(envLookup(env, "DISPLAY"))
	}
	if out.XAuthority == "" {
		out.XAuthority = strings.TrimSpace(envLookup(env, "XAUTHORITY"))
	}

	if out.Display == "" || out.XAuthority == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if out.Display == "" {
			out.Display = strings.TrimSpace(detectedDisplay)
		}
		if out.XAuthority == "" {
			out.XAuthority = strings.TrimSpace(detectedXAuthority)
		}
	}

	if out.Display == "" {
		out.Display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if out.Display == "" {
		return X11Env{}, fmt.Errorf("%w: no DISPLAY; set display in config (e.g. display: \":1\") or export DISPLAY", ErrUnavailable)
	}

	if out.XAuthority == "" {
		home := strings.TrimSpace(envLookup(env, "HOME"))
		if home == "" {
			if detectedHome, err := os.UserHomeDir(); err == nil {
				home = detectedHome
			}
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				out.XAuthority = candidate
			}
		}
	}
	return out, nil
}

// Apply exports e into the process environment so the X connection and any
// launched palette program see it.
func (e X11Env) Apply() error {
	if e.Display != "" {
		if err := os.Setenv("DISPLAY", e.Display); err != nil {
			return err
		}
	}
	if e.XAuthority != "" {
		if err := os.Setenv("XAUTHORITY", e.XAuthority); err != nil {
			return err
		}
	}
	return nil
}

// Environ returns env with e's values set.
func (e X11Env) Environ(env []string) []string {
	out := append([]string(nil), env...)
	if e.Display != "" {
		out = upsertEnv(out, "DISPLAY", e.Display)
	}
	if e.XAuthority != "" {
		out = upsertEnv(out, "XAUTHORITY", e.XAuthority)
	}
	return out
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := loginctlShowSessionProp(sessionID, "Display")
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := loginctlShowSessionProp(sessionID, "Leader")
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env, nil
}

// detectDisplayFromSockets picks the highest-numbered X socket in dir.
func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}
	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

func upsertEnv(env []string, key string, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
